package mailbox

import (
	"encoding/base64"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func TestEncodeMessageHeaders(t *testing.T) {
	t.Parallel()

	raw := encodeMessage("jane@example.com", "Hello", "<p>Hi</p>", true)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not valid base64url: %v", err)
	}

	msg := string(decoded)
	if !strings.Contains(msg, "To: jane@example.com\r\n") {
		t.Fatalf("missing To header: %s", msg)
	}
	if !strings.Contains(msg, "Subject: Hello\r\n") {
		t.Fatalf("missing Subject header: %s", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Fatalf("expected html content type: %s", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>Hi</p>") {
		t.Fatalf("body not separated from headers: %s", msg)
	}
}

func TestEncodeMessagePlainText(t *testing.T) {
	t.Parallel()

	raw := encodeMessage("x@example.com", "s", "body", false)
	decoded, _ := base64.URLEncoding.DecodeString(raw)
	if !strings.Contains(string(decoded), "Content-Type: text/plain") {
		t.Fatal("expected plain content type")
	}
}

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestPlainTextBodyDirect(t *testing.T) {
	t.Parallel()

	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: encodeBody("direct body")},
	}

	if got := plainTextBody(payload); got != "direct body" {
		t.Fatalf("expected direct body, got %q", got)
	}
}

func TestPlainTextBodyMultipart(t *testing.T) {
	t.Parallel()

	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<p>html</p>")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("plain part")}},
		},
	}

	if got := plainTextBody(payload); got != "plain part" {
		t.Fatalf("expected plain part, got %q", got)
	}
}

func TestPlainTextBodyNested(t *testing.T) {
	t.Parallel()

	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("nested")}},
				},
			},
		},
	}

	if got := plainTextBody(payload); got != "nested" {
		t.Fatalf("expected nested body, got %q", got)
	}
}

func TestPlainTextBodyEmpty(t *testing.T) {
	t.Parallel()

	if got := plainTextBody(nil); got != "" {
		t.Fatalf("expected empty for nil payload, got %q", got)
	}
}
