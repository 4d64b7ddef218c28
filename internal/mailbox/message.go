package mailbox

import (
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// encodeMessage builds a raw RFC 2822 message, base64url-encoded the way the
// Gmail API expects.
func encodeMessage(to, subject, body string, html bool) string {
	contentType := "text/plain"
	if html {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// plainTextBody walks a message payload looking for text/plain content.
func plainTextBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		return decodePart(payload.Body.Data)
	}

	for _, part := range payload.Parts {
		if part == nil {
			continue
		}
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodePart(part.Body.Data)
		}
	}

	// Nested multiparts (e.g. multipart/alternative inside multipart/mixed).
	for _, part := range payload.Parts {
		if part == nil || len(part.Parts) == 0 {
			continue
		}
		if body := plainTextBody(part); body != "" {
			return body
		}
	}

	return ""
}

func decodePart(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(decoded))
}
