package mailbox

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// Client wraps the Gmail API for the recruiting mailbox: sending outreach,
// finding candidate replies, and ingesting application mail.
type Client struct {
	svc    *gmail.Service
	logger *zap.Logger
}

// Envelope is the header summary of one inbox message.
type Envelope struct {
	ID          string
	FromAddress string
	FromName    string
	Subject     string
}

// NewClient authenticates against Gmail with the provided credentials.
func NewClient(ctx context.Context, creds Credentials, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	scopes := []string{gmail.GmailModifyScope, gmail.GmailSendScope}
	httpc, err := httpClient(ctx, creds, scopes)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpc))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Client{svc: svc, logger: logger}, nil
}

// Ping verifies the mailbox is reachable and the token works.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.svc.Users.GetProfile(gmailUser).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail profile: %w", err)
	}
	return nil
}

// Send delivers one message to the recipient.
func (c *Client) Send(ctx context.Context, to, subject, body string, html bool) error {
	raw := encodeMessage(to, subject, body, html)
	_, err := c.svc.Users.Messages.Send(gmailUser, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	return nil
}

// UnreadFrom returns the IDs of unread messages from the given sender.
func (c *Client) UnreadFrom(ctx context.Context, email string) ([]string, error) {
	query := fmt.Sprintf("from:%s is:unread", email)
	return c.Search(ctx, query)
}

// Search returns message IDs matching a Gmail search query.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	resp, err := c.svc.Users.Messages.List(gmailUser).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search messages %q: %w", query, err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Envelope fetches sender and subject headers for a message.
func (c *Client) Envelope(ctx context.Context, id string) (*Envelope, error) {
	msg, err := c.svc.Users.Messages.Get(gmailUser, id).
		Format("metadata").
		MetadataHeaders("From", "Subject").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	env := &Envelope{ID: id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				if addr, err := mail.ParseAddress(h.Value); err == nil {
					env.FromAddress = addr.Address
					env.FromName = addr.Name
				} else {
					env.FromAddress = strings.TrimSpace(h.Value)
				}
			case "Subject":
				env.Subject = h.Value
			}
		}
	}
	if env.FromName == "" {
		env.FromName = "Unknown"
	}
	return env, nil
}

// ReplyText extracts the reply content of a message. The snippet is usually
// enough for a one-line visa answer; fall back to the plain-text body.
func (c *Client) ReplyText(ctx context.Context, id string) (string, error) {
	msg, err := c.svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get message %s: %w", id, err)
	}

	if snippet := strings.TrimSpace(msg.Snippet); snippet != "" {
		return snippet, nil
	}
	return plainTextBody(msg.Payload), nil
}

// BodyText extracts the full plain-text body of a message, falling back to the
// snippet. Ingestion prefers the body since application emails embed the
// candidate's contact details there.
func (c *Client) BodyText(ctx context.Context, id string) (string, error) {
	msg, err := c.svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get message %s: %w", id, err)
	}

	if body := plainTextBody(msg.Payload); body != "" {
		return body, nil
	}
	return strings.TrimSpace(msg.Snippet), nil
}

// MarkRead removes the UNREAD label so the message is not processed again.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
	if _, err := c.svc.Users.Messages.Modify(gmailUser, id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("mark message %s read: %w", id, err)
	}
	return nil
}
