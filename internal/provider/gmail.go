package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	gmailUserID = "me"

	// Returned when a message carries no decodable text/plain content.
	noPlainTextContent = "No plain text content available"
)

// GmailClient lists and fetches mailbox messages. A new client is built per
// polling cycle from the credential store's HTTP client, so token refreshes
// are picked up automatically.
type GmailClient struct {
	svc    *gmailapi.Service
	tracer trace.Tracer
}

func NewGmailClient(ctx context.Context, httpClient *http.Client, tracer trace.Tracer) (*GmailClient, error) {
	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: create gmail service: %v", domain.ErrTransport, err)
	}
	return &GmailClient{svc: svc, tracer: tracer}, nil
}

// ListMessageIDs returns the ids of inbox messages received after the given
// instant.
func (c *GmailClient) ListMessageIDs(ctx context.Context, after time.Time) ([]string, error) {
	_, span := c.tracer.Start(ctx, "gmail.list-message-ids")
	defer span.End()

	query := fmt.Sprintf("in:inbox after:%d", after.Unix())
	res, err := c.svc.Users.Messages.List(gmailUserID).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", domain.ErrTransport, err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// FetchMessage retrieves the full message structure and decodes its body.
// Decode problems never fail the fetch; they surface as placeholder body
// text so one bad message cannot block a batch.
func (c *GmailClient) FetchMessage(ctx context.Context, id string) (domain.MailMessage, error) {
	_, span := c.tracer.Start(ctx, "gmail.fetch-message")
	defer span.End()

	msg, err := c.svc.Users.Messages.Get(gmailUserID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return domain.MailMessage{}, fmt.Errorf("%w: get message %s: %v", domain.ErrTransport, id, err)
	}

	headers := map[string]string{}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			headers[strings.ToLower(h.Name)] = h.Value
		}
	}

	return domain.MailMessage{
		ID:           msg.Id,
		InternalDate: time.UnixMilli(msg.InternalDate),
		Headers:      headers,
		Body:         extractContent(msg.Payload),
	}, nil
}

// extractContent prefers the first text/plain part; a part-less payload
// falls back to the top-level body.
func extractContent(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return noPlainTextContent
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if part.MimeType != "text/plain" || part.Body == nil || part.Body.Data == "" {
				continue
			}
			return decodeBody(part.Body.Data)
		}
		return noPlainTextContent
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}
	return noPlainTextContent
}

func decodeBody(data string) string {
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(data)
	}
	if err != nil {
		return fmt.Sprintf("Error getting content: %v", err)
	}
	return string(raw)
}
