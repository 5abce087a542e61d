package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	gmailapi "google.golang.org/api/gmail/v1"
)

func TestExtractContentPrefersPlainPart(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: encode("<b>html</b>")}},
			{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: encode("plain body")}},
		},
	}
	if got := extractContent(payload); got != "plain body" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestExtractContentFallsBackToTopLevelBody(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Body: &gmailapi.MessagePartBody{Data: encode("top level")},
	}
	if got := extractContent(payload); got != "top level" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestExtractContentSentinel(t *testing.T) {
	cases := []*gmailapi.MessagePart{
		nil,
		{},
		{Parts: []*gmailapi.MessagePart{{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: encode("x")}}}},
	}
	for i, payload := range cases {
		if got := extractContent(payload); got != noPlainTextContent {
			t.Errorf("case %d: expected sentinel, got %q", i, got)
		}
	}
}

func TestDecodeBodyBadDataIsPlaceholder(t *testing.T) {
	got := decodeBody("!!! not base64 !!!")
	if !strings.HasPrefix(got, "Error getting content:") {
		t.Fatalf("expected placeholder, got %q", got)
	}
}

func TestListAndFetch(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/messages"):
			if q := req.URL.Query().Get("q"); !strings.HasPrefix(q, "in:inbox after:") {
				t.Fatalf("unexpected query: %q", q)
			}
			return jsonResponse(map[string]any{
				"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
			}), nil
		case strings.HasSuffix(req.URL.Path, "/messages/m1"):
			return jsonResponse(map[string]any{
				"id":           "m1",
				"internalDate": "1743597000000",
				"payload": map[string]any{
					"headers": []map[string]string{
						{"name": "From", "value": "TradingView <noreply@tradingview.com>"},
						{"name": "Subject", "value": "BTC Indicators Updates"},
					},
					"body": map[string]any{"data": encode("Keltner Channels: 105.2")},
				},
			}), nil
		default:
			t.Fatalf("unexpected path: %s", req.URL.Path)
			return nil, nil
		}
	})}

	gc, err := NewGmailClient(context.Background(), client, tracer)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ids, err := gc.ListMessageIDs(context.Background(), time.Now().Add(-4*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "m1" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	msg, err := gc.FetchMessage(context.Background(), "m1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if msg.Header("from") != "TradingView <noreply@tradingview.com>" {
		t.Fatalf("headers not lowercased: %+v", msg.Headers)
	}
	if msg.Body != "Keltner Channels: 105.2" {
		t.Fatalf("unexpected body: %q", msg.Body)
	}
	if !msg.InternalDate.Equal(time.UnixMilli(1743597000000)) {
		t.Fatalf("unexpected internal date: %v", msg.InternalDate)
	}
}

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func jsonResponse(v any) *http.Response {
	raw, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(raw)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
