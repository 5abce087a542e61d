package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"market-pulse/internal/alert"
	"market-pulse/internal/cache"
	"market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var serviceNow = time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)

type mailboxStub struct {
	listErr  error
	messages []domain.MailMessage
	fetchErr map[string]error
}

func (m mailboxStub) ListMessageIDs(ctx context.Context, after time.Time) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, len(m.messages))
	for i, msg := range m.messages {
		ids[i] = msg.ID
	}
	return ids, nil
}

func (m mailboxStub) FetchMessage(ctx context.Context, id string) (domain.MailMessage, error) {
	if err, ok := m.fetchErr[id]; ok {
		return domain.MailMessage{}, err
	}
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return domain.MailMessage{}, errors.New("not found")
}

func newAlertService(t *testing.T, stub mailboxStub) (*AlertService, *cache.IndicatorCache) {
	t.Helper()
	c := cache.NewIndicatorCache(filepath.Join(t.TempDir(), "backup.json"), nil)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	s := NewAlertService(tracer,
		func(context.Context) (MailboxClient, error) { return stub, nil },
		c, alert.ModeSubject, 4*time.Hour, 48*time.Hour, 5*time.Second)
	s.nowFunc = func() time.Time { return serviceNow }
	return s, c
}

func indicatorMessage(id, symbol string, fields string) domain.MailMessage {
	return domain.MailMessage{
		ID:           id,
		InternalDate: serviceNow,
		Headers: map[string]string{
			"from":    "TradingView <noreply@tradingview.com>",
			"subject": symbol + " Indicators Updates",
			"date":    "Wed, 02 Apr 2025 12:30:00 +0000",
		},
		Body: symbol + " Indicators Updates\n" + fields,
	}
}

func TestCheckAlertsMergesPerSymbol(t *testing.T) {
	stub := mailboxStub{messages: []domain.MailMessage{
		indicatorMessage("m1", "BTC", "Knn Moving Average: 100\n"),
		indicatorMessage("m2", "ETH", "Keltner Channels: 2200\n"),
		// Later BTC message wins within the cycle.
		indicatorMessage("m3", "BTC", "Knn Moving Average: 200\n"),
	}}
	s, c := newAlertService(t, stub)

	alerts, err := s.CheckAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected 2 symbols, got %+v", alerts)
	}
	if alerts["BTCUSDT"]["knnMovingAverage"] != "200" {
		t.Fatalf("later message should overwrite earlier: %+v", alerts["BTCUSDT"])
	}

	cached, ok := c.Indicators()["BTCUSDT"].(map[string]any)
	if !ok || cached["knnMovingAverage"] != "200" {
		t.Fatalf("alerts not merged into cache: %+v", cached)
	}
}

func TestCheckAlertsEmptyIsNotError(t *testing.T) {
	s, _ := newAlertService(t, mailboxStub{})
	alerts, err := s.CheckAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func TestCheckAlertsBadMessageDoesNotAbortBatch(t *testing.T) {
	stub := mailboxStub{
		messages: []domain.MailMessage{
			indicatorMessage("m1", "BTC", "Knn Moving Average: 100\n"),
			indicatorMessage("m2", "ETH", "Keltner Channels: 2200\n"),
		},
		fetchErr: map[string]error{"m1": errors.New("boom")},
	}
	s, _ := newAlertService(t, stub)

	alerts, err := s.CheckAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts["ETHUSDT"] == nil {
		t.Fatalf("good messages should still process: %+v", alerts)
	}
}

func TestCheckAlertsCredentialFailure(t *testing.T) {
	c := cache.NewIndicatorCache(filepath.Join(t.TempDir(), "backup.json"), nil)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	s := NewAlertService(tracer,
		func(context.Context) (MailboxClient, error) {
			return nil, domain.ErrCredentialUnavailable
		},
		c, alert.ModeSubject, 4*time.Hour, 48*time.Hour, 5*time.Second)

	_, err := s.CheckAlerts(context.Background())
	if !errors.Is(err, domain.ErrCredentialUnavailable) {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestSignalHistoryNewestFirst(t *testing.T) {
	older := serviceNow.Add(-2 * time.Hour)
	stub := mailboxStub{messages: []domain.MailMessage{
		{
			ID: "s1", InternalDate: older,
			Headers: map[string]string{"subject": "Alert: first (1h)"},
			Body:    "older signal\nTime: 10:00\nPrice: 100\n",
		},
		{
			ID: "s2", InternalDate: serviceNow,
			Headers: map[string]string{"subject": "Alert: second (1h)"},
			Body:    "newer signal\nTime: 12:00\nPrice: 110\n",
		},
		{
			ID: "s3", InternalDate: serviceNow,
			Headers: map[string]string{"subject": "Alert: partial"},
			Body:    "missing price\nTime: 12:00\n",
		},
	}}
	s, c := newAlertService(t, stub)

	records, err := s.SignalHistory(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	if records[0].Description != "newer signal" {
		t.Fatalf("records should be newest first: %+v", records)
	}

	cached, ok := c.Indicators()["signal_history"].([]domain.SignalRecord)
	if !ok || len(cached) != 2 {
		t.Fatalf("signal history not cached: %+v", cached)
	}
}

type notifierStub struct {
	got map[string]map[string]string
}

func (n *notifierStub) NotifyAlerts(alerts map[string]map[string]string) {
	n.got = alerts
}

func TestCheckAlertsNotifies(t *testing.T) {
	stub := mailboxStub{messages: []domain.MailMessage{
		indicatorMessage("m1", "SOL", "AI Trend Navigator: Buy\n"),
	}}
	s, _ := newAlertService(t, stub)
	n := &notifierStub{}
	s.SetNotifier(n)

	if _, err := s.CheckAlerts(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n.got["SOLUSDT"]["aiTrendNavigator"] != "Buy" {
		t.Fatalf("notifier not called with alerts: %+v", n.got)
	}
}
