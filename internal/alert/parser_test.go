package alert

import (
	"testing"
	"time"

	"market-pulse/internal/domain"
)

var testNow = time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)

func alertMessage(from, subject, date, body string) domain.MailMessage {
	return domain.MailMessage{
		ID:           "msg-1",
		InternalDate: testNow,
		Headers: map[string]string{
			"from":    from,
			"subject": subject,
			"date":    date,
		},
		Body: body,
	}
}

const validBody = "BTC Indicators Updates\nKnn Moving Average: 64250.5\nKeltner Channels: 105.2\nAI Trend Navigator: Buy\n"

func TestClassifyAcceptsValidAlert(t *testing.T) {
	msg := alertMessage(
		"TradingView <noreply@tradingview.com>",
		"BTC Indicators Updates",
		"Wed, 02 Apr 2025 12:30:00 +0000",
		validBody,
	)

	a := Classify(msg, ModeSubject, testNow)
	if a == nil {
		t.Fatal("expected alert")
	}
	if a.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol: %s", a.Symbol)
	}
	if a.Fields["knnMovingAverage"] != "64250.5" {
		t.Fatalf("unexpected fields: %+v", a.Fields)
	}
}

func TestClassifyAcceptsSingleDigitDay(t *testing.T) {
	now := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	msg := alertMessage(
		"TradingView <noreply@tradingview.com>",
		"BTC Indicators Updates",
		"Wed, 2 Apr 2025 12:30:00 +0000",
		validBody,
	)

	a := Classify(msg, ModeSubject, now)
	if a == nil {
		t.Fatal("date header with unpadded day must still classify")
	}
	if a.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol: %s", a.Symbol)
	}
}

func TestClassifyRejectsYesterday(t *testing.T) {
	msg := alertMessage(
		"TradingView <noreply@tradingview.com>",
		"BTC Indicators Updates",
		"Tue, 01 Apr 2025 23:59:00 +0000",
		validBody,
	)
	if Classify(msg, ModeSubject, testNow) != nil {
		t.Fatal("alert dated yesterday must be rejected")
	}
}

func TestClassifyRejectsUntrustedSender(t *testing.T) {
	msg := alertMessage(
		"Mallory <mallory@example.com>",
		"BTC Indicators Updates",
		"Wed, 02 Apr 2025 12:30:00 +0000",
		validBody,
	)
	if Classify(msg, ModeSubject, testNow) != nil {
		t.Fatal("untrusted sender must be rejected even with symbol match")
	}
}

func TestClassifyRejectsMalformedDate(t *testing.T) {
	msg := alertMessage(
		"TradingView <noreply@tradingview.com>",
		"BTC Indicators Updates",
		"not a date",
		validBody,
	)
	if Classify(msg, ModeSubject, testNow) != nil {
		t.Fatal("malformed date header should skip the message")
	}
}

func TestClassifyRejectsMissingMarkerPhrase(t *testing.T) {
	msg := alertMessage(
		"TradingView <noreply@tradingview.com>",
		"BTC price moved",
		"Wed, 02 Apr 2025 12:30:00 +0000",
		validBody,
	)
	if Classify(msg, ModeSubject, testNow) != nil {
		t.Fatal("subject without trigger must be rejected in subject mode")
	}
}

func TestClassifyBodyMode(t *testing.T) {
	msg := alertMessage(
		"TradingView <noreply@tradingview.com>",
		"your daily digest",
		"Wed, 02 Apr 2025 12:30:00 +0000",
		"ETH Indicators Updates\nKeltner Channels: 2210.4\n",
	)

	if Classify(msg, ModeSubject, testNow) != nil {
		t.Fatal("subject mode should not match a body-only trigger")
	}
	a := Classify(msg, ModeBody, testNow)
	if a == nil || a.Symbol != "ETHUSDT" {
		t.Fatalf("body mode should classify ETHUSDT, got %+v", a)
	}
}

func TestExtractFieldsExactSubset(t *testing.T) {
	body := "Keltner Channels: 105.2\nAI Trend Navigator: Buy\nsome other line\n"
	fields := ExtractFields(body)

	if len(fields) != 2 {
		t.Fatalf("expected exactly 2 fields, got %+v", fields)
	}
	if fields["keltnerChannels"] != "105.2" || fields["aiTrendNavigator"] != "Buy" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if _, ok := fields["knnMovingAverage"]; ok {
		t.Fatal("knnMovingAverage must not be present")
	}
}

func TestExtractSignalComplete(t *testing.T) {
	msg := domain.MailMessage{
		InternalDate: testNow,
		Headers: map[string]string{
			"subject": "Alert: BTCUSDT crossing 65000 (1h)",
		},
		Body: "\nStrong breakout above resistance\nTime: 2025-04-02T12:30:00Z\nPrice: 65012.4\n",
	}

	rec := ExtractSignal(msg)
	if rec == nil {
		t.Fatal("expected signal record")
	}
	if rec.Subtitle != "BTCUSDT crossing 65000" {
		t.Fatalf("unexpected subtitle: %q", rec.Subtitle)
	}
	if rec.Description != "Strong breakout above resistance" {
		t.Fatalf("unexpected description: %q", rec.Description)
	}
	if rec.Price != "65012.4" || rec.Time != "2025-04-02T12:30:00Z" {
		t.Fatalf("unexpected price/time: %q %q", rec.Price, rec.Time)
	}
}

func TestExtractSignalSubtitleWithoutParen(t *testing.T) {
	msg := domain.MailMessage{
		Headers: map[string]string{"subject": "Alert: SOLUSDT momentum shift"},
		Body:    "desc\nTime: 10:00\nPrice: 152.2\n",
	}
	rec := ExtractSignal(msg)
	if rec == nil || rec.Subtitle != "SOLUSDT momentum shift" {
		t.Fatalf("subtitle should run to end of subject, got %+v", rec)
	}
}

func TestExtractSignalDropsPartialRecords(t *testing.T) {
	cases := map[string]string{
		"no time":        "desc\nPrice: 100\n",
		"no price":       "desc\nTime: 10:00\n",
		"no description": "\nTime: 10:00\nPrice: 100\n",
	}
	for name, body := range cases {
		msg := domain.MailMessage{
			Headers: map[string]string{"subject": "Alert: X (1h)"},
			Body:    body,
		}
		if ExtractSignal(msg) != nil {
			t.Errorf("%s: partial record should be dropped", name)
		}
	}
}

func TestExtractSignalRequiresAlertSubject(t *testing.T) {
	msg := domain.MailMessage{
		Headers: map[string]string{"subject": "BTC Indicators Updates"},
		Body:    "desc\nTime: 10:00\nPrice: 100\n",
	}
	if ExtractSignal(msg) != nil {
		t.Fatal("non-Alert subject should not produce a record")
	}
}
