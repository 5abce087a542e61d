// Package alert classifies mailbox messages into indicator alerts and
// signal-history records. Everything here is pure string work over already
// fetched messages, driven by declarative trigger/marker tables.
package alert

import (
	"strings"
	"time"

	"market-pulse/internal/domain"
)

// ClassifyMode selects whether the symbol trigger is matched against the
// subject line or the message body.
type ClassifyMode string

const (
	ModeSubject ClassifyMode = "subject"
	ModeBody    ClassifyMode = "body"
)

const (
	trustedSenderMarker = "TradingView"
	alertMarkerPhrase   = "Indicators Updates"

	signalSubjectPrefix = "Alert:"
	signalTimeMarker    = "Time:"
	signalPriceMarker   = "Price:"
)

var symbolTriggers = []struct {
	Trigger string
	Symbol  string
}{
	{"BTC Indicators Updates", "BTCUSDT"},
	{"ETH Indicators Updates", "ETHUSDT"},
	{"SOL Indicators Updates", "SOLUSDT"},
}

var fieldMarkers = []struct {
	Marker string
	Field  string
}{
	{"Knn Moving Average:", "knnMovingAverage"},
	{"Keltner Channels:", "keltnerChannels"},
	{"AI Trend Navigator:", "aiTrendNavigator"},
}

// Classify decides whether a message is a relevant indicator alert and, if
// so, extracts its symbol and fields. Returns nil for anything else: wrong
// day, untrusted sender, no symbol trigger, or no extractable fields.
func Classify(msg domain.MailMessage, mode ClassifyMode, now time.Time) *domain.Alert {
	from := msg.Header("from")
	subject := msg.Header("subject")
	date := msg.Header("date")

	sent, err := parseMailDate(date)
	if err != nil {
		return nil
	}
	// Strict calendar-day equality, not a rolling window.
	if !sameCalendarDay(sent, now) {
		return nil
	}

	target := subject
	if mode == ModeBody {
		target = msg.Body
	}

	symbol := matchSymbol(target)
	if symbol == "" {
		return nil
	}

	if !strings.Contains(from, trustedSenderMarker) {
		return nil
	}
	if !strings.Contains(target, alertMarkerPhrase) || !strings.Contains(msg.Body, alertMarkerPhrase) {
		return nil
	}

	fields := ExtractFields(msg.Body)
	if len(fields) == 0 {
		return nil
	}

	return &domain.Alert{Symbol: symbol, Fields: fields, Timestamp: msg.InternalDate}
}

// ExtractFields scans body lines for the fixed field markers. The value is
// whatever follows the first colon on a matching line, trimmed. Lines that
// match no marker are ignored.
func ExtractFields(body string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		for _, fm := range fieldMarkers {
			if !strings.Contains(line, fm.Marker) {
				continue
			}
			if _, after, ok := strings.Cut(line, ":"); ok {
				fields[fm.Field] = strings.TrimSpace(after)
			}
			break
		}
	}
	return fields
}

// ExtractSignal parses the signal-history form: a subject starting with
// "Alert:", a subtitle up to the first "(", and body lines carrying Time:
// and Price: markers. The first non-empty line that matches no marker is
// the description. A record is only emitted when description, price and
// time were all found; partial matches are dropped silently, matching the
// best-effort behavior the dashboard has always had.
func ExtractSignal(msg domain.MailMessage) *domain.SignalRecord {
	subject := msg.Header("subject")
	if !strings.HasPrefix(subject, signalSubjectPrefix) {
		return nil
	}

	subtitle := strings.TrimPrefix(subject, signalSubjectPrefix)
	if idx := strings.Index(subtitle, "("); idx >= 0 {
		subtitle = subtitle[:idx]
	}
	subtitle = strings.TrimSpace(subtitle)

	var description, price, alertTime string
	for _, raw := range strings.Split(msg.Body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, signalTimeMarker):
			alertTime = strings.TrimSpace(strings.TrimPrefix(line, signalTimeMarker))
		case strings.HasPrefix(line, signalPriceMarker):
			price = strings.TrimSpace(strings.TrimPrefix(line, signalPriceMarker))
		default:
			if description == "" {
				description = line
			}
		}
	}

	if description == "" || price == "" || alertTime == "" {
		return nil
	}

	return &domain.SignalRecord{
		Subtitle:    subtitle,
		Description: description,
		Price:       price,
		Time:        alertTime,
		Timestamp:   msg.InternalDate,
	}
}

func matchSymbol(s string) string {
	for _, st := range symbolTriggers {
		if strings.Contains(s, st.Trigger) {
			return st.Symbol
		}
	}
	return ""
}

// parseMailDate accepts both zero-padded and single-digit days, since
// RFC 5322 Date headers allow either form.
func parseMailDate(date string) (time.Time, error) {
	sent, err := time.Parse(time.RFC1123Z, date)
	if err != nil {
		sent, err = time.Parse("Mon, 2 Jan 2006 15:04:05 -0700", date)
	}
	return sent, err
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
