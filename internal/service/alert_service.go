package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"market-pulse/internal/alert"
	"market-pulse/internal/cache"
	"market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type MailboxClient interface {
	ListMessageIDs(ctx context.Context, after time.Time) ([]string, error)
	FetchMessage(ctx context.Context, id string) (domain.MailMessage, error)
}

// MailboxFactory builds a mailbox client for one polling cycle, acquiring
// (and if needed refreshing) credentials first.
type MailboxFactory func(ctx context.Context) (MailboxClient, error)

type AlertNotifier interface {
	NotifyAlerts(alerts map[string]map[string]string)
}

// AlertService runs the mailbox ingestion pipeline: credentials, listing,
// per-message classification, cache merge, backup flush.
type AlertService struct {
	tracer       trace.Tracer
	mailbox      MailboxFactory
	cache        *cache.IndicatorCache
	mode         alert.ClassifyMode
	window       time.Duration
	signalWindow time.Duration
	timeout      time.Duration
	notifier     AlertNotifier

	// pollMu serializes polling cycles; concurrent duplicate polls of the
	// same window are wasteful, and mailbox reads are idempotent.
	pollMu sync.Mutex

	nowFunc func() time.Time
}

func NewAlertService(
	tracer trace.Tracer,
	mailbox MailboxFactory,
	indicatorCache *cache.IndicatorCache,
	mode alert.ClassifyMode,
	window, signalWindow, timeout time.Duration,
) *AlertService {
	return &AlertService{
		tracer:       tracer,
		mailbox:      mailbox,
		cache:        indicatorCache,
		mode:         mode,
		window:       window,
		signalWindow: signalWindow,
		timeout:      timeout,
		nowFunc:      time.Now,
	}
}

func (s *AlertService) SetNotifier(n AlertNotifier) {
	s.notifier = n
}

// CheckAlerts polls the default window (now − 4h by default).
func (s *AlertService) CheckAlerts(ctx context.Context) (map[string]map[string]string, error) {
	return s.CheckAlertsWindow(ctx, s.window)
}

// CheckAlertsWindow runs one polling cycle over the given window and merges
// the per-symbol results into the indicator cache. Within a cycle a later
// message for a symbol overwrites an earlier one. An empty map means no new
// alerts; that is not an error.
func (s *AlertService) CheckAlertsWindow(ctx context.Context, window time.Duration) (map[string]map[string]string, error) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "alert-service.check-alerts")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.mailbox == nil {
		return nil, fmt.Errorf("mailbox not configured: %w", domain.ErrCredentialUnavailable)
	}
	client, err := s.mailbox(ctx)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc()
	ids, err := client.ListMessageIDs(ctx, now.Add(-window))
	if err != nil {
		return nil, err
	}

	alerts := map[string]map[string]string{}
	for _, id := range ids {
		msg, err := client.FetchMessage(ctx, id)
		if err != nil {
			log.Printf("skipping message %s: %v", id, err)
			continue
		}
		if a := alert.Classify(msg, s.mode, now); a != nil {
			alerts[a.Symbol] = a.Fields
		}
	}

	if len(alerts) == 0 {
		return alerts, nil
	}

	for symbol, fields := range alerts {
		s.cache.MergeIndicators(symbol, fields)
	}
	if err := s.cache.FlushToDisk(ctx); err != nil {
		log.Printf("backup flush after alert merge failed: %v", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyAlerts(alerts)
	}
	return alerts, nil
}

// SignalHistory scans the longer signal window, extracts every valid
// signal record, and replaces the signal_history list wholesale, newest
// first.
func (s *AlertService) SignalHistory(ctx context.Context) ([]domain.SignalRecord, error) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "alert-service.signal-history")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.mailbox == nil {
		return nil, fmt.Errorf("mailbox not configured: %w", domain.ErrCredentialUnavailable)
	}
	client, err := s.mailbox(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := client.ListMessageIDs(ctx, s.nowFunc().Add(-s.signalWindow))
	if err != nil {
		return nil, err
	}

	var records []domain.SignalRecord
	for _, id := range ids {
		msg, err := client.FetchMessage(ctx, id)
		if err != nil {
			log.Printf("skipping message %s: %v", id, err)
			continue
		}
		if rec := alert.ExtractSignal(msg); rec != nil {
			records = append(records, *rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	if len(records) > 0 {
		s.cache.ReplaceList(domain.CategorySignalHistory, records)
		if err := s.cache.FlushToDisk(ctx); err != nil {
			log.Printf("backup flush after signal history failed: %v", err)
		}
	}
	return records, nil
}

// NewGmailFactory adapts a credential store and client constructor into a
// MailboxFactory. Declared here so main stays wiring-only.
func NewGmailFactory(
	acquire func(ctx context.Context) (*http.Client, error),
	build func(ctx context.Context, httpClient *http.Client) (MailboxClient, error),
) MailboxFactory {
	return func(ctx context.Context) (MailboxClient, error) {
		httpClient, err := acquire(ctx)
		if err != nil {
			return nil, err
		}
		return build(ctx, httpClient)
	}
}
