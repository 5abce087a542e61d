package service

import (
	"context"
	"log"
	"time"

	"market-pulse/internal/cache"
	"market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type CalendarFetcher interface {
	FetchUS(ctx context.Context) ([]domain.EconomicIndicatorRow, error)
}

type EconomicStore interface {
	Upsert(ctx context.Context, rows []domain.EconomicIndicatorRow) error
	List(ctx context.Context) ([]domain.EconomicIndicatorRow, error)
}

// CalendarService keeps the economic-indicator list current: the scrape
// path upserts fresh rows into the database, the read path serves the
// ordered table contents and refreshes the cached list.
type CalendarService struct {
	tracer  trace.Tracer
	fetcher CalendarFetcher
	store   EconomicStore
	cache   *cache.IndicatorCache
	timeout time.Duration
}

func NewCalendarService(tracer trace.Tracer, fetcher CalendarFetcher, store EconomicStore, indicatorCache *cache.IndicatorCache, timeout time.Duration) *CalendarService {
	return &CalendarService{tracer: tracer, fetcher: fetcher, store: store, cache: indicatorCache, timeout: timeout}
}

// Indicators loads all rows ordered by (date, time), replaces the cached
// economic_indicators list, and flushes the backup.
func (s *CalendarService) Indicators(ctx context.Context) ([]domain.EconomicIndicatorRow, error) {
	ctx, span := s.tracer.Start(ctx, "calendar-service.indicators")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.store == nil {
		return nil, domain.NewNotFound(domain.CategoryEconomicIndicators, "", domain.NotFoundTable)
	}
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.ReplaceList(domain.CategoryEconomicIndicators, rows)
	if err := s.cache.FlushToDisk(ctx); err != nil {
		log.Printf("backup flush after economic indicators failed: %v", err)
	}
	return rows, nil
}

// Refresh scrapes the calendar, upserts the rows, then reloads the list.
// Used by the scheduled job.
func (s *CalendarService) Refresh(ctx context.Context) ([]domain.EconomicIndicatorRow, error) {
	ctx, span := s.tracer.Start(ctx, "calendar-service.refresh")
	defer span.End()

	if s.store == nil {
		return nil, domain.NewNotFound(domain.CategoryEconomicIndicators, "", domain.NotFoundTable)
	}

	scraped, err := s.fetcher.FetchUS(ctx)
	if err != nil {
		return nil, err
	}
	if len(scraped) > 0 {
		if err := s.store.Upsert(ctx, scraped); err != nil {
			return nil, err
		}
		log.Printf("Upserted %d economic indicator rows", len(scraped))
	}

	return s.Indicators(ctx)
}
