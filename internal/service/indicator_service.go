package service

import (
	"context"
	"log"
	"time"

	"market-pulse/internal/cache"
	"market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type CategoryReader interface {
	CategoryValue(ctx context.Context, category domain.Category, symbol string) (any, error)
}

// IndicatorService answers category lookups: in-memory cache first, the
// cryptos table on a miss, caching and flushing whatever the DB returned.
type IndicatorService struct {
	tracer  trace.Tracer
	repo    CategoryReader
	cache   *cache.IndicatorCache
	timeout time.Duration
}

func NewIndicatorService(tracer trace.Tracer, repo CategoryReader, indicatorCache *cache.IndicatorCache, timeout time.Duration) *IndicatorService {
	return &IndicatorService{tracer: tracer, repo: repo, cache: indicatorCache, timeout: timeout}
}

func (s *IndicatorService) Category(ctx context.Context, category domain.Category, symbol string) (any, error) {
	ctx, span := s.tracer.Start(ctx, "indicator-service.category")
	defer span.End()

	if v, ok := s.cache.CategoryValue(category, symbol); ok {
		return v, nil
	}

	if s.repo == nil {
		return nil, domain.NewNotFound(category, symbol, domain.NotFoundTable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := s.repo.CategoryValue(ctx, category, symbol)
	if err != nil {
		return nil, err
	}

	s.cache.MergeCategory(category, symbol, v)
	if err := s.cache.FlushToDisk(ctx); err != nil {
		log.Printf("backup flush after category lookup failed: %v", err)
	}
	return v, nil
}
