package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"market-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createCryptosTable = `
CREATE TABLE IF NOT EXISTS cryptos (
    symbol        TEXT PRIMARY KEY,
    fear_greed    TEXT,
    mining_cost   TEXT,
    distribution  TEXT,
    google_trends TEXT,
    order_book    TEXT,
    entities      TEXT
);
`

// Postgres error codes used for not-found classification.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

var categoryColumns = map[domain.Category]string{
	domain.CategoryFearGreed:    "fear_greed",
	domain.CategoryMiningCost:   "mining_cost",
	domain.CategoryDistribution: "distribution",
	domain.CategoryGoogleTrends: "google_trends",
	domain.CategoryOrderBook:    "order_book",
	domain.CategoryEntities:     "entities",
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CryptoRepository reads per-category market data from the cryptos table:
// one row per symbol, one text column per category.
type CryptoRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewCryptoRepository(pool PgxPool, tracer trace.Tracer) *CryptoRepository {
	return &CryptoRepository{pool: pool, tracer: tracer}
}

func (r *CryptoRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "crypto-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createCryptosTable)
	return err
}

// CategoryValue reads one symbol's value for one category. Missing table,
// column, row, and empty value each produce a distinct NotFound sub-reason.
func (r *CryptoRepository) CategoryValue(ctx context.Context, category domain.Category, symbol string) (any, error) {
	_, span := r.tracer.Start(ctx, "crypto-repo.category-value")
	defer span.End()

	column, ok := categoryColumns[category]
	if !ok {
		return nil, domain.NewNotFound(category, symbol, domain.NotFoundColumn)
	}

	var value *string
	query := fmt.Sprintf(`SELECT %s FROM cryptos WHERE symbol = $1`, column)
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&value)
	if err != nil {
		return nil, classifyLookupError(err, category, symbol)
	}

	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, domain.NewNotFound(category, symbol, domain.NotFoundValue)
	}

	return parsePayload(*value), nil
}

func classifyLookupError(err error, category domain.Category, symbol string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFound(category, symbol, domain.NotFoundRow)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable:
			return domain.NewNotFound(category, symbol, domain.NotFoundTable)
		case pgUndefinedColumn:
			return domain.NewNotFound(category, symbol, domain.NotFoundColumn)
		}
	}
	return fmt.Errorf("%w: query cryptos: %v", domain.ErrTransport, err)
}

// parsePayload decodes the stored text column. Single-quoted blobs are a
// legacy encoding from the old ingestion script, so a failed parse retries
// with quotes swapped; anything still unparseable returns as a raw string.
func parsePayload(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	swapped := strings.ReplaceAll(raw, "'", `"`)
	if err := json.Unmarshal([]byte(swapped), &v); err == nil {
		return v
	}
	return raw
}
