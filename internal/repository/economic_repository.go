package repository

import (
	"context"
	"fmt"

	"market-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const createEconomicIndicatorsTable = `
CREATE TABLE IF NOT EXISTS economic_indicators (
    date            DATE NOT NULL,
    time            TIME NOT NULL,
    event_name      TEXT NOT NULL,
    actual_value    TEXT,
    previous_value  TEXT,
    consensus_value TEXT,
    forecast_value  TEXT,
    PRIMARY KEY (date, time, event_name)
);
`

// EconomicRepository stores scraped economic-calendar rows keyed by
// (date, time, event name).
type EconomicRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewEconomicRepository(pool PgxPool, tracer trace.Tracer) *EconomicRepository {
	return &EconomicRepository{pool: pool, tracer: tracer}
}

func (r *EconomicRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "economic-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createEconomicIndicatorsTable)
	return err
}

// Upsert writes rows in one batch; an existing (date, time, event) key has
// its value columns overwritten.
func (r *EconomicRepository) Upsert(ctx context.Context, rows []domain.EconomicIndicatorRow) error {
	if len(rows) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "economic-repo.upsert")
	defer span.End()

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(
			`INSERT INTO economic_indicators
			     (date, time, event_name, actual_value, previous_value, consensus_value, forecast_value)
			 VALUES ($1::date, $2::time, $3, $4, $5, $6, $7)
			 ON CONFLICT (date, time, event_name) DO UPDATE SET
			     actual_value = EXCLUDED.actual_value,
			     previous_value = EXCLUDED.previous_value,
			     consensus_value = EXCLUDED.consensus_value,
			     forecast_value = EXCLUDED.forecast_value`,
			row.Date, row.Time, row.EventName, row.Actual, row.Previous, row.Consensus, row.Forecast,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%w: upsert economic indicators: %v", domain.ErrTransport, err)
		}
	}
	return nil
}

// List returns all rows ordered by (date, time) ascending.
func (r *EconomicRepository) List(ctx context.Context) ([]domain.EconomicIndicatorRow, error) {
	_, span := r.tracer.Start(ctx, "economic-repo.list")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI:SS'), event_name,
		        actual_value, previous_value, consensus_value, forecast_value
		 FROM economic_indicators
		 ORDER BY date ASC, time ASC`,
	)
	if err != nil {
		return nil, classifyLookupError(err, domain.CategoryEconomicIndicators, "")
	}
	defer rows.Close()

	var out []domain.EconomicIndicatorRow
	for rows.Next() {
		var row domain.EconomicIndicatorRow
		if err := rows.Scan(&row.Date, &row.Time, &row.EventName,
			&row.Actual, &row.Previous, &row.Consensus, &row.Forecast); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
