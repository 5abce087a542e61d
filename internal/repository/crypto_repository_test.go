package repository

import (
	"context"
	"errors"
	"testing"

	"market-pulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

func newTestCryptoRepository(row pgx.Row) *CryptoRepository {
	pool := &poolStub{row: row}
	return NewCryptoRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))
}

func TestCategoryValueParsesStoredPayload(t *testing.T) {
	payload := `{"value": "72", "classification": "Greed"}`
	repo := newTestCryptoRepository(rowStub{value: &payload})

	v, err := repo.CategoryValue(context.Background(), domain.CategoryFearGreed, "BTC")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["classification"] != "Greed" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestCategoryValueEmptyColumn(t *testing.T) {
	blank := "   "
	cases := map[string]pgx.Row{
		"null column":       rowStub{value: nil},
		"whitespace column": rowStub{value: &blank},
	}

	for name, row := range cases {
		_, err := newTestCryptoRepository(row).CategoryValue(context.Background(), domain.CategoryFearGreed, "BTC")
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("%s: expected NotFoundError, got %v", name, err)
		}
		if nf.Reason != domain.NotFoundValue {
			t.Fatalf("%s: expected reason %s, got %s", name, domain.NotFoundValue, nf.Reason)
		}
	}
}

func TestCategoryValueMissingRow(t *testing.T) {
	repo := newTestCryptoRepository(rowStub{err: pgx.ErrNoRows})

	_, err := repo.CategoryValue(context.Background(), domain.CategoryFearGreed, "BTC")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Reason != domain.NotFoundRow {
		t.Fatalf("expected row not found, got %v", err)
	}
}

func TestCategoryValueUnknownCategory(t *testing.T) {
	repo := newTestCryptoRepository(rowStub{})

	_, err := repo.CategoryValue(context.Background(), domain.CategorySignalHistory, "BTC")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Reason != domain.NotFoundColumn {
		t.Fatalf("unmapped category should report a missing column, got %v", err)
	}
}

func TestClassifyLookupError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason domain.NotFoundReason
	}{
		{"missing row", pgx.ErrNoRows, domain.NotFoundRow},
		{"missing table", &pgconn.PgError{Code: pgUndefinedTable}, domain.NotFoundTable},
		{"missing column", &pgconn.PgError{Code: pgUndefinedColumn}, domain.NotFoundColumn},
	}

	for _, tc := range cases {
		err := classifyLookupError(tc.err, domain.CategoryFearGreed, "BTC")
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("%s: expected NotFoundError, got %v", tc.name, err)
		}
		if nf.Reason != tc.reason {
			t.Fatalf("%s: expected reason %s, got %s", tc.name, tc.reason, nf.Reason)
		}
	}
}

func TestClassifyLookupErrorTransport(t *testing.T) {
	err := classifyLookupError(errors.New("connection refused"), domain.CategoryFearGreed, "BTC")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		t.Fatal("connection errors must not be reported as not found")
	}
}

func TestParsePayloadJSON(t *testing.T) {
	v := parsePayload(`{"value": "72", "classification": "Greed"}`)
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v)
	}
	if m["value"] != "72" {
		t.Fatalf("unexpected payload: %+v", m)
	}
}

func TestParsePayloadSingleQuoteLegacy(t *testing.T) {
	v := parsePayload(`{'value': '72'}`)
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("legacy single-quote payload should parse, got %T", v)
	}
	if m["value"] != "72" {
		t.Fatalf("unexpected payload: %+v", m)
	}
}

func TestParsePayloadRawFallback(t *testing.T) {
	raw := "just a plain string"
	if v := parsePayload(raw); v != raw {
		t.Fatalf("unparseable payload should pass through, got %v", v)
	}
}

func TestCategoryColumnsCoverScalarCategories(t *testing.T) {
	for _, c := range domain.ScalarCategories {
		if _, ok := categoryColumns[c]; !ok {
			t.Errorf("no column mapping for category %s", c)
		}
	}
	if _, ok := categoryColumns[domain.CategorySignalHistory]; ok {
		t.Error("list categories must not map to cryptos columns")
	}
}

type poolStub struct {
	row pgx.Row
}

func (p *poolStub) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *poolStub) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (p *poolStub) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (p *poolStub) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return p.row
}

type rowStub struct {
	value *string
	err   error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(**string); ok {
			*p = r.value
		}
	}
	return nil
}
