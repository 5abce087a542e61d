package domain

import (
	"errors"
	"fmt"
)

// ErrCredentialUnavailable means the mailbox OAuth credential could not be
// obtained or refreshed. Callers skip mailbox access for the cycle; it is
// never fatal to the process.
var ErrCredentialUnavailable = errors.New("mailbox credentials unavailable")

// ErrTransport covers network or API failures against the mailbox, the
// database, or the scrape target.
var ErrTransport = errors.New("transport failure")

type NotFoundReason string

const (
	NotFoundTable  NotFoundReason = "table_missing"
	NotFoundColumn NotFoundReason = "column_missing"
	NotFoundRow    NotFoundReason = "row_missing"
	NotFoundValue  NotFoundReason = "value_empty"
)

// NotFoundError reports a missing table, column, row, or empty value for a
// category lookup. The sub-reason is surfaced in 404 payloads.
type NotFoundError struct {
	Category Category
	Symbol   string
	Reason   NotFoundReason
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s data for %s not found: %s", e.Category, e.Symbol, e.Reason)
}

func NewNotFound(category Category, symbol string, reason NotFoundReason) *NotFoundError {
	return &NotFoundError{Category: category, Symbol: symbol, Reason: reason}
}
