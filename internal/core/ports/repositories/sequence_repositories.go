package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Sequence scopes. Each scope keeps its own per-year counter.
const (
	SequenceScopeJournal = "journal"
	SequenceScopeExpense = "expense"
	SequenceScopePayment = "payment"
)

// SequenceRepository hands out document numbers from per-year atomic counters.
type SequenceRepository interface {
	// NextSequenceInTx atomically increments and returns the counter for
	// (scope, year) inside an existing database transaction. The first call
	// for a new year returns 1.
	NextSequenceInTx(ctx context.Context, tx pgx.Tx, scope string, year int) (int64, error)
}
