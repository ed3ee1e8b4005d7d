package pgsql

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSequenceRepository hands out document numbers from per-(scope, year)
// counters stored in entry_sequences.
type PgxSequenceRepository struct {
	BaseRepository
}

// newPgxSequenceRepository creates a new repository for document number sequences.
func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepository {
	return &PgxSequenceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSequenceRepository implements portsrepo.SequenceRepository
var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextSequenceInTx atomically increments and returns the counter for
// (scope, year). The upsert takes a row lock, so concurrent draws within the
// same scope serialize on the counter row and every caller sees a distinct
// value. The first draw for a new year returns 1.
func (r *PgxSequenceRepository) NextSequenceInTx(ctx context.Context, tx pgx.Tx, scope string, year int) (int64, error) {
	query := `
		INSERT INTO entry_sequences (scope, year, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, year) DO UPDATE SET last_seq = entry_sequences.last_seq + 1
		RETURNING last_seq;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, scope, year).Scan(&seq); err != nil {
		return 0, apperrors.NewAppError(500, "failed to draw next sequence for "+scope, err)
	}
	return seq, nil
}
