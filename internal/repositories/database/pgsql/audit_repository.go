package pgsql

import (
	"context"

	"github.com/hishab-app/hishab_backend/internal/apperrors"
	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portsrepo "github.com/hishab-app/hishab_backend/internal/core/ports/repositories"
	"github.com/hishab-app/hishab_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAuditRepository appends to the audit trail. Records are write-once; there
// is no update or delete path.
type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for audit records.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// SaveAuditRecord appends one audit record.
func (r *PgxAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	modelRec := mapping.ToModelAuditRecord(record)

	query := `
		INSERT INTO audit_records (audit_id, table_name, record_id, operation_type, old_values, new_values, actor_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelRec.AuditID,
		modelRec.TableName,
		modelRec.RecordID,
		modelRec.OperationType,
		modelRec.OldValues,
		modelRec.NewValues,
		modelRec.ActorID,
		modelRec.Description,
		modelRec.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit record for "+modelRec.TableName+"/"+modelRec.RecordID, err)
	}
	return nil
}
