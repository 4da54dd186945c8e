package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/condoflow/condoflow/internal/domain/audit"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/postgres"
	"github.com/condoflow/condoflow/internal/types"
)

// auditRepository persists the append-only audit trail. There is deliberately
// no UPDATE or DELETE statement in this file.
type auditRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAuditRepository(db *postgres.DB, logger *logger.Logger) audit.Repository {
	return &auditRepository{db: db, logger: logger}
}

const auditColumns = `
	id, org_id, actor_id, action, entity_type, entity_id, changes,
	ip_address, user_agent, recorded_at`

func (r *auditRepository) Create(ctx context.Context, record *audit.Record) error {
	query := `
	INSERT INTO audit_records (` + auditColumns + `
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		record.ID,
		record.OrgID,
		record.ActorID,
		record.Action,
		record.EntityType,
		record.EntityID,
		record.Changes,
		record.IPAddress,
		record.UserAgent,
		record.RecordedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append audit record").
			WithReportableDetails(map[string]any{
				"entity_type": record.EntityType,
				"entity_id":   record.EntityID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *auditRepository) Get(ctx context.Context, id string) (*audit.Record, error) {
	query := `
	SELECT` + auditColumns + `
	FROM audit_records
	WHERE id = $1`

	var record audit.Record
	err := r.db.GetQuerier(ctx).GetContext(ctx, &record, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("audit record not found").
				WithHintf("Audit record %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get audit record").
			Mark(ierr.ErrDatabase)
	}

	return &record, nil
}

func (r *auditRepository) List(ctx context.Context, filter *types.AuditRecordFilter) ([]*audit.Record, error) {
	query := `
	SELECT` + auditColumns + `
	FROM audit_records
	WHERE org_id = $1`

	args := []interface{}{types.GetOrgID(ctx)}

	if filter == nil {
		filter = &types.AuditRecordFilter{}
	}

	if filter.EntityType != nil {
		args = append(args, *filter.EntityType)
		query += ` AND entity_type = ` + placeholder(len(args))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		query += ` AND entity_id = ` + placeholder(len(args))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		query += ` AND action = ` + placeholder(len(args))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		query += ` AND actor_id = ` + placeholder(len(args))
	}

	query += " ORDER BY recorded_at DESC, id DESC"
	args = append(args, filter.GetLimit())
	query += ` LIMIT ` + placeholder(len(args))
	args = append(args, filter.GetOffset())
	query += ` OFFSET ` + placeholder(len(args))

	var records []*audit.Record
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &records, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit records").
			Mark(ierr.ErrDatabase)
	}

	return records, nil
}

// placeholder renders the nth positional argument for a query
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
