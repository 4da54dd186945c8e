package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/condoflow/condoflow/internal/domain/fee"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/postgres"
	"github.com/condoflow/condoflow/internal/types"
)

type feeRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewFeeRepository(db *postgres.DB, logger *logger.Logger) fee.Repository {
	return &feeRepository{db: db, logger: logger}
}

const feeColumns = `
	id, org_id, owner_type, owner_id, name, amount, currency,
	recurrence_period, next_recurring_date, active, terminated_at,
	status, created_at, updated_at, created_by, updated_by`

func (r *feeRepository) Create(ctx context.Context, f *fee.FeeDefinition) error {
	query := `
	INSERT INTO fee_definitions (` + feeColumns + `
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		f.ID,
		f.OrgID,
		f.OwnerType,
		f.OwnerID,
		f.Name,
		f.Amount,
		f.Currency,
		f.RecurrencePeriod,
		f.NextRecurringDate,
		f.Active,
		f.TerminatedAt,
		f.Status,
		f.CreatedAt,
		f.UpdatedAt,
		f.CreatedBy,
		f.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create fee definition").
			WithReportableDetails(map[string]any{"fee_id": f.ID}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *feeRepository) Get(ctx context.Context, id string) (*fee.FeeDefinition, error) {
	query := `
	SELECT` + feeColumns + `
	FROM fee_definitions
	WHERE id = $1 AND status != $2`

	var f fee.FeeDefinition
	err := r.db.GetQuerier(ctx).GetContext(ctx, &f, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("fee definition not found").
				WithHintf("Fee definition %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get fee definition").
			Mark(ierr.ErrDatabase)
	}

	return &f, nil
}

// GetForUpdate takes a row-level lock on the fee. The lock scope is the
// serialization point for invoice generation on this fee; unrelated fees
// proceed independently.
func (r *feeRepository) GetForUpdate(ctx context.Context, id string) (*fee.FeeDefinition, error) {
	if _, ok := postgres.GetTx(ctx); !ok {
		return nil, ierr.NewError("row lock requires a transaction").
			WithHint("GetForUpdate must be called within a transaction").
			Mark(ierr.ErrInvalidOperation)
	}

	query := `
	SELECT` + feeColumns + `
	FROM fee_definitions
	WHERE id = $1 AND status != $2
	FOR UPDATE`

	var f fee.FeeDefinition
	err := r.db.GetQuerier(ctx).GetContext(ctx, &f, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("fee definition not found").
				WithHintf("Fee definition %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to lock fee definition").
			Mark(ierr.ErrDatabase)
	}

	return &f, nil
}

func (r *feeRepository) Update(ctx context.Context, f *fee.FeeDefinition) error {
	query := `
	UPDATE fee_definitions SET
		name = $2,
		amount = $3,
		currency = $4,
		recurrence_period = $5,
		next_recurring_date = $6,
		active = $7,
		terminated_at = $8,
		status = $9,
		updated_at = $10,
		updated_by = $11
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		f.ID,
		f.Name,
		f.Amount,
		f.Currency,
		f.RecurrencePeriod,
		f.NextRecurringDate,
		f.Active,
		f.TerminatedAt,
		f.Status,
		f.UpdatedAt,
		f.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update fee definition").
			WithReportableDetails(map[string]any{"fee_id": f.ID}).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("fee definition not found").
			WithHintf("Fee definition %s does not exist", f.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *feeRepository) List(ctx context.Context, filter *types.FeeFilter) ([]*fee.FeeDefinition, error) {
	query := `
	SELECT` + feeColumns + `
	FROM fee_definitions
	WHERE org_id = $1 AND status != $2`

	args := []interface{}{types.GetOrgID(ctx), types.StatusDeleted}
	query, args = applyFeeFilter(query, args, filter)

	var fees []*fee.FeeDefinition
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &fees, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list fee definitions").
			Mark(ierr.ErrDatabase)
	}

	return fees, nil
}

func (r *feeRepository) ListDue(ctx context.Context, asOf time.Time, limit, offset int) ([]*fee.FeeDefinition, error) {
	query := `
	SELECT` + feeColumns + `
	FROM fee_definitions
	WHERE active = true
	  AND terminated_at IS NULL
	  AND next_recurring_date <= $1
	  AND status = $2
	ORDER BY next_recurring_date ASC, id ASC
	LIMIT $3 OFFSET $4`

	var fees []*fee.FeeDefinition
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &fees, query, asOf, types.StatusActive, limit, offset)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list due fee definitions").
			Mark(ierr.ErrDatabase)
	}

	return fees, nil
}

func applyFeeFilter(query string, args []interface{}, filter *types.FeeFilter) (string, []interface{}) {
	if filter == nil {
		return query + " ORDER BY created_at DESC", args
	}

	if filter.OwnerType != nil {
		args = append(args, *filter.OwnerType)
		query += ` AND owner_type = ` + placeholder(len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += ` AND owner_id = ` + placeholder(len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += ` AND active = ` + placeholder(len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		query += ` AND next_recurring_date <= ` + placeholder(len(args))
	}

	query += " ORDER BY created_at DESC"

	args = append(args, filter.GetLimit())
	query += ` LIMIT ` + placeholder(len(args))
	args = append(args, filter.GetOffset())
	query += ` OFFSET ` + placeholder(len(args))

	return query, args
}
