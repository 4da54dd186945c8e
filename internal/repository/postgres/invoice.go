package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/condoflow/condoflow/internal/domain/invoice"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/postgres"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/lib/pq"
)

type invoiceRepository struct {
	db    *postgres.DB
	clock func() time.Time
	log   *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, clock: func() time.Time { return time.Now().UTC() }, log: log}
}

const invoiceColumns = `
	id, org_id, fee_id, owner_type, owner_id, amount, currency,
	invoice_status, invoice_number, period_start, period_end, due_date,
	issued_at, paid_at, cancelled_at,
	status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	INSERT INTO invoices (` + invoiceColumns + `
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20
	)`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.OrgID,
		inv.FeeID,
		inv.OwnerType,
		inv.OwnerID,
		inv.Amount,
		inv.Currency,
		inv.InvoiceStatus,
		inv.InvoiceNumber,
		inv.PeriodStart,
		inv.PeriodEnd,
		inv.DueDate,
		inv.IssuedAt,
		inv.PaidAt,
		inv.CancelledAt,
		inv.Status,
		inv.CreatedAt,
		inv.UpdatedAt,
		inv.CreatedBy,
		inv.UpdatedBy,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// The unique index on (fee_id, period_start) turns a
			// duplicate dispatch into a detectable conflict rather than a
			// duplicate invoice.
			return ierr.WithError(err).
				WithHint("An invoice already exists for this fee and period").
				WithReportableDetails(map[string]any{
					"fee_id":       inv.FeeID,
					"period_start": inv.PeriodStart,
					"constraint":   pqErr.Constraint,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
	SELECT` + invoiceColumns + `
	FROM invoices
	WHERE id = $1 AND status != $2`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id, types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("invoice not found").
				WithHintf("Invoice %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	UPDATE invoices SET
		invoice_status = $2,
		due_date = $3,
		paid_at = $4,
		cancelled_at = $5,
		status = $6,
		updated_at = $7,
		updated_by = $8
	WHERE id = $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.InvoiceStatus,
		inv.DueDate,
		inv.PaidAt,
		inv.CancelledAt,
		inv.Status,
		inv.UpdatedAt,
		inv.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s does not exist", inv.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query := `
	SELECT` + invoiceColumns + `
	FROM invoices
	WHERE org_id = $1 AND status != $2`

	args := []interface{}{types.GetOrgID(ctx), types.StatusDeleted}

	if filter == nil {
		filter = &types.InvoiceFilter{}
	}

	if filter.FeeID != nil {
		args = append(args, *filter.FeeID)
		query += ` AND fee_id = ` + placeholder(len(args))
	}
	if filter.InvoiceStatus != nil {
		args = append(args, *filter.InvoiceStatus)
		query += ` AND invoice_status = ` + placeholder(len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		query += ` AND due_date < ` + placeholder(len(args))
	}

	query += " ORDER BY issued_at DESC"
	args = append(args, filter.GetLimit())
	query += ` LIMIT ` + placeholder(len(args))
	args = append(args, filter.GetOffset())
	query += ` OFFSET ` + placeholder(len(args))

	var invoices []*invoice.Invoice
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	return invoices, nil
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, feeID string, periodStart time.Time) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM invoices
		WHERE fee_id = $1 AND period_start = $2 AND status != $3
	)`

	var exists bool
	err := r.db.GetQuerier(ctx).GetContext(ctx, &exists, query, feeID, periodStart, types.StatusDeleted)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Invoice existence check failed").
			WithReportableDetails(map[string]any{
				"fee_id":       feeID,
				"period_start": periodStart,
			}).
			Mark(ierr.ErrDatabase)
	}

	return exists, nil
}

func (r *invoiceRepository) ListPendingDueBefore(ctx context.Context, asOf time.Time, limit, offset int) ([]*invoice.Invoice, error) {
	query := `
	SELECT` + invoiceColumns + `
	FROM invoices
	WHERE invoice_status = $1
	  AND due_date < $2
	  AND status = $3
	ORDER BY due_date ASC, id ASC
	LIMIT $4 OFFSET $5`

	var invoices []*invoice.Invoice
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		types.InvoiceStatusPending, asOf, types.StatusActive, limit, offset)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pending invoices past due").
			Mark(ierr.ErrDatabase)
	}

	return invoices, nil
}

// NextInvoiceNumber allocates a strictly increasing per-org sequence value
// via an atomic upsert and formats it as INV-YYYYMM-NNNNN.
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	yearMonth := r.clock().Format("200601") // YYYYMM
	orgID := types.GetOrgID(ctx)

	query := `
	INSERT INTO invoice_sequences (org_id, year_month, last_value, created_at, updated_at)
	VALUES ($1, $2, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT (org_id, year_month) DO UPDATE
	SET last_value = invoice_sequences.last_value + 1,
		updated_at = CURRENT_TIMESTAMP
	RETURNING last_value`

	var lastValue int64
	err := r.db.GetQuerier(ctx).GetContext(ctx, &lastValue, query, orgID, yearMonth)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Invoice number generation failed").
			Mark(ierr.ErrDatabase)
	}

	r.log.Debugw("allocated invoice number",
		"org_id", orgID,
		"year_month", yearMonth,
		"sequence", lastValue)

	return fmt.Sprintf("INV-%s-%05d", yearMonth, lastValue), nil
}
