package repository

import (
	"github.com/condoflow/condoflow/internal/domain/audit"
	"github.com/condoflow/condoflow/internal/domain/fee"
	"github.com/condoflow/condoflow/internal/domain/invoice"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/postgres"
	postgresRepo "github.com/condoflow/condoflow/internal/repository/postgres"
)

func NewFeeRepository(db *postgres.DB, logger *logger.Logger) fee.Repository {
	return postgresRepo.NewFeeRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewAuditRepository(db *postgres.DB, logger *logger.Logger) audit.Repository {
	return postgresRepo.NewAuditRepository(db, logger)
}
