package service

import (
	"github.com/condoflow/condoflow/internal/clock"
	"github.com/condoflow/condoflow/internal/config"
	"github.com/condoflow/condoflow/internal/domain/audit"
	"github.com/condoflow/condoflow/internal/domain/fee"
	"github.com/condoflow/condoflow/internal/domain/invoice"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/postgres"
)

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	clock clock.Clock,
	feeRepo fee.Repository,
	invoiceRepo invoice.Repository,
	auditRepo audit.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		DB:          db,
		Clock:       clock,
		FeeRepo:     feeRepo,
		InvoiceRepo: invoiceRepo,
		AuditRepo:   auditRepo,
	}
}
