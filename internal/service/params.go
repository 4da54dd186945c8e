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

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Clock  clock.Clock

	FeeRepo     fee.Repository
	InvoiceRepo invoice.Repository
	AuditRepo   audit.Repository
}
