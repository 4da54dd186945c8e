package main

import (
	"context"
	"time"

	"github.com/condoflow/condoflow/internal/api"
	"github.com/condoflow/condoflow/internal/api/cron"
	v1 "github.com/condoflow/condoflow/internal/api/v1"
	"github.com/condoflow/condoflow/internal/clock"
	"github.com/condoflow/condoflow/internal/config"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/postgres"
	"github.com/condoflow/condoflow/internal/repository"
	"github.com/condoflow/condoflow/internal/scheduler"
	"github.com/condoflow/condoflow/internal/service"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/condoflow/condoflow/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC

	// Load .env if present; environment wins over file values
	_ = godotenv.Load()
}

func main() {
	validator.NewValidator()

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			clock.New,

			postgres.NewDB,
			provideDBClient,
		),
	)

	// Repositories
	opts = append(opts,
		fx.Provide(
			repository.NewFeeRepository,
			repository.NewInvoiceRepository,
			repository.NewAuditRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAuditService,
			service.NewFeeService,
			service.NewInvoiceService,
			service.NewBillingService,
		),
	)

	// API and scheduler
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
			provideScheduler,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	logger *logger.Logger,
	feeService service.FeeService,
	invoiceService service.InvoiceService,
	auditService service.AuditService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Fee:     v1.NewFeeHandler(feeService, logger),
		Invoice: v1.NewInvoiceHandler(invoiceService, logger),
		Audit:   v1.NewAuditHandler(auditService, logger),
		Cron:    cron.NewBillingHandler(billingService, invoiceService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(handlers)
}

func provideScheduler(
	cfg *config.Configuration,
	logger *logger.Logger,
	billingService service.BillingService,
	invoiceService service.InvoiceService,
) (*scheduler.Scheduler, error) {
	sched := scheduler.New(logger)

	if err := sched.Register("recurring_billing", cfg.Scheduler.BillingInterval, func(ctx context.Context) error {
		_, err := billingService.ProcessRecurringFees(backgroundContext(ctx))
		return err
	}); err != nil {
		return nil, err
	}

	if err := sched.Register("overdue_marking", cfg.Scheduler.OverdueInterval, func(ctx context.Context) error {
		_, err := invoiceService.MarkOverdueInvoices(backgroundContext(ctx))
		return err
	}); err != nil {
		return nil, err
	}

	return sched, nil
}

// backgroundContext stamps pipeline runs with the system actor so their
// mutations are attributable in the audit trail
func backgroundContext(ctx context.Context) context.Context {
	return types.SetActorID(ctx, types.SystemActorID)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	sched *scheduler.Scheduler,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()

			if cfg.Scheduler.Enabled {
				sched.Start()
			} else {
				log.Info("Scheduler disabled by configuration")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			sched.Stop()
			db.Close()
			return nil
		},
	})
}
