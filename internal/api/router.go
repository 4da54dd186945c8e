package api

import (
	"net/http"

	"github.com/condoflow/condoflow/internal/api/cron"
	v1 "github.com/condoflow/condoflow/internal/api/v1"
	"github.com/condoflow/condoflow/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Fee     *v1.FeeHandler
	Invoice *v1.InvoiceHandler
	Audit   *v1.AuditHandler
	Cron    *cron.BillingHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ContextMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	// cron routes for manual pipeline triggers
	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/billing/run", handlers.Cron.ProcessRecurringFees)
		cronGroup.POST("/invoices/overdue", handlers.Cron.MarkOverdueInvoices)
	}

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Fee definition routes
	fees := router.Group("/fees")
	{
		fees.POST("", handlers.Fee.CreateFee)
		fees.GET("", handlers.Fee.ListFees)
		fees.GET("/:id", handlers.Fee.GetFee)
		fees.PUT("/:id", handlers.Fee.UpdateFee)
		fees.POST("/:id/terminate", handlers.Fee.TerminateFee)
	}

	// Invoice routes
	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id/payment-status", handlers.Invoice.UpdatePaymentStatus)
	}

	// Audit trail routes, read-only
	auditRecords := router.Group("/audit-records")
	{
		auditRecords.GET("", handlers.Audit.ListRecords)
		auditRecords.GET("/:id", handlers.Audit.GetRecord)
	}
}
