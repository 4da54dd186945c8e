package cron

import (
	"net/http"

	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingHandler exposes the scheduled pipelines as manual trigger endpoints
// so an operator can force a run without waiting for the next tick
type BillingHandler struct {
	billingService service.BillingService
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

// NewBillingHandler creates a new billing cron handler
func NewBillingHandler(
	billingService service.BillingService,
	invoiceService service.InvoiceService,
	logger *logger.Logger,
) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// ProcessRecurringFees collects due fees and generates their invoices
func (h *BillingHandler) ProcessRecurringFees(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.billingService.ProcessRecurringFees(ctx)
	if err != nil {
		h.logger.Errorw("failed to process recurring fees",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// MarkOverdueInvoices transitions pending invoices past their due date to overdue
func (h *BillingHandler) MarkOverdueInvoices(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.invoiceService.MarkOverdueInvoices(ctx)
	if err != nil {
		h.logger.Errorw("failed to mark overdue invoices",
			"error", err)

		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
