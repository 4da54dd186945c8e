package v1

import (
	"net/http"

	"github.com/condoflow/condoflow/internal/api/dto"
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/service"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.service.GetInvoice(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	ctx := c.Request.Context()
	var filter types.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.service.ListInvoices(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to list invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdatePaymentStatus is the endpoint the payment system reports settled or
// cancelled invoices through
func (h *InvoiceHandler) UpdatePaymentStatus(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdateInvoicePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.service.UpdatePaymentStatus(ctx, c.Param("id"), &req, requestOrigin(c))
	if err != nil {
		h.log.Error("Failed to update invoice payment status", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
