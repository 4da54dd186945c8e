package v1

import (
	"net/http"

	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/service"
	"github.com/condoflow/condoflow/internal/types"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the read-only audit trail. There is intentionally no
// write endpoint.
type AuditHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditHandler(service service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{service: service, log: log}
}

func (h *AuditHandler) GetRecord(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.service.GetRecord(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get audit record", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuditHandler) ListRecords(c *gin.Context) {
	ctx := c.Request.Context()
	var filter types.AuditRecordFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.service.ListRecords(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to list audit records", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
