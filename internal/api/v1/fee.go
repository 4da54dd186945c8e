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

type FeeHandler struct {
	service service.FeeService
	log     *logger.Logger
}

func NewFeeHandler(service service.FeeService, log *logger.Logger) *FeeHandler {
	return &FeeHandler{service: service, log: log}
}

func (h *FeeHandler) CreateFee(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.service.CreateFee(ctx, &req, requestOrigin(c))
	if err != nil {
		h.log.Error("Failed to create fee", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *FeeHandler) GetFee(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.service.GetFee(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get fee", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *FeeHandler) ListFees(c *gin.Context) {
	ctx := c.Request.Context()
	var filter types.FeeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.service.ListFees(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to list fees", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *FeeHandler) UpdateFee(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.service.UpdateFee(ctx, c.Param("id"), &req, requestOrigin(c))
	if err != nil {
		h.log.Error("Failed to update fee", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *FeeHandler) TerminateFee(c *gin.Context) {
	ctx := c.Request.Context()
	response, err := h.service.TerminateFee(ctx, c.Param("id"), requestOrigin(c))
	if err != nil {
		h.log.Error("Failed to terminate fee", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
