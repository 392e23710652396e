package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/medirent/backend/internal/application/finance"
	"github.com/medirent/backend/internal/domain/finance"
)

// PaymentHandler handles payment batch API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.POST("", h.Create)
	payments.GET("", h.List)
	payments.GET("/by-target", h.ListByTarget)
	payments.GET("/:id", h.Get)
	payments.GET("/:id/summary", h.Summary)
	payments.POST("/:id/records", h.AddRecords)
	payments.POST("/:id/save-partial", h.SavePartial)
	payments.POST("/:id/finalize", h.Finalize)
}

// Create opens the payment batch of a transaction, resuming the open one if
// it exists
func (h *PaymentHandler) Create(c *gin.Context) {
	var req financeapp.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	batch, err := h.paymentService.CreateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if batch.Resumed {
		h.Success(c, batch)
		return
	}
	h.Created(c, batch)
}

// Get returns one batch
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.paymentService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// Summary returns the per-method aggregation of one batch
func (h *PaymentHandler) Summary(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.paymentService.GetBatchSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// AddRecords appends payment records to an open batch
func (h *PaymentHandler) AddRecords(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Records []financeapp.PaymentRecordRequest `json:"records" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	batch, err := h.paymentService.AddRecords(c.Request.Context(), id, req.Records)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// SavePartial records an explicit save-and-continue-later on an open batch
func (h *PaymentHandler) SavePartial(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.paymentService.SavePartial(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// Finalize closes a financially complete batch
func (h *PaymentHandler) Finalize(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.paymentService.Finalize(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// List returns batches with filtering and pagination
func (h *PaymentHandler) List(c *gin.Context) {
	var filter financeapp.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	batches, total, err := h.paymentService.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, batches, total, filter.Page, filter.PageSize)
}

// ListByTarget returns the batch history of one transaction, newest first
func (h *PaymentHandler) ListByTarget(c *gin.Context) {
	var query struct {
		RentalID     *uuid.UUID `form:"rental_id"`
		SaleID       *uuid.UUID `form:"sale_id"`
		DiagnosticID *uuid.UUID `form:"diagnostic_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	batches, err := h.paymentService.GetBatchesByTarget(c.Request.Context(), finance.BatchTarget{
		RentalID:     query.RentalID,
		SaleID:       query.SaleID,
		DiagnosticID: query.DiagnosticID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}
