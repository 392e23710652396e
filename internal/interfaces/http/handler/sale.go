package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/medirent/backend/internal/application/trade"
)

// SaleHandler handles sale and diagnostic API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes registers sale and diagnostic routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	sales.POST("", h.CreateSale)
	sales.GET("", h.ListSales)
	sales.GET("/:id", h.GetSale)

	diagnostics := rg.Group("/diagnostics")
	diagnostics.POST("", h.CreateDiagnostic)
	diagnostics.GET("", h.ListDiagnostics)
	diagnostics.GET("/:id", h.GetDiagnostic)
	diagnostics.PUT("/:id/result", h.EnterResult)
}

// CreateSale records a sale
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req tradeapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetSale returns one sale
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// ListSales returns sales with filtering and pagination
func (h *SaleHandler) ListSales(c *gin.Context) {
	var filter tradeapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	sales, total, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// CreateDiagnostic opens a pending diagnostic
func (h *SaleHandler) CreateDiagnostic(c *gin.Context) {
	var req tradeapp.CreateDiagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	diagnostic, err := h.saleService.CreateDiagnostic(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, diagnostic)
}

// GetDiagnostic returns one diagnostic
func (h *SaleHandler) GetDiagnostic(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	diagnostic, err := h.saleService.GetDiagnostic(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, diagnostic)
}

// EnterResult closes a diagnostic with its result
func (h *SaleHandler) EnterResult(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Result string `json:"result" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	diagnostic, err := h.saleService.EnterDiagnosticResult(c.Request.Context(), id, req.Result)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, diagnostic)
}

// ListDiagnostics returns diagnostics with filtering and pagination
func (h *SaleHandler) ListDiagnostics(c *gin.Context) {
	var query struct {
		Status    string     `form:"status"`
		PatientID *uuid.UUID `form:"patient_id"`
		Page      int        `form:"page"`
		PageSize  int        `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	diagnostics, total, err := h.saleService.ListDiagnostics(c.Request.Context(), query.Status, query.PatientID, query.Page, query.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, diagnostics, total, query.Page, query.PageSize)
}
