package handler

import (
	"github.com/gin-gonic/gin"
	insuranceapp "github.com/medirent/backend/internal/application/insurance"
)

// BondHandler handles CNAM bond API endpoints
type BondHandler struct {
	BaseHandler
	bondService *insuranceapp.BondService
}

// NewBondHandler creates a new BondHandler
func NewBondHandler(bondService *insuranceapp.BondService) *BondHandler {
	return &BondHandler{bondService: bondService}
}

// RegisterRoutes registers bond routes
func (h *BondHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bonds := rg.Group("/bonds")
	bonds.POST("", h.Create)
	bonds.GET("", h.List)
	bonds.GET("/expiring", h.ListExpiring)
	bonds.GET("/:id", h.Get)
	bonds.POST("/:id/approve", h.Approve)
	bonds.POST("/:id/reject", h.Reject)
}

// Create registers a new bond in EN_ATTENTE
func (h *BondHandler) Create(c *gin.Context) {
	var req insuranceapp.CreateBondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	bond, err := h.bondService.CreateBond(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bond)
}

// Get returns one bond with its effective status
func (h *BondHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bond, err := h.bondService.GetBond(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bond)
}

// Approve records the insurer approval. Pending CNAM payment records
// referencing the bond are confirmed through the published event.
func (h *BondHandler) Approve(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bond, err := h.bondService.ApproveBond(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bond)
}

// Reject records the insurer rejection with its reason
func (h *BondHandler) Reject(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	bond, err := h.bondService.RejectBond(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bond)
}

// List returns bonds with filtering and pagination
func (h *BondHandler) List(c *gin.Context) {
	var filter insuranceapp.BondListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	bonds, total, err := h.bondService.ListBonds(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, bonds, total, filter.Page, filter.PageSize)
}

// ListExpiring returns approved bonds inside their renewal window
func (h *BondHandler) ListExpiring(c *gin.Context) {
	bonds, err := h.bondService.ListExpiringBonds(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bonds)
}
