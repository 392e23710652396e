package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/medirent/backend/internal/application/trade"
)

// RentalHandler handles rental contract API endpoints
type RentalHandler struct {
	BaseHandler
	rentalService *tradeapp.RentalService
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(rentalService *tradeapp.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rentalService}
}

// RegisterRoutes registers rental routes
func (h *RentalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rentals := rg.Group("/rentals")
	rentals.POST("", h.Create)
	rentals.GET("", h.List)
	rentals.GET("/:id", h.Get)
	rentals.POST("/:id/extend", h.Extend)
	rentals.POST("/:id/end", h.End)
	rentals.PUT("/:id/dates", h.ScheduleDates)
	rentals.GET("/:id/periods", h.ListPeriods)
	rentals.POST("/:id/periods", h.CreatePeriod)

	periods := rg.Group("/periods")
	periods.POST("/:id/pay", h.MarkPeriodPaid)
}

// Create opens a rental contract
func (h *RentalHandler) Create(c *gin.Context) {
	var req tradeapp.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rental, err := h.rentalService.CreateRental(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rental)
}

// Get returns one rental
func (h *RentalHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	rental, err := h.rentalService.GetRental(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental)
}

// Extend moves the contract end date forward
func (h *RentalHandler) Extend(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		EndDate time.Time `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rental, err := h.rentalService.ExtendRental(c.Request.Context(), id, req.EndDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental)
}

// End closes the contract and returns the device to stock
func (h *RentalHandler) End(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ReturnedAt time.Time `json:"returned_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rental, err := h.rentalService.EndRental(c.Request.Context(), id, req.ReturnedAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental)
}

// ScheduleDates sets or clears the follow-up dates feeding the reminder feed
func (h *RentalHandler) ScheduleDates(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.ScheduleDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rental, err := h.rentalService.ScheduleDates(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rental)
}

// List returns rentals with filtering and pagination
func (h *RentalHandler) List(c *gin.Context) {
	var filter tradeapp.RentalListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	rentals, total, err := h.rentalService.ListRentals(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rentals, total, filter.Page, filter.PageSize)
}

// CreatePeriod opens a billing period on a rental
func (h *RentalHandler) CreatePeriod(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	period, err := h.rentalService.CreatePeriod(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, period)
}

// ListPeriods returns the billing periods of a rental, oldest first
func (h *RentalHandler) ListPeriods(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	periods, err := h.rentalService.ListPeriods(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, periods)
}

// MarkPeriodPaid settles a billing period
func (h *RentalHandler) MarkPeriodPaid(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	period, err := h.rentalService.MarkPeriodPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}
