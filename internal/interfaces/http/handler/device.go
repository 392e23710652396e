package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/medirent/backend/internal/application/catalog"
)

// DeviceHandler handles device catalog API endpoints
type DeviceHandler struct {
	BaseHandler
	deviceService *catalogapp.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceService *catalogapp.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// RegisterRoutes registers device routes
func (h *DeviceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	devices := rg.Group("/devices")
	devices.POST("", h.Create)
	devices.GET("", h.List)
	devices.GET("/:id", h.Get)
	devices.PUT("/:id/pricing", h.UpdatePricing)
	devices.POST("/:id/maintenance", h.SetMaintenance)
	devices.POST("/:id/retire", h.Retire)
}

// Create registers a device in the catalog
func (h *DeviceHandler) Create(c *gin.Context) {
	var req catalogapp.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	device, err := h.deviceService.CreateDevice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, device)
}

// Get returns one device
func (h *DeviceHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	device, err := h.deviceService.GetDevice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}

// List returns devices with filtering and pagination
func (h *DeviceHandler) List(c *gin.Context) {
	var filter catalogapp.DeviceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	devices, total, err := h.deviceService.ListDevices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, devices, total, filter.Page, filter.PageSize)
}

// UpdatePricing changes the sale price and rental rate
func (h *DeviceHandler) UpdatePricing(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		SalePrice  float64 `json:"sale_price" binding:"gte=0"`
		RentalRate float64 `json:"rental_rate" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	device, err := h.deviceService.UpdatePricing(c.Request.Context(), id, req.SalePrice, req.RentalRate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}

// SetMaintenance moves a device in or out of maintenance
func (h *DeviceHandler) SetMaintenance(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		InMaintenance *bool `json:"in_maintenance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	device, err := h.deviceService.SetMaintenance(c.Request.Context(), id, *req.InMaintenance)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}

// Retire removes a device from circulation
func (h *DeviceHandler) Retire(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	device, err := h.deviceService.RetireDevice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, device)
}
