package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/medirent/backend/internal/application/finance"
	wizardapp "github.com/medirent/backend/internal/application/wizard"
)

// WizardHandler handles the multi-step payment wizard API endpoints
type WizardHandler struct {
	BaseHandler
	coordinator *wizardapp.Coordinator
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(coordinator *wizardapp.Coordinator) *WizardHandler {
	return &WizardHandler{coordinator: coordinator}
}

// RegisterRoutes registers wizard routes
func (h *WizardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	wizard := rg.Group("/wizard")
	wizard.POST("", h.Start)
	wizard.GET("/:id", h.Get)
	wizard.PUT("/:id/client", h.SubmitClient)
	wizard.PUT("/:id/products", h.SubmitProducts)
	wizard.POST("/:id/complete", h.Complete)
	wizard.POST("/:id/save-partial", h.SavePartial)
	wizard.DELETE("/:id", h.Cancel)
}

// Start opens a new wizard session
func (h *WizardHandler) Start(c *gin.Context) {
	h.Created(c, h.coordinator.Start())
}

// Get returns the current state of a session
func (h *WizardHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.coordinator.Get(id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// SubmitClient records the client step
func (h *WizardHandler) SubmitClient(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var step wizardapp.ClientStep
	if err := c.ShouldBindJSON(&step); err != nil {
		h.BindingError(c, err)
		return
	}

	session, err := h.coordinator.SubmitClient(id, step)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// SubmitProducts records the products step
func (h *WizardHandler) SubmitProducts(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var step wizardapp.ProductsStep
	if err := c.ShouldBindJSON(&step); err != nil {
		h.BindingError(c, err)
		return
	}

	session, err := h.coordinator.SubmitProducts(id, step)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

type wizardPaymentRequest struct {
	Records []financeapp.PaymentRecordRequest `json:"records,omitempty"`
}

// Complete runs the final step and finalizes the batch. On persistence
// failure the session survives, so the same request can be resubmitted.
func (h *WizardHandler) Complete(c *gin.Context) {
	h.complete(c, true)
}

// SavePartial runs the final step but keeps the batch open and resumable
func (h *WizardHandler) SavePartial(c *gin.Context) {
	h.complete(c, false)
}

func (h *WizardHandler) complete(c *gin.Context, finalize bool) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req wizardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	session, batch, err := h.coordinator.Complete(c.Request.Context(), id, req.Records, finalize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"session": session, "batch": batch})
}

// Cancel discards a session without persisting anything
func (h *WizardHandler) Cancel(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.coordinator.Cancel(id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
