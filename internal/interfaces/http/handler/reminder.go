package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reminderapp "github.com/medirent/backend/internal/application/reminder"
	"github.com/medirent/backend/internal/domain/reminder"
)

// ReminderHandler handles the reminder feed API endpoints
type ReminderHandler struct {
	BaseHandler
	reminderService *reminderapp.ReminderService
}

// NewReminderHandler creates a new ReminderHandler
func NewReminderHandler(reminderService *reminderapp.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// RegisterRoutes registers reminder routes
func (h *ReminderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reminders := rg.Group("/reminders")
	reminders.GET("", h.Feed)
	reminders.GET("/summary", h.Summary)
	reminders.POST("/complete", h.Complete)
}

// Feed assembles the reminder feed. The feed is computed from the source
// records on every call and never stored.
func (h *ReminderHandler) Feed(c *gin.Context) {
	var filter reminderapp.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	feed, err := h.reminderService.GetFeed(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, feed)
}

// Summary returns the feed counters without the events
func (h *ReminderHandler) Summary(c *gin.Context) {
	summary, err := h.reminderService.GetSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Complete closes a completable reminder by acting on its source record
func (h *ReminderHandler) Complete(c *gin.Context) {
	var req struct {
		SourceType string    `json:"source_type" binding:"required"`
		SourceID   uuid.UUID `json:"source_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	err := h.reminderService.CompleteReminder(c.Request.Context(), reminder.SourceType(req.SourceType), req.SourceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
