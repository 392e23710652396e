package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	schedulingapp "github.com/medirent/backend/internal/application/scheduling"
)

// SchedulingHandler handles task and appointment API endpoints
type SchedulingHandler struct {
	BaseHandler
	schedulingService *schedulingapp.SchedulingService
}

// NewSchedulingHandler creates a new SchedulingHandler
func NewSchedulingHandler(schedulingService *schedulingapp.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{schedulingService: schedulingService}
}

// RegisterRoutes registers task and appointment routes
func (h *SchedulingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.POST("", h.CreateTask)
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.POST("/:id/complete", h.CompleteTask)
	tasks.POST("/:id/reopen", h.ReopenTask)
	tasks.PUT("/:id/due-date", h.RescheduleTask)

	appointments := rg.Group("/appointments")
	appointments.POST("", h.BookAppointment)
	appointments.GET("", h.ListAppointments)
	appointments.GET("/:id", h.GetAppointment)
	appointments.POST("/:id/confirm", h.ConfirmAppointment)
	appointments.POST("/:id/done", h.CompleteAppointment)
	appointments.POST("/:id/no-show", h.MarkNoShow)
	appointments.POST("/:id/cancel", h.CancelAppointment)
	appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
}

// CreateTask creates a follow-up task
func (h *SchedulingHandler) CreateTask(c *gin.Context) {
	var req schedulingapp.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	task, err := h.schedulingService.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// GetTask returns one task
func (h *SchedulingHandler) GetTask(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.schedulingService.GetTask(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// ListTasks returns tasks with filtering and pagination
func (h *SchedulingHandler) ListTasks(c *gin.Context) {
	var filter schedulingapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	tasks, total, err := h.schedulingService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tasks, total, filter.Page, filter.PageSize)
}

// CompleteTask marks a task as done
func (h *SchedulingHandler) CompleteTask(c *gin.Context) {
	h.mutateTask(c, h.schedulingService.CompleteTask)
}

// ReopenTask reopens a completed task
func (h *SchedulingHandler) ReopenTask(c *gin.Context) {
	h.mutateTask(c, h.schedulingService.ReopenTask)
}

// RescheduleTask changes a task due date
func (h *SchedulingHandler) RescheduleTask(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DueDate time.Time `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	task, err := h.schedulingService.RescheduleTask(c.Request.Context(), id, req.DueDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// BookAppointment books a patient appointment
func (h *SchedulingHandler) BookAppointment(c *gin.Context) {
	var req schedulingapp.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appointment, err := h.schedulingService.BookAppointment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appointment)
}

// GetAppointment returns one appointment
func (h *SchedulingHandler) GetAppointment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := h.schedulingService.GetAppointment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appointment)
}

// ListAppointments returns appointments with filtering and pagination
func (h *SchedulingHandler) ListAppointments(c *gin.Context) {
	var filter schedulingapp.AppointmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	appointments, total, err := h.schedulingService.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appointments, total, filter.Page, filter.PageSize)
}

// ConfirmAppointment confirms a scheduled appointment
func (h *SchedulingHandler) ConfirmAppointment(c *gin.Context) {
	h.mutateAppointment(c, h.schedulingService.ConfirmAppointment)
}

// CompleteAppointment marks an appointment as done
func (h *SchedulingHandler) CompleteAppointment(c *gin.Context) {
	h.mutateAppointment(c, h.schedulingService.CompleteAppointment)
}

// MarkNoShow records that the patient did not come
func (h *SchedulingHandler) MarkNoShow(c *gin.Context) {
	h.mutateAppointment(c, h.schedulingService.MarkNoShow)
}

// CancelAppointment cancels an appointment
func (h *SchedulingHandler) CancelAppointment(c *gin.Context) {
	h.mutateAppointment(c, h.schedulingService.CancelAppointment)
}

// RescheduleAppointment moves an appointment to a new date
func (h *SchedulingHandler) RescheduleAppointment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Date time.Time `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appointment, err := h.schedulingService.RescheduleAppointment(c.Request.Context(), id, req.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appointment)
}

func (h *SchedulingHandler) mutateTask(c *gin.Context, op func(context.Context, uuid.UUID) (*schedulingapp.TaskResponse, error)) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

func (h *SchedulingHandler) mutateAppointment(c *gin.Context, op func(context.Context, uuid.UUID) (*schedulingapp.AppointmentResponse, error)) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	appointment, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appointment)
}
