package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/scheduling"
	"github.com/medirent/backend/internal/domain/shared"
)

// SchedulingService manages tasks and appointments
type SchedulingService struct {
	taskRepo        scheduling.TaskRepository
	appointmentRepo scheduling.AppointmentRepository
	clock           shared.Clock
	logger          *zap.Logger
}

// NewSchedulingService creates a SchedulingService
func NewSchedulingService(
	taskRepo scheduling.TaskRepository,
	appointmentRepo scheduling.AppointmentRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *SchedulingService {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		taskRepo:        taskRepo,
		appointmentRepo: appointmentRepo,
		clock:           clock,
		logger:          logger,
	}
}

// CreateTaskRequest opens a manual to-do
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date" binding:"required"`
	PatientID   *uuid.UUID `json:"patient_id"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	PatientID   *uuid.UUID `json:"patient_id,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskListFilter defines filtering options for task list queries
type TaskListFilter struct {
	Completed *bool      `form:"completed"`
	PatientID *uuid.UUID `form:"patient_id"`
	DueBefore *time.Time `form:"due_before"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreateTask opens a task
func (s *SchedulingService) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	task, err := scheduling.NewTask(req.Title, req.Description, req.DueDate, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.String("task_id", task.ID.String()),
		zap.Time("due_date", task.DueDate))

	return toTaskResponse(task), nil
}

// CompleteTask closes a task
func (s *SchedulingService) CompleteTask(ctx context.Context, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := task.Complete(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

// ReopenTask puts a completed task back on the feed
func (s *SchedulingService) ReopenTask(ctx context.Context, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := task.Reopen(); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

// RescheduleTask moves a task's due date
func (s *SchedulingService) RescheduleTask(ctx context.Context, taskID uuid.UUID, dueDate time.Time) (*TaskResponse, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Reschedule(dueDate)
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

// GetTask returns one task by id
func (s *SchedulingService) GetTask(ctx context.Context, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return toTaskResponse(task), nil
}

// ListTasks lists tasks with filtering and pagination
func (s *SchedulingService) ListTasks(ctx context.Context, filter TaskListFilter) ([]TaskResponse, int64, error) {
	tasks, total, err := s.taskRepo.FindAll(ctx, scheduling.TaskFilter{
		Completed: filter.Completed,
		PatientID: filter.PatientID,
		DueBefore: filter.DueBefore,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, *toTaskResponse(&tasks[i]))
	}
	return responses, total, nil
}

// BookAppointmentRequest books a patient visit
type BookAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Purpose   string    `json:"purpose" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Location  string    `json:"location"`
}

// AppointmentResponse represents an appointment in API responses
type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Purpose   string    `json:"purpose"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentListFilter defines filtering options for appointment list queries
type AppointmentListFilter struct {
	Status    string     `form:"status"`
	PatientID *uuid.UUID `form:"patient_id"`
	From      *time.Time `form:"from"`
	To        *time.Time `form:"to"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// BookAppointment books an appointment
func (s *SchedulingService) BookAppointment(ctx context.Context, req BookAppointmentRequest) (*AppointmentResponse, error) {
	appointment, err := scheduling.NewAppointment(req.PatientID, req.Purpose, req.Date, req.Location)
	if err != nil {
		return nil, err
	}
	if err := s.appointmentRepo.Save(ctx, appointment); err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("patient_id", appointment.PatientID.String()),
		zap.Time("date", appointment.Date))

	return toAppointmentResponse(appointment), nil
}

// ConfirmAppointment marks an appointment confirmed by the patient
func (s *SchedulingService) ConfirmAppointment(ctx context.Context, appointmentID uuid.UUID) (*AppointmentResponse, error) {
	return s.mutateAppointment(ctx, appointmentID, (*scheduling.Appointment).Confirm)
}

// CompleteAppointment closes an appointment after the visit
func (s *SchedulingService) CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*AppointmentResponse, error) {
	return s.mutateAppointment(ctx, appointmentID, (*scheduling.Appointment).MarkDone)
}

// MarkNoShow records that the patient did not come
func (s *SchedulingService) MarkNoShow(ctx context.Context, appointmentID uuid.UUID) (*AppointmentResponse, error) {
	return s.mutateAppointment(ctx, appointmentID, (*scheduling.Appointment).MarkNoShow)
}

// CancelAppointment voids an appointment
func (s *SchedulingService) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*AppointmentResponse, error) {
	return s.mutateAppointment(ctx, appointmentID, (*scheduling.Appointment).Cancel)
}

// RescheduleAppointment moves an open appointment to a new date
func (s *SchedulingService) RescheduleAppointment(ctx context.Context, appointmentID uuid.UUID, date time.Time) (*AppointmentResponse, error) {
	return s.mutateAppointment(ctx, appointmentID, func(a *scheduling.Appointment) error {
		return a.Reschedule(date)
	})
}

// GetAppointment returns one appointment by id
func (s *SchedulingService) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*AppointmentResponse, error) {
	appointment, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponse(appointment), nil
}

// ListAppointments lists appointments with filtering and pagination
func (s *SchedulingService) ListAppointments(ctx context.Context, filter AppointmentListFilter) ([]AppointmentResponse, int64, error) {
	domainFilter := scheduling.AppointmentFilter{
		PatientID: filter.PatientID,
		From:      filter.From,
		To:        filter.To,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	if filter.Status != "" {
		status := scheduling.AppointmentStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Statut de rendez-vous inconnu: "+filter.Status)
		}
		domainFilter.Status = &status
	}

	appointments, total, err := s.appointmentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, *toAppointmentResponse(&appointments[i]))
	}
	return responses, total, nil
}

func (s *SchedulingService) mutateAppointment(ctx context.Context, appointmentID uuid.UUID, mutate func(*scheduling.Appointment) error) (*AppointmentResponse, error) {
	appointment, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := mutate(appointment); err != nil {
		return nil, err
	}
	if err := s.appointmentRepo.Save(ctx, appointment); err != nil {
		return nil, err
	}
	return toAppointmentResponse(appointment), nil
}

func (s *SchedulingService) loadTask(ctx context.Context, taskID uuid.UUID) (*scheduling.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Tâche introuvable")
	}
	return task, nil
}

func (s *SchedulingService) loadAppointment(ctx context.Context, appointmentID uuid.UUID) (*scheduling.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Rendez-vous introuvable")
	}
	return appointment, nil
}

func toTaskResponse(t *scheduling.Task) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		PatientID:   t.PatientID,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toAppointmentResponse(a *scheduling.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		Purpose:   a.Purpose,
		Date:      a.Date,
		Status:    string(a.Status),
		Location:  a.Location,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
