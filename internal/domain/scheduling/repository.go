package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskFilter defines filtering options for task list queries
type TaskFilter struct {
	Completed *bool
	PatientID *uuid.UUID
	DueBefore *time.Time
	Page      int
	PageSize  int
}

// TaskRepository defines persistence operations for tasks
type TaskRepository interface {
	// FindByID finds a task by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindOpen lists every task not yet completed
	FindOpen(ctx context.Context) ([]Task, error)

	// FindAll lists tasks with filtering and pagination
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error)

	// Save creates or updates a task
	Save(ctx context.Context, task *Task) error
}

// AppointmentFilter defines filtering options for appointment list queries
type AppointmentFilter struct {
	Status    *AppointmentStatus
	PatientID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// AppointmentRepository defines persistence operations for appointments
type AppointmentRepository interface {
	// FindByID finds an appointment by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindOpenBefore lists scheduled and confirmed appointments dated before
	// the cutoff, the working set of the reminder feed
	FindOpenBefore(ctx context.Context, cutoff time.Time) ([]Appointment, error)

	// FindAll lists appointments with filtering and pagination
	FindAll(ctx context.Context, filter AppointmentFilter) ([]Appointment, int64, error)

	// Save creates or updates an appointment
	Save(ctx context.Context, appointment *Appointment) error
}
