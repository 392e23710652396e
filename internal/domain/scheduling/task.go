package scheduling

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
)

// Task represents a manual to-do created by staff. Tasks surface on the
// reminder feed until completed and can be closed in one click.
type Task struct {
	shared.BaseAggregateRoot
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string
	DueDate     time.Time  `gorm:"not null;index"`
	PatientID   *uuid.UUID `gorm:"type:uuid;index"`
	Completed   bool       `gorm:"not null;default:false;index"`
	CompletedAt *time.Time
}

// NewTask creates an open task
func NewTask(title, description string, dueDate time.Time, patientID *uuid.UUID) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Le titre est obligatoire")
	}

	return &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Description:       strings.TrimSpace(description),
		DueDate:           dueDate,
		PatientID:         patientID,
	}, nil
}

// Complete closes the task
func (t *Task) Complete(completedAt time.Time) error {
	if t.Completed {
		return shared.NewDomainError("ALREADY_COMPLETED", "La tâche est déjà terminée")
	}

	t.Completed = true
	t.CompletedAt = &completedAt
	t.UpdatedAt = time.Now()

	return nil
}

// Reopen puts a completed task back on the feed
func (t *Task) Reopen() error {
	if !t.Completed {
		return shared.NewDomainError("NOT_COMPLETED", "La tâche n'est pas terminée")
	}

	t.Completed = false
	t.CompletedAt = nil
	t.UpdatedAt = time.Now()

	return nil
}

// Reschedule moves the due date
func (t *Task) Reschedule(dueDate time.Time) {
	t.DueDate = dueDate
	t.UpdatedAt = time.Now()
}
