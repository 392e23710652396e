package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/scheduling"
	"gorm.io/gorm"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by ID. Returns nil, nil when not found.
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.Task, error) {
	var task scheduling.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// FindOpen lists every task not yet completed
func (r *GormTaskRepository) FindOpen(ctx context.Context) ([]scheduling.Task, error) {
	var tasks []scheduling.Task
	if err := r.db.WithContext(ctx).
		Where("completed = ?", false).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAll lists tasks with filtering and pagination
func (r *GormTaskRepository) FindAll(ctx context.Context, filter scheduling.TaskFilter) ([]scheduling.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&scheduling.Task{})

	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []scheduling.Task
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *scheduling.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}
