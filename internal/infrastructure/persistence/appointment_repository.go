package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/scheduling"
	"gorm.io/gorm"
)

// GormAppointmentRepository implements AppointmentRepository using GORM
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByID finds an appointment by ID. Returns nil, nil when not found.
func (r *GormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	var appointment scheduling.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindOpenBefore lists scheduled and confirmed appointments dated before the cutoff
func (r *GormAppointmentRepository) FindOpenBefore(ctx context.Context, cutoff time.Time) ([]scheduling.Appointment, error) {
	var appointments []scheduling.Appointment
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND date < ?",
			[]scheduling.AppointmentStatus{scheduling.AppointmentStatusScheduled, scheduling.AppointmentStatusConfirmed},
			cutoff).
		Order("date ASC").
		Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAll lists appointments with filtering and pagination
func (r *GormAppointmentRepository) FindAll(ctx context.Context, filter scheduling.AppointmentFilter) ([]scheduling.Appointment, int64, error) {
	query := r.db.WithContext(ctx).Model(&scheduling.Appointment{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appointments []scheduling.Appointment
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("date ASC").
		Find(&appointments).Error; err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// Save creates or updates an appointment
func (r *GormAppointmentRepository) Save(ctx context.Context, appointment *scheduling.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}
