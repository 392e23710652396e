package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormPatientRepository implements PatientRepository using GORM
type GormPatientRepository struct {
	db *gorm.DB
}

// NewGormPatientRepository creates a new GormPatientRepository
func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

// FindByID finds a patient by ID. Returns nil, nil when not found.
func (r *GormPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Patient, error) {
	var patient partner.Patient
	if err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// FindByCIN finds a patient by CIN. Returns nil, nil when not found.
func (r *GormPatientRepository) FindByCIN(ctx context.Context, cin string) (*partner.Patient, error) {
	var patient partner.Patient
	if err := r.db.WithContext(ctx).
		Where("cin = ?", cin).
		First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// FindByPhone finds a patient by phone. Returns nil, nil when not found.
func (r *GormPatientRepository) FindByPhone(ctx context.Context, phone string) (*partner.Patient, error) {
	var patient partner.Patient
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// FindAll lists patients with filtering and pagination
func (r *GormPatientRepository) FindAll(ctx context.Context, filter partner.PatientFilter) ([]partner.Patient, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Patient{})

	if filter.Archived != nil {
		query = query.Where("archived = ?", *filter.Archived)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(cin) LIKE ? OR phone LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []partner.Patient
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("last_name ASC, first_name ASC").
		Find(&patients).Error; err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// Save creates or updates a patient
func (r *GormPatientRepository) Save(ctx context.Context, patient *partner.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}
