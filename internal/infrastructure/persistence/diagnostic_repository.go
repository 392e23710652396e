package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormDiagnosticRepository implements DiagnosticRepository using GORM
type GormDiagnosticRepository struct {
	db *gorm.DB
}

// NewGormDiagnosticRepository creates a new GormDiagnosticRepository
func NewGormDiagnosticRepository(db *gorm.DB) *GormDiagnosticRepository {
	return &GormDiagnosticRepository{db: db}
}

// FindByID finds a diagnostic by ID. Returns nil, nil when not found.
func (r *GormDiagnosticRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Diagnostic, error) {
	var diagnostic trade.Diagnostic
	if err := r.db.WithContext(ctx).First(&diagnostic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &diagnostic, nil
}

// FindPending lists diagnostics awaiting their result
func (r *GormDiagnosticRepository) FindPending(ctx context.Context) ([]trade.Diagnostic, error) {
	var diagnostics []trade.Diagnostic
	if err := r.db.WithContext(ctx).
		Where("status = ?", trade.DiagnosticStatusPending).
		Order("performed_at ASC").
		Find(&diagnostics).Error; err != nil {
		return nil, err
	}
	return diagnostics, nil
}

// FindAll lists diagnostics with filtering and pagination
func (r *GormDiagnosticRepository) FindAll(ctx context.Context, filter trade.DiagnosticFilter) ([]trade.Diagnostic, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Diagnostic{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var diagnostics []trade.Diagnostic
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("performed_at DESC").
		Find(&diagnostics).Error; err != nil {
		return nil, 0, err
	}
	return diagnostics, total, nil
}

// Save creates or updates a diagnostic
func (r *GormDiagnosticRepository) Save(ctx context.Context, diagnostic *trade.Diagnostic) error {
	return r.db.WithContext(ctx).Save(diagnostic).Error
}
