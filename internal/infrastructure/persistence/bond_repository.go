package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/insurance"
	"gorm.io/gorm"
)

// GormBondRepository implements BondRepository using GORM
type GormBondRepository struct {
	db *gorm.DB
}

// NewGormBondRepository creates a new GormBondRepository
func NewGormBondRepository(db *gorm.DB) *GormBondRepository {
	return &GormBondRepository{db: db}
}

// FindByID finds a bond by ID. Returns nil, nil when not found.
func (r *GormBondRepository) FindByID(ctx context.Context, id uuid.UUID) (*insurance.CNAMBond, error) {
	var bond insurance.CNAMBond
	if err := r.db.WithContext(ctx).First(&bond, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bond, nil
}

// FindByRental finds the bond history of a rental, newest first
func (r *GormBondRepository) FindByRental(ctx context.Context, rentalID uuid.UUID) ([]insurance.CNAMBond, error) {
	var bonds []insurance.CNAMBond
	if err := r.db.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("created_at DESC").
		Find(&bonds).Error; err != nil {
		return nil, err
	}
	return bonds, nil
}

// FindApproved finds every bond stored as APPROUVE
func (r *GormBondRepository) FindApproved(ctx context.Context) ([]insurance.CNAMBond, error) {
	var bonds []insurance.CNAMBond
	if err := r.db.WithContext(ctx).
		Where("status = ?", insurance.BondStatusApprouve).
		Find(&bonds).Error; err != nil {
		return nil, err
	}
	return bonds, nil
}

// FindExpiringBefore finds approved bonds whose endDate falls before the deadline
func (r *GormBondRepository) FindExpiringBefore(ctx context.Context, deadline time.Time) ([]insurance.CNAMBond, error) {
	var bonds []insurance.CNAMBond
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", insurance.BondStatusApprouve, deadline).
		Order("end_date ASC").
		Find(&bonds).Error; err != nil {
		return nil, err
	}
	return bonds, nil
}

// FindAll lists bonds with filtering and pagination
func (r *GormBondRepository) FindAll(ctx context.Context, filter insurance.BondFilter) ([]insurance.CNAMBond, int64, error) {
	query := r.db.WithContext(ctx).Model(&insurance.CNAMBond{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RentalID != nil {
		query = query.Where("rental_id = ?", *filter.RentalID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bonds []insurance.CNAMBond
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC").
		Find(&bonds).Error; err != nil {
		return nil, 0, err
	}
	return bonds, total, nil
}

// Save creates or updates a bond
func (r *GormBondRepository) Save(ctx context.Context, bond *insurance.CNAMBond) error {
	return r.db.WithContext(ctx).Save(bond).Error
}
