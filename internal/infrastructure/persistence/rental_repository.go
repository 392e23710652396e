package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormRentalRepository implements RentalRepository using GORM
type GormRentalRepository struct {
	db *gorm.DB
}

// NewGormRentalRepository creates a new GormRentalRepository
func NewGormRentalRepository(db *gorm.DB) *GormRentalRepository {
	return &GormRentalRepository{db: db}
}

// FindByID finds a rental by ID. Returns nil, nil when not found.
func (r *GormRentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Rental, error) {
	var rental trade.Rental
	if err := r.db.WithContext(ctx).First(&rental, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rental, nil
}

// FindByNumber finds a rental by contract number. Returns nil, nil when not found.
func (r *GormRentalRepository) FindByNumber(ctx context.Context, rentalNumber string) (*trade.Rental, error) {
	var rental trade.Rental
	if err := r.db.WithContext(ctx).
		Where("rental_number = ?", rentalNumber).
		First(&rental).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rental, nil
}

// FindActive lists every rental still running
func (r *GormRentalRepository) FindActive(ctx context.Context) ([]trade.Rental, error) {
	var rentals []trade.Rental
	if err := r.db.WithContext(ctx).
		Where("status = ?", trade.RentalStatusActive).
		Order("end_date ASC").
		Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

// FindAll lists rentals with filtering and pagination
func (r *GormRentalRepository) FindAll(ctx context.Context, filter trade.RentalFilter) ([]trade.Rental, int64, error) {
	query := r.db.WithContext(ctx).Model(&trade.Rental{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DeviceID != nil {
		query = query.Where("device_id = ?", *filter.DeviceID)
	}
	if filter.EndingBefore != nil {
		query = query.Where("end_date < ?", *filter.EndingBefore)
	}
	if filter.CNAMCovered != nil {
		query = query.Where("cnam_covered = ?", *filter.CNAMCovered)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rentals []trade.Rental
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

// Save creates or updates a rental
func (r *GormRentalRepository) Save(ctx context.Context, rental *trade.Rental) error {
	return r.db.WithContext(ctx).Save(rental).Error
}
