package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPaymentPeriodRepository implements PaymentPeriodRepository using GORM
type GormPaymentPeriodRepository struct {
	db *gorm.DB
}

// NewGormPaymentPeriodRepository creates a new GormPaymentPeriodRepository
func NewGormPaymentPeriodRepository(db *gorm.DB) *GormPaymentPeriodRepository {
	return &GormPaymentPeriodRepository{db: db}
}

// FindByID finds a period by ID. Returns nil, nil when not found.
func (r *GormPaymentPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PaymentPeriod, error) {
	var period trade.PaymentPeriod
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &period, nil
}

// FindByRental lists the periods of a rental, oldest first
func (r *GormPaymentPeriodRepository) FindByRental(ctx context.Context, rentalID uuid.UUID) ([]trade.PaymentPeriod, error) {
	var periods []trade.PaymentPeriod
	if err := r.db.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("period_start ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindOpen lists unpaid periods plus paid ones whose period end falls after
// the given cutoff
func (r *GormPaymentPeriodRepository) FindOpen(ctx context.Context, endAfter time.Time) ([]trade.PaymentPeriod, error) {
	var periods []trade.PaymentPeriod
	if err := r.db.WithContext(ctx).
		Where("paid = ? OR period_end > ?", false, endAfter).
		Order("period_end ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save creates or updates a period
func (r *GormPaymentPeriodRepository) Save(ctx context.Context, period *trade.PaymentPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}
