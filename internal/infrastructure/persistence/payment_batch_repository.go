package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// GormPaymentBatchRepository implements PaymentBatchRepository using GORM
type GormPaymentBatchRepository struct {
	db *gorm.DB
}

// NewGormPaymentBatchRepository creates a new GormPaymentBatchRepository
func NewGormPaymentBatchRepository(db *gorm.DB) *GormPaymentBatchRepository {
	return &GormPaymentBatchRepository{db: db}
}

// FindByID finds a batch by ID. Returns nil, nil when not found.
func (r *GormPaymentBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PaymentBatch, error) {
	var batch finance.PaymentBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindActiveByTarget finds the open batch of a transaction, if any
func (r *GormPaymentBatchRepository) FindActiveByTarget(ctx context.Context, target finance.BatchTarget) (*finance.PaymentBatch, error) {
	query := r.db.WithContext(ctx).Where("finalized = ?", false)
	query = targetScope(query, target)

	var batch finance.PaymentBatch
	if err := query.First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByTarget finds every batch of a transaction, newest first
func (r *GormPaymentBatchRepository) FindByTarget(ctx context.Context, target finance.BatchTarget) ([]finance.PaymentBatch, error) {
	query := targetScope(r.db.WithContext(ctx), target)

	var batches []finance.PaymentBatch
	if err := query.Order("created_at DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindPendingCNAMByBond finds non-finalized batches holding at least one
// pending CNAM record that references the given bond. On postgres the
// candidates are narrowed with a JSONB containment query against the records
// document (served by the GIN index on payment_batches.records); the record
// check below is the portable match on every dialect.
func (r *GormPaymentBatchRepository) FindPendingCNAMByBond(ctx context.Context, bondID uuid.UUID) ([]finance.PaymentBatch, error) {
	query := r.db.WithContext(ctx).Where("finalized = ?", false)
	if r.db.Dialector.Name() == "postgres" {
		contains := fmt.Sprintf(`[{"method":"CNAM","bond_id":%q,"cnam_pending":true}]`, bondID)
		query = query.Where("records @> ?::jsonb", contains)
	}

	var open []finance.PaymentBatch
	if err := query.Find(&open).Error; err != nil {
		return nil, err
	}

	var matches []finance.PaymentBatch
	for _, batch := range open {
		for _, record := range batch.Records {
			if record.IsPendingCNAM() && record.BondID != nil && *record.BondID == bondID {
				matches = append(matches, batch)
				break
			}
		}
	}
	return matches, nil
}

// FindAll lists batches with filtering and pagination
func (r *GormPaymentBatchRepository) FindAll(ctx context.Context, filter finance.PaymentBatchFilter) ([]finance.PaymentBatch, int64, error) {
	query := r.db.WithContext(ctx).Model(&finance.PaymentBatch{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Finalized != nil {
		query = query.Where("finalized = ?", *filter.Finalized)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []finance.PaymentBatch
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC").
		Find(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// Save creates or updates a batch
func (r *GormPaymentBatchRepository) Save(ctx context.Context, batch *finance.PaymentBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// targetScope narrows a query to the transaction reference carried by the target
func targetScope(query *gorm.DB, target finance.BatchTarget) *gorm.DB {
	switch {
	case target.RentalID != nil:
		return query.Where("rental_id = ?", *target.RentalID)
	case target.SaleID != nil:
		return query.Where("sale_id = ?", *target.SaleID)
	case target.DiagnosticID != nil:
		return query.Where("diagnostic_id = ?", *target.DiagnosticID)
	}
	// An empty target matches nothing rather than everything
	return query.Where("1 = 0")
}
