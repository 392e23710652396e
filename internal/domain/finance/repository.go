package finance

import (
	"context"

	"github.com/google/uuid"
)

// PaymentBatchFilter defines filtering options for batch list queries
type PaymentBatchFilter struct {
	Status    *BatchStatus
	PatientID *uuid.UUID
	CompanyID *uuid.UUID
	Finalized *bool
	Page      int
	PageSize  int
}

// PaymentBatchRepository defines persistence operations for payment batches
type PaymentBatchRepository interface {
	// FindByID finds a batch by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentBatch, error)

	// FindActiveByTarget finds the open (non-finalized) batch of a
	// transaction, if any. At most one exists per transaction.
	FindActiveByTarget(ctx context.Context, target BatchTarget) (*PaymentBatch, error)

	// FindByTarget finds every batch of a transaction, newest first
	FindByTarget(ctx context.Context, target BatchTarget) ([]PaymentBatch, error)

	// FindPendingCNAMByBond finds non-finalized batches holding at least one
	// pending CNAM record that references the given bond
	FindPendingCNAMByBond(ctx context.Context, bondID uuid.UUID) ([]PaymentBatch, error)

	// FindAll lists batches with filtering and pagination
	FindAll(ctx context.Context, filter PaymentBatchFilter) ([]PaymentBatch, int64, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *PaymentBatch) error
}
