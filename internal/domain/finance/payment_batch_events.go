package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type identifiers for payment batch events
const (
	EventTypePaymentBatchCreated      = "PaymentBatchCreated"
	EventTypePaymentRecordAdded       = "PaymentRecordAdded"
	EventTypePaymentBatchCompleted    = "PaymentBatchCompleted"
	EventTypePaymentBatchFinalized    = "PaymentBatchFinalized"
	EventTypePaymentBatchSavedPartial = "PaymentBatchSavedPartial"
)

// PaymentBatchCreatedEvent is raised when a new payment batch is opened
type PaymentBatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchID      uuid.UUID       `json:"batch_id"`
	RentalID     *uuid.UUID      `json:"rental_id,omitempty"`
	SaleID       *uuid.UUID      `json:"sale_id,omitempty"`
	DiagnosticID *uuid.UUID      `json:"diagnostic_id,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewPaymentBatchCreatedEvent creates a PaymentBatchCreatedEvent
func NewPaymentBatchCreatedEvent(b *PaymentBatch) *PaymentBatchCreatedEvent {
	return &PaymentBatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchCreated, "PaymentBatch", b.ID),
		BatchID:         b.ID,
		RentalID:        b.RentalID,
		SaleID:          b.SaleID,
		DiagnosticID:    b.DiagnosticID,
		TotalAmount:     b.TotalAmount,
	}
}

// PaymentRecordAddedEvent is raised for each record accepted into a batch
type PaymentRecordAddedEvent struct {
	shared.BaseDomainEvent
	BatchID  uuid.UUID       `json:"batch_id"`
	RecordID uuid.UUID       `json:"record_id"`
	Method   PaymentMethod   `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewPaymentRecordAddedEvent creates a PaymentRecordAddedEvent
func NewPaymentRecordAddedEvent(b *PaymentBatch, rec *PaymentRecord) *PaymentRecordAddedEvent {
	return &PaymentRecordAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecordAdded, "PaymentBatch", b.ID),
		BatchID:         b.ID,
		RecordID:        rec.ID,
		Method:          rec.Method,
		Amount:          rec.Amount,
	}
}

// PaymentBatchCompletedEvent is raised when a batch first becomes financially
// complete (including COMPLETED_WITH_PENDING_CNAM)
type PaymentBatchCompletedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID       `json:"batch_id"`
	Status      BatchStatus     `json:"status"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PendingCNAM bool            `json:"pending_cnam"`
}

// NewPaymentBatchCompletedEvent creates a PaymentBatchCompletedEvent
func NewPaymentBatchCompletedEvent(b *PaymentBatch) *PaymentBatchCompletedEvent {
	return &PaymentBatchCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchCompleted, "PaymentBatch", b.ID),
		BatchID:         b.ID,
		Status:          b.Status,
		PaidAmount:      b.PaidAmount,
		TotalAmount:     b.TotalAmount,
		PendingCNAM:     b.Status == BatchStatusCompletedPendingCNAM,
	}
}

// PaymentBatchFinalizedEvent is raised when a batch is closed for good
type PaymentBatchFinalizedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID   `json:"batch_id"`
	Status      BatchStatus `json:"status"`
	FinalizedAt time.Time   `json:"finalized_at"`
}

// NewPaymentBatchFinalizedEvent creates a PaymentBatchFinalizedEvent
func NewPaymentBatchFinalizedEvent(b *PaymentBatch) *PaymentBatchFinalizedEvent {
	finalizedAt := time.Now()
	if b.FinalizedAt != nil {
		finalizedAt = *b.FinalizedAt
	}
	return &PaymentBatchFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchFinalized, "PaymentBatch", b.ID),
		BatchID:         b.ID,
		Status:          b.Status,
		FinalizedAt:     finalizedAt,
	}
}

// PaymentBatchSavedPartialEvent is raised on an explicit "save and continue later"
type PaymentBatchSavedPartialEvent struct {
	shared.BaseDomainEvent
	BatchID         uuid.UUID       `json:"batch_id"`
	Status          BatchStatus     `json:"status"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// NewPaymentBatchSavedPartialEvent creates a PaymentBatchSavedPartialEvent
func NewPaymentBatchSavedPartialEvent(b *PaymentBatch) *PaymentBatchSavedPartialEvent {
	return &PaymentBatchSavedPartialEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchSavedPartial, "PaymentBatch", b.ID),
		BatchID:         b.ID,
		Status:          b.Status,
		RemainingAmount: b.RemainingAmount,
	}
}
