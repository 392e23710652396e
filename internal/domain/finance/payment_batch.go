package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BatchStatus represents the funding completeness of a payment batch
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "PENDING"   // nothing paid yet
	BatchStatusPartial   BatchStatus = "PARTIAL"   // 0 < paid < total
	BatchStatusCompleted BatchStatus = "COMPLETED" // paid >= total, no pending CNAM
	// BatchStatusCompletedPendingCNAM: financially complete but at least one
	// CNAM record still awaits insurer approval. Operationally funded (the
	// device can be delivered) yet flagged until approval arrives.
	BatchStatusCompletedPendingCNAM BatchStatus = "COMPLETED_WITH_PENDING_CNAM"
)

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusPartial, BatchStatusCompleted, BatchStatusCompletedPendingCNAM:
		return true
	}
	return false
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// IsComplete returns true for both complete statuses
func (s BatchStatus) IsComplete() bool {
	return s == BatchStatusCompleted || s == BatchStatusCompletedPendingCNAM
}

// BatchTarget identifies the transaction a batch funds. Exactly one of the
// three references must be set.
type BatchTarget struct {
	RentalID     *uuid.UUID `json:"rental_id,omitempty"`
	SaleID       *uuid.UUID `json:"sale_id,omitempty"`
	DiagnosticID *uuid.UUID `json:"diagnostic_id,omitempty"`
}

// Validate ensures exactly one transaction reference is set
func (t BatchTarget) Validate() error {
	count := 0
	if t.RentalID != nil {
		count++
	}
	if t.SaleID != nil {
		count++
	}
	if t.DiagnosticID != nil {
		count++
	}
	if count != 1 {
		return shared.NewDomainError("INVALID_TARGET", "Le paiement doit référencer exactement une location, une vente ou un diagnostic")
	}
	return nil
}

// Payer identifies who funds the batch. Exactly one of the two must be set.
type Payer struct {
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
}

// Validate ensures exactly one payer reference is set
func (p Payer) Validate() error {
	if (p.PatientID == nil) == (p.CompanyID == nil) {
		return shared.NewDomainError("INVALID_PAYER", "Le paiement doit référencer soit un patient soit une société")
	}
	return nil
}

// PaymentBatch is the aggregate root tracking the funding of one transaction
// (rental, sale or diagnostic). It owns the list of payment records and its
// derived totals and status. A batch stays open ("save and continue later")
// until it is finalized; reopening resumes the same batch, never a duplicate.
type PaymentBatch struct {
	shared.BaseAggregateRoot
	RentalID        *uuid.UUID      `gorm:"type:uuid;index"`
	SaleID          *uuid.UUID      `gorm:"type:uuid;index"`
	DiagnosticID    *uuid.UUID      `gorm:"type:uuid;index"`
	PatientID       *uuid.UUID      `gorm:"type:uuid;index"`
	CompanyID       *uuid.UUID      `gorm:"type:uuid;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Status          BatchStatus     `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	Records         PaymentRecords  `gorm:"type:jsonb"`
	Notes           string          `gorm:"type:text"`
	Finalized       bool            `gorm:"not null;default:false;index"`
	FinalizedAt     *time.Time
}

// TableName returns the table name for GORM
func (PaymentBatch) TableName() string {
	return "payment_batches"
}

// NewPaymentBatch creates a new payment batch for a transaction
func NewPaymentBatch(target BatchTarget, payer Payer, total valueobject.Money, notes string) (*PaymentBatch, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := payer.Validate(); err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Le montant total ne peut pas être négatif")
	}

	b := &PaymentBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RentalID:          target.RentalID,
		SaleID:            target.SaleID,
		DiagnosticID:      target.DiagnosticID,
		PatientID:         payer.PatientID,
		CompanyID:         payer.CompanyID,
		TotalAmount:       total.Amount(),
		PaidAmount:        decimal.Zero,
		RemainingAmount:   total.Amount(),
		Status:            BatchStatusPending,
		Records:           make(PaymentRecords, 0),
		Notes:             notes,
	}

	b.AddDomainEvent(NewPaymentBatchCreatedEvent(b))

	return b, nil
}

// Target returns the transaction reference of the batch
func (b *PaymentBatch) Target() BatchTarget {
	return BatchTarget{RentalID: b.RentalID, SaleID: b.SaleID, DiagnosticID: b.DiagnosticID}
}

// AddRecords appends payment records to the batch. The whole slice is
// validated first: if any record fails, nothing is accepted and the full
// violation list is returned. No amount cap is enforced - overpayment is
// allowed and surfaced through the recomputed totals, not rejected.
func (b *PaymentBatch) AddRecords(records []PaymentRecord) error {
	if b.Finalized {
		return shared.NewDomainError("BATCH_FINALIZED", "Le paiement est déjà finalisé, aucune ligne ne peut être ajoutée")
	}
	if len(records) == 0 {
		return shared.NewDomainError("EMPTY_PAYMENT", "Aucune ligne de paiement fournie")
	}
	if err := ValidatePaymentData(records); err != nil {
		return err
	}

	for i := range records {
		rec := records[i]
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.PaidAt.IsZero() {
			rec.PaidAt = time.Now()
		}
		b.Records = append(b.Records, rec)
		b.AddDomainEvent(NewPaymentRecordAddedEvent(b, &rec))
	}

	b.Reconcile()

	return nil
}

// Reconcile recomputes derived totals and status from the record list.
// Idempotent: safe to call after any mutation.
func (b *PaymentBatch) Reconcile() {
	totals := ComputeTotals(b.Records, b.TotalAmount)
	previous := b.Status

	b.PaidAmount = totals.PaidAmount
	b.RemainingAmount = totals.RemainingAmount
	b.Status = Classify(b.Records, b.TotalAmount)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	if b.Status.IsComplete() && !previous.IsComplete() {
		b.AddDomainEvent(NewPaymentBatchCompletedEvent(b))
	}
}

// HasPendingCNAM reports whether any record awaits insurer approval
func (b *PaymentBatch) HasPendingCNAM() bool {
	for i := range b.Records {
		if b.Records[i].IsPendingCNAM() {
			return true
		}
	}
	return false
}

// ConfirmCNAMRecords clears the pending flag on every CNAM record referencing
// the given bond and reconciles. Returns the number of records confirmed.
func (b *PaymentBatch) ConfirmCNAMRecords(bondID uuid.UUID) int {
	confirmed := 0
	for i := range b.Records {
		rec := &b.Records[i]
		if rec.IsPendingCNAM() && rec.BondID != nil && *rec.BondID == bondID {
			rec.ConfirmCNAM()
			confirmed++
		}
	}
	if confirmed > 0 {
		b.Reconcile()
	}
	return confirmed
}

// Finalize closes the batch. Only financially complete batches can be
// finalized; an incomplete batch is kept open with SavePartial instead.
func (b *PaymentBatch) Finalize() error {
	if b.Finalized {
		return shared.NewDomainError("BATCH_FINALIZED", "Le paiement est déjà finalisé")
	}
	b.Reconcile()
	if !b.Status.IsComplete() {
		return shared.NewDomainError("INCOMPLETE_PAYMENT",
			fmt.Sprintf("Le paiement ne peut pas être finalisé: reste %s à payer", b.RemainingAmount.StringFixed(3)))
	}

	now := time.Now()
	b.Finalized = true
	b.FinalizedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewPaymentBatchFinalizedEvent(b))

	return nil
}

// SavePartial marks an explicit "save and continue later". The batch stays
// open and resumable under the same id.
func (b *PaymentBatch) SavePartial() error {
	if b.Finalized {
		return shared.NewDomainError("BATCH_FINALIZED", "Le paiement est déjà finalisé")
	}
	b.Reconcile()
	b.AddDomainEvent(NewPaymentBatchSavedPartialEvent(b))
	return nil
}
