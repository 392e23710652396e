package insurance

import (
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Bond event type names, referenced by subscribers
const (
	EventTypeBondCreated  = "CNAMBondCreated"
	EventTypeBondApproved = "CNAMBondApproved"
	EventTypeBondRejected = "CNAMBondRejected"
)

// BondCreatedEvent is raised when a bond is submitted
type BondCreatedEvent struct {
	shared.BaseDomainEvent
	BondID        uuid.UUID  `json:"bond_id"`
	BondNumber    string     `json:"bond_number"`
	DossierNumber string     `json:"dossier_number"`
	RentalID      *uuid.UUID `json:"rental_id,omitempty"`
}

// NewBondCreatedEvent creates a BondCreatedEvent
func NewBondCreatedEvent(b *CNAMBond) *BondCreatedEvent {
	return &BondCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBondCreated, "CNAMBond", b.ID),
		BondID:          b.ID,
		BondNumber:      b.BondNumber,
		DossierNumber:   b.DossierNumber,
		RentalID:        b.RentalID,
	}
}

// BondApprovedEvent is raised on insurer approval. The payment reconciliation
// subscribes to it to lift COMPLETED_WITH_PENDING_CNAM gating.
type BondApprovedEvent struct {
	shared.BaseDomainEvent
	BondID     uuid.UUID       `json:"bond_id"`
	BondNumber string          `json:"bond_number"`
	BonAmount  decimal.Decimal `json:"bon_amount"`
	EndDate    time.Time       `json:"end_date"`
	RentalID   *uuid.UUID      `json:"rental_id,omitempty"`
}

// NewBondApprovedEvent creates a BondApprovedEvent
func NewBondApprovedEvent(b *CNAMBond) *BondApprovedEvent {
	return &BondApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBondApproved, "CNAMBond", b.ID),
		BondID:          b.ID,
		BondNumber:      b.BondNumber,
		BonAmount:       b.BonAmount,
		EndDate:         b.EndDate,
		RentalID:        b.RentalID,
	}
}

// BondRejectedEvent is raised on insurer rejection
type BondRejectedEvent struct {
	shared.BaseDomainEvent
	BondID     uuid.UUID `json:"bond_id"`
	BondNumber string    `json:"bond_number"`
	Reason     string    `json:"reason,omitempty"`
}

// NewBondRejectedEvent creates a BondRejectedEvent
func NewBondRejectedEvent(b *CNAMBond) *BondRejectedEvent {
	return &BondRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBondRejected, "CNAMBond", b.ID),
		BondID:          b.ID,
		BondNumber:      b.BondNumber,
		Reason:          b.RejectReason,
	}
}
