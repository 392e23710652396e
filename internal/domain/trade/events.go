package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Trade event type names, referenced by subscribers
const (
	EventTypeRentalCreated  = "RentalCreated"
	EventTypeRentalExtended = "RentalExtended"
	EventTypeRentalEnded    = "RentalEnded"
	EventTypeSaleRecorded   = "SaleRecorded"
)

// RentalCreatedEvent is raised when a rental contract is opened
type RentalCreatedEvent struct {
	shared.BaseDomainEvent
	RentalID     uuid.UUID `json:"rental_id"`
	RentalNumber string    `json:"rental_number"`
	PatientID    uuid.UUID `json:"patient_id"`
	DeviceID     uuid.UUID `json:"device_id"`
	EndDate      time.Time `json:"end_date"`
	CNAMCovered  bool      `json:"cnam_covered"`
}

// NewRentalCreatedEvent creates a RentalCreatedEvent
func NewRentalCreatedEvent(r *Rental) *RentalCreatedEvent {
	return &RentalCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentalCreated, "Rental", r.ID),
		RentalID:        r.ID,
		RentalNumber:    r.RentalNumber,
		PatientID:       r.PatientID,
		DeviceID:        r.DeviceID,
		EndDate:         r.EndDate,
		CNAMCovered:     r.CNAMCovered,
	}
}

// RentalExtendedEvent is raised when the contract end date moves forward
type RentalExtendedEvent struct {
	shared.BaseDomainEvent
	RentalID        uuid.UUID `json:"rental_id"`
	RentalNumber    string    `json:"rental_number"`
	PreviousEndDate time.Time `json:"previous_end_date"`
	NewEndDate      time.Time `json:"new_end_date"`
}

// NewRentalExtendedEvent creates a RentalExtendedEvent
func NewRentalExtendedEvent(r *Rental, previousEndDate time.Time) *RentalExtendedEvent {
	return &RentalExtendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentalExtended, "Rental", r.ID),
		RentalID:        r.ID,
		RentalNumber:    r.RentalNumber,
		PreviousEndDate: previousEndDate,
		NewEndDate:      r.EndDate,
	}
}

// RentalEndedEvent is raised when the device is returned
type RentalEndedEvent struct {
	shared.BaseDomainEvent
	RentalID     uuid.UUID `json:"rental_id"`
	RentalNumber string    `json:"rental_number"`
	DeviceID     uuid.UUID `json:"device_id"`
}

// NewRentalEndedEvent creates a RentalEndedEvent
func NewRentalEndedEvent(r *Rental) *RentalEndedEvent {
	return &RentalEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRentalEnded, "Rental", r.ID),
		RentalID:        r.ID,
		RentalNumber:    r.RentalNumber,
		DeviceID:        r.DeviceID,
	}
}

// SaleRecordedEvent is raised when a sale is recorded
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	SaleDate    time.Time       `json:"sale_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSaleRecordedEvent creates a SaleRecordedEvent
func NewSaleRecordedEvent(s *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, "Sale", s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		SaleDate:        s.SaleDate,
		TotalAmount:     s.TotalAmount,
	}
}
