package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RentalStatus represents the lifecycle status of a rental
type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusEnded     RentalStatus = "ENDED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

// IsValid checks if the status is a valid RentalStatus
func (s RentalStatus) IsValid() bool {
	switch s {
	case RentalStatusActive, RentalStatusEnded, RentalStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RentalStatus
func (s RentalStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states a rental cannot leave
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusEnded || s == RentalStatusCancelled
}

// Rental represents a device rental aggregate root. It carries the follow-up
// dates the reminder feed is built from: contract end, alert, titration and
// rental appointment.
type Rental struct {
	shared.BaseAggregateRoot
	RentalNumber    string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	PatientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeviceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status          RentalStatus    `gorm:"type:varchar(20);not null;index"`
	MonthlyRate     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	DepositAmount   decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	StartDate       time.Time       `gorm:"not null"`
	EndDate         time.Time       `gorm:"not null;index"`
	AlertDate       *time.Time
	TitrationDate   *time.Time
	AppointmentDate *time.Time
	CNAMCovered     bool `gorm:"not null;default:false"`
	Notes           string
	EndedAt         *time.Time
	CancelledAt     *time.Time
	CancelReason    string
}

// NewRental creates a new active rental
func NewRental(rentalNumber string, patientID, deviceID uuid.UUID, monthlyRate, depositAmount decimal.Decimal, startDate, endDate time.Time, cnamCovered bool) (*Rental, error) {
	if rentalNumber == "" {
		return nil, shared.NewDomainError("INVALID_RENTAL_NUMBER", "Le numéro de location est obligatoire")
	}
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Le patient est obligatoire")
	}
	if deviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEVICE", "L'appareil est obligatoire")
	}
	if monthlyRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Le loyer mensuel doit être strictement positif")
	}
	if depositAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DEPOSIT", "La caution ne peut pas être négative")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "La date de fin doit être postérieure à la date de début")
	}

	rental := &Rental{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RentalNumber:      rentalNumber,
		PatientID:         patientID,
		DeviceID:          deviceID,
		Status:            RentalStatusActive,
		MonthlyRate:       monthlyRate,
		DepositAmount:     depositAmount,
		StartDate:         startDate,
		EndDate:           endDate,
		CNAMCovered:       cnamCovered,
	}

	rental.AddDomainEvent(NewRentalCreatedEvent(rental))

	return rental, nil
}

// IsActive returns true while the rental runs
func (r *Rental) IsActive() bool {
	return r.Status == RentalStatusActive
}

// Extend pushes the contract end date forward. Only active rentals extend.
func (r *Rental) Extend(newEndDate time.Time) error {
	if r.Status != RentalStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de prolonger une location au statut %s", r.Status))
	}
	if !newEndDate.After(r.EndDate) {
		return shared.NewDomainError("INVALID_PERIOD", "La nouvelle date de fin doit être postérieure à la date de fin actuelle")
	}

	previous := r.EndDate
	r.EndDate = newEndDate
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRentalExtendedEvent(r, previous))

	return nil
}

// End closes the rental with the device returned
func (r *Rental) End(returnedAt time.Time) error {
	if r.Status != RentalStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de clôturer une location au statut %s", r.Status))
	}
	if returnedAt.Before(r.StartDate) {
		return shared.NewDomainError("INVALID_RETURN_DATE", "La date de retour ne peut pas précéder la date de début")
	}

	r.Status = RentalStatusEnded
	r.EndedAt = &returnedAt
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRentalEndedEvent(r))

	return nil
}

// Cancel voids the rental before the device was handed over
func (r *Rental) Cancel(reason string) error {
	if r.Status != RentalStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible d'annuler une location au statut %s", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Le motif d'annulation est obligatoire")
	}

	now := time.Now()
	r.Status = RentalStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now

	return nil
}

// ScheduleAlert sets or clears the manual alert date
func (r *Rental) ScheduleAlert(date *time.Time) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Impossible de planifier une alerte sur une location clôturée")
	}
	r.AlertDate = date
	r.UpdatedAt = time.Now()
	return nil
}

// ScheduleTitration sets or clears the titration reminder date
func (r *Rental) ScheduleTitration(date *time.Time) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Impossible de planifier une titration sur une location clôturée")
	}
	r.TitrationDate = date
	r.UpdatedAt = time.Now()
	return nil
}

// ScheduleAppointment sets or clears the rental appointment date
func (r *Rental) ScheduleAppointment(date *time.Time) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Impossible de planifier un rendez-vous sur une location clôturée")
	}
	r.AppointmentDate = date
	r.UpdatedAt = time.Now()
	return nil
}

// SetNotes sets the free-form notes
func (r *Rental) SetNotes(notes string) {
	r.Notes = notes
	r.UpdatedAt = time.Now()
}
