package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusDone      AppointmentStatus = "DONE"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// IsValid checks if the status is a valid AppointmentStatus
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusDone, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsOpen returns true while the appointment still awaits the patient
func (s AppointmentStatus) IsOpen() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

// Appointment represents a patient visit booked at the shop or at home.
type Appointment struct {
	shared.BaseAggregateRoot
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Purpose   string            `gorm:"type:varchar(200);not null"`
	Date      time.Time         `gorm:"not null;index"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;index"`
	Location  string            `gorm:"type:varchar(200)"`
	Notes     string
}

// NewAppointment books an appointment
func NewAppointment(patientID uuid.UUID, purpose string, date time.Time, location string) (*Appointment, error) {
	purpose = strings.TrimSpace(purpose)
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Le patient est obligatoire")
	}
	if purpose == "" {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Le motif est obligatoire")
	}

	return &Appointment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PatientID:         patientID,
		Purpose:           purpose,
		Date:              date,
		Status:            AppointmentStatusScheduled,
		Location:          strings.TrimSpace(location),
	}, nil
}

// Confirm marks the appointment confirmed by the patient
func (a *Appointment) Confirm() error {
	if a.Status != AppointmentStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de confirmer un rendez-vous au statut %s", a.Status))
	}
	a.Status = AppointmentStatusConfirmed
	a.UpdatedAt = time.Now()
	return nil
}

// MarkDone closes the appointment after the visit
func (a *Appointment) MarkDone() error {
	if !a.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de clôturer un rendez-vous au statut %s", a.Status))
	}
	a.Status = AppointmentStatusDone
	a.UpdatedAt = time.Now()
	return nil
}

// MarkNoShow records that the patient did not come
func (a *Appointment) MarkNoShow() error {
	if !a.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de marquer absent un rendez-vous au statut %s", a.Status))
	}
	a.Status = AppointmentStatusNoShow
	a.UpdatedAt = time.Now()
	return nil
}

// Cancel voids the appointment
func (a *Appointment) Cancel() error {
	if !a.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible d'annuler un rendez-vous au statut %s", a.Status))
	}
	a.Status = AppointmentStatusCancelled
	a.UpdatedAt = time.Now()
	return nil
}

// Reschedule moves an open appointment to a new date
func (a *Appointment) Reschedule(date time.Time) error {
	if !a.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de déplacer un rendez-vous au statut %s", a.Status))
	}
	a.Date = date
	a.Status = AppointmentStatusScheduled
	a.UpdatedAt = time.Now()
	return nil
}
