package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiagnosticStatus represents the status of a diagnostic
type DiagnosticStatus string

const (
	DiagnosticStatusPending   DiagnosticStatus = "PENDING"
	DiagnosticStatusCompleted DiagnosticStatus = "COMPLETED"
	DiagnosticStatusCancelled DiagnosticStatus = "CANCELLED"
)

// IsValid checks if the status is a valid DiagnosticStatus
func (s DiagnosticStatus) IsValid() bool {
	switch s {
	case DiagnosticStatusPending, DiagnosticStatusCompleted, DiagnosticStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DiagnosticStatus
func (s DiagnosticStatus) String() string {
	return string(s)
}

// Diagnostic represents a polygraphy or oximetry study performed for a
// patient. It stays PENDING, and on the reminder feed, until the result is
// entered.
type Diagnostic struct {
	shared.BaseAggregateRoot
	DiagnosticNumber string           `gorm:"type:varchar(50);uniqueIndex;not null"`
	PatientID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	DeviceID         *uuid.UUID       `gorm:"type:uuid;index"`
	Status           DiagnosticStatus `gorm:"type:varchar(20);not null;index"`
	PerformedAt      time.Time        `gorm:"not null"`
	Fee              decimal.Decimal  `gorm:"type:decimal(18,3);not null"`
	Result           string
	CompletedAt      *time.Time
	Notes            string
}

// NewDiagnostic creates a pending diagnostic
func NewDiagnostic(diagnosticNumber string, patientID uuid.UUID, deviceID *uuid.UUID, performedAt time.Time, fee decimal.Decimal) (*Diagnostic, error) {
	if diagnosticNumber == "" {
		return nil, shared.NewDomainError("INVALID_DIAGNOSTIC_NUMBER", "Le numéro de diagnostic est obligatoire")
	}
	if patientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PATIENT", "Le patient est obligatoire")
	}
	if fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Le tarif ne peut pas être négatif")
	}

	return &Diagnostic{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DiagnosticNumber:  diagnosticNumber,
		PatientID:         patientID,
		DeviceID:          deviceID,
		Status:            DiagnosticStatusPending,
		PerformedAt:       performedAt,
		Fee:               fee,
	}, nil
}

// IsPending returns true while the result has not been entered
func (d *Diagnostic) IsPending() bool {
	return d.Status == DiagnosticStatusPending
}

// EnterResult records the study result and completes the diagnostic
func (d *Diagnostic) EnterResult(result string) error {
	if d.Status != DiagnosticStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible de saisir un résultat pour un diagnostic au statut %s", d.Status))
	}
	if result == "" {
		return shared.NewDomainError("INVALID_RESULT", "Le résultat est obligatoire")
	}

	now := time.Now()
	d.Status = DiagnosticStatusCompleted
	d.Result = result
	d.CompletedAt = &now
	d.UpdatedAt = now

	return nil
}

// Cancel voids a pending diagnostic
func (d *Diagnostic) Cancel() error {
	if d.Status != DiagnosticStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Impossible d'annuler un diagnostic au statut %s", d.Status))
	}

	d.Status = DiagnosticStatusCancelled
	d.UpdatedAt = time.Now()

	return nil
}
