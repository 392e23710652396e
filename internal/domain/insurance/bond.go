package insurance

import (
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BondStatus represents the lifecycle state of a CNAM bond
type BondStatus string

const (
	BondStatusEnAttente BondStatus = "EN_ATTENTE" // submitted, awaiting insurer decision
	BondStatusApprouve  BondStatus = "APPROUVE"   // approved, coverage active
	BondStatusRejete    BondStatus = "REJETE"     // rejected, terminal
	BondStatusExpire    BondStatus = "EXPIRE"     // validity window elapsed, terminal
)

// IsValid checks if the status is a valid BondStatus
func (s BondStatus) IsValid() bool {
	switch s {
	case BondStatusEnAttente, BondStatusApprouve, BondStatusRejete, BondStatusExpire:
		return true
	}
	return false
}

// String returns the string representation of BondStatus
func (s BondStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that accept no further transition
func (s BondStatus) IsTerminal() bool {
	return s == BondStatusRejete || s == BondStatusExpire
}

// BondType identifies the kind of equipment the bond covers
type BondType string

const (
	BondTypeCPAP          BondType = "CPAP"
	BondTypeVNI           BondType = "VNI"
	BondTypeConcentrateur BondType = "CONCENTRATEUR_O2"
	BondTypeAutre         BondType = "AUTRE"
)

// IsValid checks if the bond type is valid
func (t BondType) IsValid() bool {
	switch t {
	case BondTypeCPAP, BondTypeVNI, BondTypeConcentrateur, BondTypeAutre:
		return true
	}
	return false
}

// RenewalLeadDays is how many days before endDate a CNAM_RENEWAL reminder starts
const RenewalLeadDays = 30

// CNAMBond is the aggregate root for one insurer coverage document. A rental
// may accumulate several bonds over its life (renewals); each bond has its own
// validity window and approval state. Expiry is time-driven: it is detected on
// read via EffectiveStatus, never commanded.
type CNAMBond struct {
	shared.BaseAggregateRoot
	BondType      BondType        `gorm:"type:varchar(30);not null"`
	BondNumber    string          `gorm:"type:varchar(50);not null;index"`
	DossierNumber string          `gorm:"type:varchar(50);not null;index"`
	Status        BondStatus      `gorm:"type:varchar(20);not null;default:'EN_ATTENTE';index"`
	BonAmount     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       time.Time       `gorm:"not null"`
	RentalID      *uuid.UUID      `gorm:"type:uuid;index"` // rental the bond funds
	PatientID     *uuid.UUID      `gorm:"type:uuid;index"` // sale-linked bonds attach to the patient
	DecidedAt     *time.Time      // when approved or rejected
	RejectReason  string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CNAMBond) TableName() string {
	return "cnam_bonds"
}

// NewCNAMBond creates a new bond in EN_ATTENTE
func NewCNAMBond(
	bondType BondType,
	bondNumber string,
	dossierNumber string,
	bonAmount decimal.Decimal,
	startDate, endDate time.Time,
	rentalID, patientID *uuid.UUID,
) (*CNAMBond, error) {
	if !bondType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BOND_TYPE", "Type de prise en charge inconnu")
	}
	if bondNumber == "" {
		return nil, shared.NewDomainError("INVALID_BOND_NUMBER", "Le numéro de bon est requis")
	}
	if dossierNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOSSIER", "Le numéro de dossier est requis")
	}
	if bonAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Le montant du bon ne peut pas être négatif")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATES", "Les dates de début et de fin sont requises")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "La date de fin doit être postérieure à la date de début")
	}
	if rentalID == nil && patientID == nil {
		return nil, shared.NewDomainError("INVALID_LINK", "La prise en charge doit référencer une location ou un patient")
	}

	b := &CNAMBond{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BondType:          bondType,
		BondNumber:        bondNumber,
		DossierNumber:     dossierNumber,
		Status:            BondStatusEnAttente,
		BonAmount:         bonAmount,
		StartDate:         startDate,
		EndDate:           endDate,
		RentalID:          rentalID,
		PatientID:         patientID,
	}

	b.AddDomainEvent(NewBondCreatedEvent(b))

	return b, nil
}

// EffectiveStatus returns the status as of "now": an approved bond whose
// validity window has elapsed reads as EXPIRE regardless of the stored value.
func (b *CNAMBond) EffectiveStatus(now time.Time) BondStatus {
	if b.Status == BondStatusApprouve && b.EndDate.Before(now) {
		return BondStatusExpire
	}
	return b.Status
}

// Approve transitions EN_ATTENTE -> APPROUVE on employee action. Requires a
// positive covered amount and a valid window.
func (b *CNAMBond) Approve(clock shared.Clock) error {
	if b.Status != BondStatusEnAttente {
		return shared.NewDomainError("INVALID_STATE", "Seule une prise en charge en attente peut être approuvée")
	}
	if !b.BonAmount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Le montant du bon doit être strictement positif pour l'approbation")
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return shared.NewDomainError("INVALID_DATES", "Les dates de validité doivent être renseignées avant l'approbation")
	}

	now := clock.Now()
	b.Status = BondStatusApprouve
	b.DecidedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewBondApprovedEvent(b))

	return nil
}

// Reject transitions EN_ATTENTE -> REJETE. Terminal: the rental must seek
// alternate funding, which is surfaced to the employee, not automated.
func (b *CNAMBond) Reject(clock shared.Clock, reason string) error {
	if b.Status != BondStatusEnAttente {
		return shared.NewDomainError("INVALID_STATE", "Seule une prise en charge en attente peut être rejetée")
	}

	now := clock.Now()
	b.Status = BondStatusRejete
	b.DecidedAt = &now
	b.RejectReason = reason
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewBondRejectedEvent(b))

	return nil
}

// NeedsRenewal reports whether the bond is inside its renewal window:
// RenewalLeadDays before endDate, or already past endDate.
func (b *CNAMBond) NeedsRenewal(now time.Time) bool {
	if b.Status != BondStatusApprouve {
		return false
	}
	lead := b.EndDate.AddDate(0, 0, -RenewalLeadDays)
	return !now.Before(lead)
}
