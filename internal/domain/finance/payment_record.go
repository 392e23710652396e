package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment line was funded
type PaymentMethod string

const (
	MethodEspeces  PaymentMethod = "ESPECES"  // cash
	MethodCheque   PaymentMethod = "CHEQUE"   // check
	MethodVirement PaymentMethod = "VIREMENT" // bank transfer
	MethodMandat   PaymentMethod = "MANDAT"   // postal mandate
	MethodCNAM     PaymentMethod = "CNAM"     // insurance bond coverage
	MethodTraite   PaymentMethod = "TRAITE"   // draft with due date
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodEspeces, MethodCheque, MethodVirement, MethodMandat, MethodCNAM, MethodTraite:
		return true
	}
	return false
}

// String returns the string representation of the payment method
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentClassification is the role a payment line plays within a funding batch
type PaymentClassification string

const (
	ClassificationPrincipale PaymentClassification = "PRINCIPALE" // main payment
	ClassificationGarantie   PaymentClassification = "GARANTIE"   // deposit/guarantee
	ClassificationComplement PaymentClassification = "COMPLEMENT" // top-up
)

// IsValid checks if the classification is valid
func (c PaymentClassification) IsValid() bool {
	switch c {
	case ClassificationPrincipale, ClassificationGarantie, ClassificationComplement:
		return true
	}
	return false
}

// PaymentRecord is one funding contribution toward a batch total. Records are
// immutable once persisted: corrections are new compensating records. The only
// state that may change afterwards is CNAMPending, which tracks insurer
// settlement rather than the content of the record itself.
type PaymentRecord struct {
	ID             uuid.UUID             `json:"id"`
	Method         PaymentMethod         `json:"method"`
	Classification PaymentClassification `json:"classification"`
	Amount         decimal.Decimal       `json:"amount"`
	PaidAt         time.Time             `json:"paid_at"`
	// Method-specific fields
	CheckNumber       string     `json:"check_number,omitempty"`       // CHEQUE
	TransferReference string     `json:"transfer_reference,omitempty"` // VIREMENT
	MandateNumber     string     `json:"mandate_number,omitempty"`     // MANDAT
	DraftDueDate      *time.Time `json:"draft_due_date,omitempty"`     // TRAITE
	BondID            *uuid.UUID `json:"bond_id,omitempty"`            // CNAM
	// CNAMPending is true only for CNAM records awaiting insurer approval
	CNAMPending bool `json:"cnam_pending,omitempty"`
}

// IsPendingCNAM returns true for a CNAM record still awaiting insurer approval
func (r *PaymentRecord) IsPendingCNAM() bool {
	return r.Method == MethodCNAM && r.CNAMPending
}

// ConfirmCNAM clears the pending flag once the insurer has approved the bond
func (r *PaymentRecord) ConfirmCNAM() {
	r.CNAMPending = false
}

// PaymentRecords is a slice of PaymentRecord stored as JSONB inside the batch row
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}
