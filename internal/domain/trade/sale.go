package trade

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleLine represents one sold device or accessory on a sale
type SaleLine struct {
	ID         uuid.UUID       `json:"id"`
	DeviceID   uuid.UUID       `json:"device_id"`
	DeviceName string          `json:"device_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Amount     decimal.Decimal `json:"amount"`
}

// SaleLines is stored as JSONB on the sale row
type SaleLines []SaleLine

// Value implements driver.Valuer for database storage
func (l SaleLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for database retrieval
func (l *SaleLines) Scan(value interface{}) error {
	if value == nil {
		*l = SaleLines{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte or string failed")
		}
		bytes = []byte(str)
	}

	return json.Unmarshal(bytes, l)
}

// Sale represents a completed device sale. Sales drive the 2-year and
// 7-year follow-up rappels counted from SaleDate.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber  string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	PatientID   *uuid.UUID      `gorm:"type:uuid;index"`
	CompanyID   *uuid.UUID      `gorm:"type:uuid;index"`
	SaleDate    time.Time       `gorm:"not null;index"`
	Lines       SaleLines       `gorm:"type:jsonb"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Notes       string
}

// NewSale creates a sale with its lines. The total is the sum of the line
// amounts; at least one line is required.
func NewSale(saleNumber string, patientID, companyID *uuid.UUID, saleDate time.Time, lines []SaleLine) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Le numéro de vente est obligatoire")
	}
	if (patientID == nil) == (companyID == nil) {
		return nil, shared.NewDomainError("INVALID_BUYER", "La vente doit être liée soit à un patient, soit à une société")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "La vente doit contenir au moins une ligne")
	}

	total := decimal.Zero
	sold := make(SaleLines, 0, len(lines))
	for _, line := range lines {
		if line.DeviceID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_DEVICE", "L'appareil est obligatoire sur chaque ligne")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "La quantité doit être strictement positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Le prix unitaire ne peut pas être négatif")
		}

		line.ID = uuid.New()
		line.Amount = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(line.Amount)
		sold = append(sold, line)
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        saleNumber,
		PatientID:         patientID,
		CompanyID:         companyID,
		SaleDate:          saleDate,
		Lines:             sold,
		TotalAmount:       total,
	}

	sale.AddDomainEvent(NewSaleRecordedEvent(sale))

	return sale, nil
}

// SetNotes sets the free-form notes
func (s *Sale) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}

// RappelDate returns the follow-up anniversary, years after the sale date
func (s *Sale) RappelDate(years int) time.Time {
	return s.SaleDate.AddDate(years, 0, 0)
}
