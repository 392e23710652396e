package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentPeriod represents one billing period of a rental. Each period feeds
// the PAYMENT_DUE and PAYMENT_PERIOD_END reminders until it is marked paid.
type PaymentPeriod struct {
	shared.BaseAggregateRoot
	RentalID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PeriodStart time.Time       `gorm:"not null"`
	PeriodEnd   time.Time       `gorm:"not null;index"`
	DueDate     *time.Time      `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Paid        bool            `gorm:"not null;default:false;index"`
	PaidAt      *time.Time
}

// NewPaymentPeriod creates an unpaid billing period for a rental
func NewPaymentPeriod(rentalID uuid.UUID, periodStart, periodEnd time.Time, dueDate *time.Time, amount decimal.Decimal) (*PaymentPeriod, error) {
	if rentalID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RENTAL", "La location est obligatoire")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "La fin de période doit être postérieure au début")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Le montant de la période doit être strictement positif")
	}

	return &PaymentPeriod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RentalID:          rentalID,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		DueDate:           dueDate,
		Amount:            amount,
	}, nil
}

// MarkPaid settles the period
func (p *PaymentPeriod) MarkPaid(paidAt time.Time) error {
	if p.Paid {
		return shared.NewDomainError("ALREADY_PAID", "La période est déjà réglée")
	}

	p.Paid = true
	p.PaidAt = &paidAt
	p.UpdatedAt = time.Now()

	return nil
}
