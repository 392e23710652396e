package reminder

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies which record kind produced a reminder event
type SourceType string

const (
	SourceTask               SourceType = "TASK"
	SourceDiagnosticPending  SourceType = "DIAGNOSTIC_PENDING"
	SourceRentalExpiring     SourceType = "RENTAL_EXPIRING"
	SourcePaymentDue         SourceType = "PAYMENT_DUE"
	SourceAppointment        SourceType = "APPOINTMENT_REMINDER"
	SourceCNAMRenewal        SourceType = "CNAM_RENEWAL"
	SourceSaleRappel2Years   SourceType = "SALE_RAPPEL_2YEARS"
	SourceSaleRappel7Years   SourceType = "SALE_RAPPEL_7YEARS"
	SourceRentalAlert        SourceType = "RENTAL_ALERT"
	SourceRentalTitration    SourceType = "RENTAL_TITRATION"
	SourceRentalAppointment  SourceType = "RENTAL_APPOINTMENT"
	SourcePaymentPeriodEnd   SourceType = "PAYMENT_PERIOD_END"
)

// Completable states whether a reminder can be closed with one click (Yes),
// must redirect to a detail page (No), or depends on context (Maybe).
// A proper tri-state: the UI renders a different action for each value.
type Completable string

const (
	CompletableYes   Completable = "YES"
	CompletableNo    Completable = "NO"
	CompletableMaybe Completable = "MAYBE"
)

// Event is a derived calendar-like entry. It is a pure projection of another
// entity's date fields against "now": never stored, never causing side effects.
type Event struct {
	SourceType  SourceType  `json:"source_type"`
	SourceID    uuid.UUID   `json:"source_id"`
	Title       string      `json:"title"`
	DueDate     time.Time   `json:"due_date"`
	DaysUntil   int         `json:"days_until"` // negative when overdue
	IsOverdue   bool        `json:"is_overdue"`
	Completable Completable `json:"completable"`
}
