package reminder

import (
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/shared"
)

// Lead times and windows. Source-level constants, not configuration: the rule
// table is the single source of truth for every dashboard and report.
const (
	RentalExpiryWindowDays   = 30 // RENTAL_EXPIRING lookahead
	CNAMRenewalLeadDays      = 30 // CNAM_RENEWAL lookahead before bond endDate
	PaymentPeriodWindowDays  = 30 // PAYMENT_PERIOD_END window, both directions
	SaleRappelWindowDays     = 30 // SALE_RAPPEL window around the anniversary, both directions
	AppointmentLookaheadDays = 7  // APPOINTMENT_REMINDER lookahead
)

// TaskSnapshot is the classifier's view of a manual task
type TaskSnapshot struct {
	ID        uuid.UUID
	Title     string
	DueDate   time.Time
	Completed bool
}

// AppointmentSnapshot is the classifier's view of an appointment
type AppointmentSnapshot struct {
	ID        uuid.UUID
	Title     string
	Date      time.Time
	Scheduled bool // status in {SCHEDULED, CONFIRMED}
}

// DiagnosticSnapshot is the classifier's view of a diagnostic
type DiagnosticSnapshot struct {
	ID      uuid.UUID
	Title   string
	Date    time.Time
	Pending bool
}

// RentalSnapshot is the classifier's view of a rental
type RentalSnapshot struct {
	ID              uuid.UUID
	Title           string
	Active          bool
	EndDate         time.Time
	AlertDate       *time.Time
	TitrationDate   *time.Time
	AppointmentDate *time.Time
}

// PaymentPeriodSnapshot is the classifier's view of a rental payment period
type PaymentPeriodSnapshot struct {
	ID            uuid.UUID
	Title         string
	DueDate       *time.Time
	PeriodEndDate *time.Time
	Paid          bool
}

// BondSnapshot is the classifier's view of a CNAM bond
type BondSnapshot struct {
	ID       uuid.UUID
	Title    string
	Approved bool
	EndDate  time.Time
}

// SaleSnapshot is the classifier's view of a sale
type SaleSnapshot struct {
	ID       uuid.UUID
	Title    string
	SaleDate time.Time
}

// Classifier derives reminder events from record snapshots. It is a pure
// function of (now, record): calling it twice with the same inputs yields
// identical output, so it is safe to run on every dashboard load.
type Classifier struct {
	clock shared.Clock
}

// NewClassifier creates a classifier with the given clock
func NewClassifier(clock shared.Clock) *Classifier {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	return &Classifier{clock: clock}
}

// daysUntil counts whole days from now to due, negative when past
func daysUntil(now, due time.Time) int {
	return int(due.Sub(now).Hours() / 24)
}

func (c *Classifier) event(sourceType SourceType, id uuid.UUID, title string, due time.Time, completable Completable) Event {
	now := c.clock.Now()
	return Event{
		SourceType:  sourceType,
		SourceID:    id,
		Title:       title,
		DueDate:     due,
		DaysUntil:   daysUntil(now, due),
		IsOverdue:   due.Before(now),
		Completable: completable,
	}
}

// ClassifyTask emits TASK for any manual task not completed. One-click
// completable.
func (c *Classifier) ClassifyTask(t TaskSnapshot) *Event {
	if t.Completed {
		return nil
	}
	ev := c.event(SourceTask, t.ID, t.Title, t.DueDate, CompletableYes)
	return &ev
}

// ClassifyAppointment emits APPOINTMENT_REMINDER for scheduled/confirmed
// appointments inside the lookahead window (overdue ones included).
func (c *Classifier) ClassifyAppointment(a AppointmentSnapshot) *Event {
	if !a.Scheduled {
		return nil
	}
	now := c.clock.Now()
	if a.Date.After(now.AddDate(0, 0, AppointmentLookaheadDays)) {
		return nil
	}
	ev := c.event(SourceAppointment, a.ID, a.Title, a.Date, CompletableYes)
	return &ev
}

// ClassifyDiagnostic emits DIAGNOSTIC_PENDING while a diagnostic awaits its
// result. Not completable from the feed: the result must be entered.
func (c *Classifier) ClassifyDiagnostic(d DiagnosticSnapshot) *Event {
	if !d.Pending {
		return nil
	}
	ev := c.event(SourceDiagnosticPending, d.ID, d.Title, d.Date, CompletableNo)
	return &ev
}

// ClassifyRental emits up to four events for one rental: expiring end date,
// alert date, titration reminder and rental appointment.
func (c *Classifier) ClassifyRental(r RentalSnapshot) []Event {
	now := c.clock.Now()
	var events []Event

	if r.Active && !r.EndDate.After(now.AddDate(0, 0, RentalExpiryWindowDays)) {
		// requires a renew/extend/end decision
		events = append(events, c.event(SourceRentalExpiring, r.ID, r.Title, r.EndDate, CompletableNo))
	}
	if r.AlertDate != nil && !r.AlertDate.After(now) {
		events = append(events, c.event(SourceRentalAlert, r.ID, r.Title, *r.AlertDate, CompletableMaybe))
	}
	if r.TitrationDate != nil && !r.TitrationDate.After(now) {
		events = append(events, c.event(SourceRentalTitration, r.ID, r.Title, *r.TitrationDate, CompletableNo))
	}
	if r.AppointmentDate != nil && !r.AppointmentDate.After(now) {
		events = append(events, c.event(SourceRentalAppointment, r.ID, r.Title, *r.AppointmentDate, CompletableMaybe))
	}

	return events
}

// ClassifyPaymentPeriod emits PAYMENT_DUE for an unpaid period past its due
// date and PAYMENT_PERIOD_END when the period end falls inside the window,
// either direction.
func (c *Classifier) ClassifyPaymentPeriod(p PaymentPeriodSnapshot) []Event {
	now := c.clock.Now()
	var events []Event

	if !p.Paid && p.DueDate != nil && p.DueDate.Before(now) {
		events = append(events, c.event(SourcePaymentDue, p.ID, p.Title, *p.DueDate, CompletableNo))
	}
	if p.PeriodEndDate != nil {
		from := now.AddDate(0, 0, -PaymentPeriodWindowDays)
		to := now.AddDate(0, 0, PaymentPeriodWindowDays)
		if !p.PeriodEndDate.Before(from) && !p.PeriodEndDate.After(to) {
			events = append(events, c.event(SourcePaymentPeriodEnd, p.ID, p.Title, *p.PeriodEndDate, CompletableNo))
		}
	}

	return events
}

// ClassifyBond emits CNAM_RENEWAL for an approved bond whose end date is
// within the lead time or already past. A new bond is required to close it.
func (c *Classifier) ClassifyBond(b BondSnapshot) *Event {
	if !b.Approved {
		return nil
	}
	now := c.clock.Now()
	if b.EndDate.After(now.AddDate(0, 0, CNAMRenewalLeadDays)) {
		return nil
	}
	ev := c.event(SourceCNAMRenewal, b.ID, b.Title, b.EndDate, CompletableNo)
	return &ev
}

// ClassifySale emits SALE_RAPPEL_2YEARS / SALE_RAPPEL_7YEARS when the sale
// anniversary falls inside the window. Informational, dismiss-only; DueDate
// and DaysUntil point at the exact anniversary.
func (c *Classifier) ClassifySale(s SaleSnapshot) []Event {
	now := c.clock.Now()
	var events []Event

	rappels := []struct {
		years      int
		sourceType SourceType
	}{
		{2, SourceSaleRappel2Years},
		{7, SourceSaleRappel7Years},
	}

	for _, rappel := range rappels {
		anniversary := s.SaleDate.AddDate(rappel.years, 0, 0)
		from := now.AddDate(0, 0, -SaleRappelWindowDays)
		to := now.AddDate(0, 0, SaleRappelWindowDays)
		if !anniversary.Before(from) && !anniversary.After(to) {
			events = append(events, c.event(rappel.sourceType, s.ID, s.Title, anniversary, CompletableNo))
		}
	}

	return events
}
