package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/reminder"
	"github.com/medirent/backend/internal/domain/scheduling"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/domain/trade"
)

// ReminderService assembles the reminder feed. Reminders are never stored:
// every call re-derives them from the source records through the classifier,
// so the feed, the dashboard counters and the per-patient views can never
// disagree.
type ReminderService struct {
	taskRepo        scheduling.TaskRepository
	appointmentRepo scheduling.AppointmentRepository
	diagnosticRepo  trade.DiagnosticRepository
	rentalRepo      trade.RentalRepository
	periodRepo      trade.PaymentPeriodRepository
	bondRepo        insurance.BondRepository
	saleRepo        trade.SaleRepository
	classifier      *reminder.Classifier
	clock           shared.Clock
	logger          *zap.Logger
}

// NewReminderService creates a ReminderService
func NewReminderService(
	taskRepo scheduling.TaskRepository,
	appointmentRepo scheduling.AppointmentRepository,
	diagnosticRepo trade.DiagnosticRepository,
	rentalRepo trade.RentalRepository,
	periodRepo trade.PaymentPeriodRepository,
	bondRepo insurance.BondRepository,
	saleRepo trade.SaleRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *ReminderService {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		taskRepo:        taskRepo,
		appointmentRepo: appointmentRepo,
		diagnosticRepo:  diagnosticRepo,
		rentalRepo:      rentalRepo,
		periodRepo:      periodRepo,
		bondRepo:        bondRepo,
		saleRepo:        saleRepo,
		classifier:      reminder.NewClassifier(clock),
		clock:           clock,
		logger:          logger,
	}
}

// FeedFilter defines filtering options for the reminder feed
type FeedFilter struct {
	SourceType  string `form:"source_type"`
	OverdueOnly bool   `form:"overdue_only"`
}

// FeedResponse is the assembled reminder feed plus its counters
type FeedResponse struct {
	Events       []reminder.Event `json:"events"`
	Total        int              `json:"total"`
	OverdueCount int              `json:"overdue_count"`
	BySourceType map[string]int   `json:"by_source_type"`
}

// GetFeed assembles the full reminder feed, soonest due first
func (s *ReminderService) GetFeed(ctx context.Context, filter FeedFilter) (*FeedResponse, error) {
	events, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	if filter.SourceType != "" {
		wanted := reminder.SourceType(filter.SourceType)
		filtered := events[:0]
		for _, ev := range events {
			if ev.SourceType == wanted {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}
	if filter.OverdueOnly {
		filtered := events[:0]
		for _, ev := range events {
			if ev.IsOverdue {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DueDate.Before(events[j].DueDate)
	})

	bySource := make(map[string]int)
	overdue := 0
	for _, ev := range events {
		bySource[string(ev.SourceType)]++
		if ev.IsOverdue {
			overdue++
		}
	}

	return &FeedResponse{
		Events:       events,
		Total:        len(events),
		OverdueCount: overdue,
		BySourceType: bySource,
	}, nil
}

// SummaryResponse carries the feed counters without the events themselves
type SummaryResponse struct {
	Total        int            `json:"total"`
	OverdueCount int            `json:"overdue_count"`
	BySourceType map[string]int `json:"by_source_type"`
}

// GetSummary returns the feed counters for dashboard badges
func (s *ReminderService) GetSummary(ctx context.Context) (*SummaryResponse, error) {
	events, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	bySource := make(map[string]int)
	overdue := 0
	for _, ev := range events {
		bySource[string(ev.SourceType)]++
		if ev.IsOverdue {
			overdue++
		}
	}

	return &SummaryResponse{
		Total:        len(events),
		OverdueCount: overdue,
		BySourceType: bySource,
	}, nil
}

// CompleteReminder closes a reminder from the feed. Only completable sources
// accept it: tasks complete, appointments close, rental alert and rental
// appointment dates clear. Everything else must be resolved on the source
// record itself.
func (s *ReminderService) CompleteReminder(ctx context.Context, sourceType reminder.SourceType, sourceID uuid.UUID) error {
	now := s.clock.Now()

	switch sourceType {
	case reminder.SourceTask:
		task, err := s.taskRepo.FindByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if task == nil {
			return shared.NewDomainError("NOT_FOUND", "Tâche introuvable")
		}
		if err := task.Complete(now); err != nil {
			return err
		}
		return s.taskRepo.Save(ctx, task)

	case reminder.SourceAppointment:
		appointment, err := s.appointmentRepo.FindByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if appointment == nil {
			return shared.NewDomainError("NOT_FOUND", "Rendez-vous introuvable")
		}
		if err := appointment.MarkDone(); err != nil {
			return err
		}
		return s.appointmentRepo.Save(ctx, appointment)

	case reminder.SourceRentalAlert, reminder.SourceRentalAppointment:
		rental, err := s.rentalRepo.FindByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if rental == nil {
			return shared.NewDomainError("NOT_FOUND", "Location introuvable")
		}
		if sourceType == reminder.SourceRentalAlert {
			err = rental.ScheduleAlert(nil)
		} else {
			err = rental.ScheduleAppointment(nil)
		}
		if err != nil {
			return err
		}
		return s.rentalRepo.Save(ctx, rental)

	default:
		return shared.NewDomainError("NOT_COMPLETABLE",
			fmt.Sprintf("Ce rappel ne peut pas être clôturé depuis le tableau de bord (%s)", sourceType))
	}
}

func (s *ReminderService) collect(ctx context.Context) ([]reminder.Event, error) {
	now := s.clock.Now()
	var events []reminder.Event

	tasks, err := s.taskRepo.FindOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open tasks: %w", err)
	}
	for i := range tasks {
		t := &tasks[i]
		if ev := s.classifier.ClassifyTask(reminder.TaskSnapshot{
			ID:      t.ID,
			Title:   t.Title,
			DueDate: t.DueDate,
		}); ev != nil {
			events = append(events, *ev)
		}
	}

	cutoff := now.AddDate(0, 0, reminder.AppointmentLookaheadDays)
	appointments, err := s.appointmentRepo.FindOpenBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	for i := range appointments {
		a := &appointments[i]
		if ev := s.classifier.ClassifyAppointment(reminder.AppointmentSnapshot{
			ID:        a.ID,
			Title:     a.Purpose,
			Date:      a.Date,
			Scheduled: a.Status.IsOpen(),
		}); ev != nil {
			events = append(events, *ev)
		}
	}

	diagnostics, err := s.diagnosticRepo.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending diagnostics: %w", err)
	}
	for i := range diagnostics {
		d := &diagnostics[i]
		if ev := s.classifier.ClassifyDiagnostic(reminder.DiagnosticSnapshot{
			ID:      d.ID,
			Title:   d.DiagnosticNumber,
			Date:    d.PerformedAt,
			Pending: d.IsPending(),
		}); ev != nil {
			events = append(events, *ev)
		}
	}

	rentals, err := s.rentalRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active rentals: %w", err)
	}
	for i := range rentals {
		r := &rentals[i]
		events = append(events, s.classifier.ClassifyRental(reminder.RentalSnapshot{
			ID:              r.ID,
			Title:           r.RentalNumber,
			Active:          r.IsActive(),
			EndDate:         r.EndDate,
			AlertDate:       r.AlertDate,
			TitrationDate:   r.TitrationDate,
			AppointmentDate: r.AppointmentDate,
		})...)
	}

	periodCutoff := now.AddDate(0, 0, -reminder.PaymentPeriodWindowDays)
	periods, err := s.periodRepo.FindOpen(ctx, periodCutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment periods: %w", err)
	}
	for i := range periods {
		p := &periods[i]
		periodEnd := p.PeriodEnd
		events = append(events, s.classifier.ClassifyPaymentPeriod(reminder.PaymentPeriodSnapshot{
			ID:            p.ID,
			Title:         fmt.Sprintf("Période du %s", p.PeriodStart.Format("02/01/2006")),
			DueDate:       p.DueDate,
			PeriodEndDate: &periodEnd,
			Paid:          p.Paid,
		})...)
	}

	bonds, err := s.bondRepo.FindApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved bonds: %w", err)
	}
	for i := range bonds {
		b := &bonds[i]
		if ev := s.classifier.ClassifyBond(reminder.BondSnapshot{
			ID:       b.ID,
			Title:    b.BondNumber,
			Approved: b.Status == insurance.BondStatusApprouve,
			EndDate:  b.EndDate,
		}); ev != nil {
			events = append(events, *ev)
		}
	}

	saleEvents, err := s.collectSaleRappels(ctx, now)
	if err != nil {
		return nil, err
	}
	events = append(events, saleEvents...)

	return events, nil
}

// collectSaleRappels loads only the sales whose 2-year or 7-year anniversary
// can fall inside the rappel window, then classifies them.
func (s *ReminderService) collectSaleRappels(ctx context.Context, now time.Time) ([]reminder.Event, error) {
	var events []reminder.Event

	for _, years := range []int{2, 7} {
		from := now.AddDate(-years, 0, -reminder.SaleRappelWindowDays)
		to := now.AddDate(-years, 0, reminder.SaleRappelWindowDays)
		sales, err := s.saleRepo.FindSoldBetween(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to load sales for %d-year rappels: %w", years, err)
		}
		for i := range sales {
			sale := &sales[i]
			events = append(events, s.classifier.ClassifySale(reminder.SaleSnapshot{
				ID:       sale.ID,
				Title:    sale.SaleNumber,
				SaleDate: sale.SaleDate,
			})...)
		}
	}

	// a sale can match both windows only if the windows overlap, which the
	// fixed 2y/7y spacing rules out; no dedup needed
	return events, nil
}
