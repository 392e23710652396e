package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/catalog"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/domain/trade"
)

// RentalService coordinates rental contracts and their billing periods.
// Opening a rental takes the device out of stock; ending it returns the
// device.
type RentalService struct {
	rentalRepo trade.RentalRepository
	periodRepo trade.PaymentPeriodRepository
	deviceRepo catalog.DeviceRepository
	publisher  shared.EventPublisher
	clock      shared.Clock
	logger     *zap.Logger
}

// NewRentalService creates a RentalService
func NewRentalService(
	rentalRepo trade.RentalRepository,
	periodRepo trade.PaymentPeriodRepository,
	deviceRepo catalog.DeviceRepository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *RentalService {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalService{
		rentalRepo: rentalRepo,
		periodRepo: periodRepo,
		deviceRepo: deviceRepo,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// CreateRentalRequest opens a rental contract
type CreateRentalRequest struct {
	RentalNumber  string    `json:"rental_number" binding:"required"`
	PatientID     uuid.UUID `json:"patient_id" binding:"required"`
	DeviceID      uuid.UUID `json:"device_id" binding:"required"`
	MonthlyRate   float64   `json:"monthly_rate" binding:"required"`
	DepositAmount float64   `json:"deposit_amount"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	CNAMCovered   bool      `json:"cnam_covered"`
}

// RentalResponse represents a rental in API responses
type RentalResponse struct {
	ID              uuid.UUID       `json:"id"`
	RentalNumber    string          `json:"rental_number"`
	PatientID       uuid.UUID       `json:"patient_id"`
	DeviceID        uuid.UUID       `json:"device_id"`
	Status          string          `json:"status"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	AlertDate       *time.Time      `json:"alert_date,omitempty"`
	TitrationDate   *time.Time      `json:"titration_date,omitempty"`
	AppointmentDate *time.Time      `json:"appointment_date,omitempty"`
	CNAMCovered     bool            `json:"cnam_covered"`
	Notes           string          `json:"notes,omitempty"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RentalListFilter defines filtering options for rental list queries
type RentalListFilter struct {
	Status       string     `form:"status"`
	PatientID    *uuid.UUID `form:"patient_id"`
	EndingBefore *time.Time `form:"ending_before"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// CreateRental opens a contract and marks the device rented
func (s *RentalService) CreateRental(ctx context.Context, req CreateRentalRequest) (*RentalResponse, error) {
	existing, err := s.rentalRepo.FindByNumber(ctx, req.RentalNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainFieldError("DUPLICATE", "rental_number", "Ce numéro de location existe déjà")
	}

	device, err := s.deviceRepo.FindByID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Appareil introuvable")
	}
	if err := device.MarkRented(); err != nil {
		return nil, err
	}

	rental, err := trade.NewRental(
		req.RentalNumber,
		req.PatientID,
		req.DeviceID,
		decimal.NewFromFloat(req.MonthlyRate),
		decimal.NewFromFloat(req.DepositAmount),
		req.StartDate,
		req.EndDate,
		req.CNAMCovered,
	)
	if err != nil {
		return nil, err
	}

	if err := s.rentalRepo.Save(ctx, rental); err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	s.publish(ctx, rental)

	s.logger.Info("rental opened",
		zap.String("rental_id", rental.ID.String()),
		zap.String("rental_number", rental.RentalNumber),
		zap.String("device_id", device.ID.String()))

	return toRentalResponse(rental), nil
}

// ExtendRental pushes the contract end date forward
func (s *RentalService) ExtendRental(ctx context.Context, rentalID uuid.UUID, newEndDate time.Time) (*RentalResponse, error) {
	rental, err := s.loadRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if err := rental.Extend(newEndDate); err != nil {
		return nil, err
	}
	if err := s.rentalRepo.Save(ctx, rental); err != nil {
		return nil, err
	}
	s.publish(ctx, rental)

	return toRentalResponse(rental), nil
}

// EndRental closes the contract and returns the device to stock
func (s *RentalService) EndRental(ctx context.Context, rentalID uuid.UUID, returnedAt time.Time) (*RentalResponse, error) {
	rental, err := s.loadRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if err := rental.End(returnedAt); err != nil {
		return nil, err
	}
	if err := s.rentalRepo.Save(ctx, rental); err != nil {
		return nil, err
	}

	device, err := s.deviceRepo.FindByID(ctx, rental.DeviceID)
	if err != nil {
		return nil, err
	}
	if device != nil {
		if err := device.MarkAvailable(); err == nil {
			if err := s.deviceRepo.Save(ctx, device); err != nil {
				return nil, err
			}
		}
	}
	s.publish(ctx, rental)

	s.logger.Info("rental ended",
		zap.String("rental_id", rental.ID.String()),
		zap.String("rental_number", rental.RentalNumber))

	return toRentalResponse(rental), nil
}

// ScheduleDatesRequest sets or clears the follow-up dates of a rental
type ScheduleDatesRequest struct {
	AlertDate       *time.Time `json:"alert_date"`
	TitrationDate   *time.Time `json:"titration_date"`
	AppointmentDate *time.Time `json:"appointment_date"`
}

// ScheduleDates updates the follow-up dates feeding the reminder feed
func (s *RentalService) ScheduleDates(ctx context.Context, rentalID uuid.UUID, req ScheduleDatesRequest) (*RentalResponse, error) {
	rental, err := s.loadRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if err := rental.ScheduleAlert(req.AlertDate); err != nil {
		return nil, err
	}
	if err := rental.ScheduleTitration(req.TitrationDate); err != nil {
		return nil, err
	}
	if err := rental.ScheduleAppointment(req.AppointmentDate); err != nil {
		return nil, err
	}

	if err := s.rentalRepo.Save(ctx, rental); err != nil {
		return nil, err
	}

	return toRentalResponse(rental), nil
}

// GetRental returns one rental by id
func (s *RentalService) GetRental(ctx context.Context, rentalID uuid.UUID) (*RentalResponse, error) {
	rental, err := s.loadRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return toRentalResponse(rental), nil
}

// ListRentals lists rentals with filtering and pagination
func (s *RentalService) ListRentals(ctx context.Context, filter RentalListFilter) ([]RentalResponse, int64, error) {
	domainFilter := trade.RentalFilter{
		PatientID:    filter.PatientID,
		EndingBefore: filter.EndingBefore,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
	}
	if filter.Status != "" {
		status := trade.RentalStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Statut de location inconnu: "+filter.Status)
		}
		domainFilter.Status = &status
	}

	rentals, total, err := s.rentalRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RentalResponse, 0, len(rentals))
	for i := range rentals {
		responses = append(responses, *toRentalResponse(&rentals[i]))
	}
	return responses, total, nil
}

// PeriodResponse represents a billing period in API responses
type PeriodResponse struct {
	ID          uuid.UUID       `json:"id"`
	RentalID    uuid.UUID       `json:"rental_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Paid        bool            `json:"paid"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// CreatePeriodRequest opens a billing period on a rental
type CreatePeriodRequest struct {
	PeriodStart time.Time  `json:"period_start" binding:"required"`
	PeriodEnd   time.Time  `json:"period_end" binding:"required"`
	DueDate     *time.Time `json:"due_date"`
	Amount      float64    `json:"amount" binding:"required"`
}

// CreatePeriod opens a billing period on a rental
func (s *RentalService) CreatePeriod(ctx context.Context, rentalID uuid.UUID, req CreatePeriodRequest) (*PeriodResponse, error) {
	rental, err := s.loadRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	period, err := trade.NewPaymentPeriod(rental.ID, req.PeriodStart, req.PeriodEnd, req.DueDate, decimal.NewFromFloat(req.Amount))
	if err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	return toPeriodResponse(period), nil
}

// MarkPeriodPaid settles a billing period
func (s *RentalService) MarkPeriodPaid(ctx context.Context, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Période de paiement introuvable")
	}

	if err := period.MarkPaid(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	return toPeriodResponse(period), nil
}

// ListPeriods lists the billing periods of a rental
func (s *RentalService) ListPeriods(ctx context.Context, rentalID uuid.UUID) ([]PeriodResponse, error) {
	periods, err := s.periodRepo.FindByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	responses := make([]PeriodResponse, 0, len(periods))
	for i := range periods {
		responses = append(responses, *toPeriodResponse(&periods[i]))
	}
	return responses, nil
}

func (s *RentalService) loadRental(ctx context.Context, rentalID uuid.UUID) (*trade.Rental, error) {
	rental, err := s.rentalRepo.FindByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Location introuvable")
	}
	return rental, nil
}

func (s *RentalService) publish(ctx context.Context, rental *trade.Rental) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rental.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish rental events",
				zap.String("rental_id", rental.ID.String()), zap.Error(err))
		}
	}
	rental.ClearDomainEvents()
}

func toRentalResponse(r *trade.Rental) *RentalResponse {
	return &RentalResponse{
		ID:              r.ID,
		RentalNumber:    r.RentalNumber,
		PatientID:       r.PatientID,
		DeviceID:        r.DeviceID,
		Status:          r.Status.String(),
		MonthlyRate:     r.MonthlyRate,
		DepositAmount:   r.DepositAmount,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		AlertDate:       r.AlertDate,
		TitrationDate:   r.TitrationDate,
		AppointmentDate: r.AppointmentDate,
		CNAMCovered:     r.CNAMCovered,
		Notes:           r.Notes,
		EndedAt:         r.EndedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toPeriodResponse(p *trade.PaymentPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:          p.ID,
		RentalID:    p.RentalID,
		PeriodStart: p.PeriodStart,
		PeriodEnd:   p.PeriodEnd,
		DueDate:     p.DueDate,
		Amount:      p.Amount,
		Paid:        p.Paid,
		PaidAt:      p.PaidAt,
	}
}
