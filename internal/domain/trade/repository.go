package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RentalFilter defines filtering options for rental list queries
type RentalFilter struct {
	Status        *RentalStatus
	PatientID     *uuid.UUID
	DeviceID      *uuid.UUID
	EndingBefore  *time.Time
	CNAMCovered   *bool
	Page          int
	PageSize      int
}

// RentalRepository defines persistence operations for rentals
type RentalRepository interface {
	// FindByID finds a rental by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Rental, error)

	// FindByNumber finds a rental by its contract number. Returns nil, nil
	// when not found.
	FindByNumber(ctx context.Context, rentalNumber string) (*Rental, error)

	// FindActive lists every rental still running
	FindActive(ctx context.Context) ([]Rental, error)

	// FindAll lists rentals with filtering and pagination
	FindAll(ctx context.Context, filter RentalFilter) ([]Rental, int64, error)

	// Save creates or updates a rental
	Save(ctx context.Context, rental *Rental) error
}

// SaleFilter defines filtering options for sale list queries
type SaleFilter struct {
	PatientID *uuid.UUID
	CompanyID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// SaleRepository defines persistence operations for sales
type SaleRepository interface {
	// FindByID finds a sale by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindSoldBetween lists sales whose sale date falls inside [from, to],
	// used to collect follow-up rappel candidates
	FindSoldBetween(ctx context.Context, from, to time.Time) ([]Sale, error)

	// FindAll lists sales with filtering and pagination
	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, int64, error)

	// Save creates or updates a sale
	Save(ctx context.Context, sale *Sale) error
}

// DiagnosticFilter defines filtering options for diagnostic list queries
type DiagnosticFilter struct {
	Status    *DiagnosticStatus
	PatientID *uuid.UUID
	Page      int
	PageSize  int
}

// DiagnosticRepository defines persistence operations for diagnostics
type DiagnosticRepository interface {
	// FindByID finds a diagnostic by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Diagnostic, error)

	// FindPending lists diagnostics awaiting their result
	FindPending(ctx context.Context) ([]Diagnostic, error)

	// FindAll lists diagnostics with filtering and pagination
	FindAll(ctx context.Context, filter DiagnosticFilter) ([]Diagnostic, int64, error)

	// Save creates or updates a diagnostic
	Save(ctx context.Context, diagnostic *Diagnostic) error
}

// PaymentPeriodRepository defines persistence operations for billing periods
type PaymentPeriodRepository interface {
	// FindByID finds a period by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentPeriod, error)

	// FindByRental lists the periods of a rental, oldest first
	FindByRental(ctx context.Context, rentalID uuid.UUID) ([]PaymentPeriod, error)

	// FindOpen lists unpaid periods plus paid ones whose period end falls
	// after the given cutoff, the working set of the reminder feed
	FindOpen(ctx context.Context, endAfter time.Time) ([]PaymentPeriod, error)

	// Save creates or updates a period
	Save(ctx context.Context, period *PaymentPeriod) error
}
