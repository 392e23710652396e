package insurance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BondFilter defines filtering options for bond list queries
type BondFilter struct {
	Status    *BondStatus
	RentalID  *uuid.UUID
	PatientID *uuid.UUID
	Page      int
	PageSize  int
}

// BondRepository defines persistence operations for CNAM bonds
type BondRepository interface {
	// FindByID finds a bond by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*CNAMBond, error)

	// FindByRental finds the bond history of a rental, newest first
	FindByRental(ctx context.Context, rentalID uuid.UUID) ([]CNAMBond, error)

	// FindApproved finds every bond stored as APPROUVE (expiry is derived on
	// read, so this includes bonds whose window has already elapsed)
	FindApproved(ctx context.Context) ([]CNAMBond, error)

	// FindExpiringBefore finds approved bonds whose endDate falls before the
	// given deadline, used for the renewal report
	FindExpiringBefore(ctx context.Context, deadline time.Time) ([]CNAMBond, error)

	// FindAll lists bonds with filtering and pagination
	FindAll(ctx context.Context, filter BondFilter) ([]CNAMBond, int64, error)

	// Save creates or updates a bond
	Save(ctx context.Context, bond *CNAMBond) error
}
