package partner

import (
	"context"

	"github.com/google/uuid"
)

// PatientFilter defines filtering options for patient list queries
type PatientFilter struct {
	Search   string // matches name, CIN or phone
	Archived *bool
	Page     int
	PageSize int
}

// PatientRepository defines persistence operations for patients
type PatientRepository interface {
	// FindByID finds a patient by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// FindByCIN finds a patient by CIN. Returns nil, nil when not found.
	FindByCIN(ctx context.Context, cin string) (*Patient, error)

	// FindByPhone finds a patient by phone. Returns nil, nil when not found.
	FindByPhone(ctx context.Context, phone string) (*Patient, error)

	// FindAll lists patients with filtering and pagination
	FindAll(ctx context.Context, filter PatientFilter) ([]Patient, int64, error)

	// Save creates or updates a patient
	Save(ctx context.Context, patient *Patient) error
}

// CompanyFilter defines filtering options for company list queries
type CompanyFilter struct {
	Search   string
	Archived *bool
	Page     int
	PageSize int
}

// CompanyRepository defines persistence operations for companies
type CompanyRepository interface {
	// FindByID finds a company by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindByName finds a company by exact name. Returns nil, nil when not
	// found.
	FindByName(ctx context.Context, name string) (*Company, error)

	// FindAll lists companies with filtering and pagination
	FindAll(ctx context.Context, filter CompanyFilter) ([]Company, int64, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error
}
