package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/partner"
	"github.com/medirent/backend/internal/domain/shared"
)

// PartnerService manages patients and company payers. Duplicate CIN and
// phone are caught before insert so the caller gets the offending field,
// matching the unique indexes underneath.
type PartnerService struct {
	patientRepo partner.PatientRepository
	companyRepo partner.CompanyRepository
	logger      *zap.Logger
}

// NewPartnerService creates a PartnerService
func NewPartnerService(patientRepo partner.PatientRepository, companyRepo partner.CompanyRepository, logger *zap.Logger) *PartnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartnerService{
		patientRepo: patientRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// CreatePatientRequest registers a patient
type CreatePatientRequest struct {
	FirstName  string     `json:"first_name" binding:"required"`
	LastName   string     `json:"last_name" binding:"required"`
	CIN        string     `json:"cin,omitempty"`
	Phone      string     `json:"phone" binding:"required"`
	Email      string     `json:"email,omitempty"`
	Address    string     `json:"address,omitempty"`
	CNAMCode   string     `json:"cnam_code,omitempty"`
	DoctorName string     `json:"doctor_name,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	CIN         string     `json:"cin,omitempty"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CNAMCode    string     `json:"cnam_code,omitempty"`
	DoctorName  string     `json:"doctor_name,omitempty"`
	Archived    bool       `json:"archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatePatient registers a patient, rejecting duplicate CIN or phone with
// the offending field named
func (s *PartnerService) CreatePatient(ctx context.Context, req CreatePatientRequest) (*PatientResponse, error) {
	if req.CIN != "" {
		existing, err := s.patientRepo.FindByCIN(ctx, req.CIN)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainFieldError("DUPLICATE", "cin", "Un patient avec ce CIN existe déjà")
		}
	}
	existing, err := s.patientRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainFieldError("DUPLICATE", "phone", "Un patient avec ce numéro de téléphone existe déjà")
	}

	patient, err := partner.NewPatient(req.FirstName, req.LastName, req.CIN, req.Phone)
	if err != nil {
		return nil, err
	}
	patient.Email = req.Email
	patient.Address = req.Address
	patient.DateOfBirth = req.BirthDate
	patient.UpdateMedicalInfo(req.CNAMCode, req.DoctorName)

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}

	s.logger.Info("patient registered",
		zap.String("patient_id", patient.ID.String()),
		zap.String("name", patient.FullName()))

	return toPatientResponse(patient), nil
}

// UpdatePatientRequest updates a patient's contact and medical info
type UpdatePatientRequest struct {
	Phone      string `json:"phone" binding:"required"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address,omitempty"`
	CNAMCode   string `json:"cnam_code,omitempty"`
	DoctorName string `json:"doctor_name,omitempty"`
}

// UpdatePatient updates contact and medical info
func (s *PartnerService) UpdatePatient(ctx context.Context, patientID uuid.UUID, req UpdatePatientRequest) (*PatientResponse, error) {
	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if req.Phone != patient.Phone {
		existing, err := s.patientRepo.FindByPhone(ctx, req.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != patient.ID {
			return nil, shared.NewDomainFieldError("DUPLICATE", "phone", "Un patient avec ce numéro de téléphone existe déjà")
		}
	}

	if err := patient.UpdateContact(req.Phone, req.Email, req.Address); err != nil {
		return nil, err
	}
	patient.UpdateMedicalInfo(req.CNAMCode, req.DoctorName)

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

// ArchivePatient hides a patient from pickers
func (s *PartnerService) ArchivePatient(ctx context.Context, patientID uuid.UUID) error {
	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return err
	}
	patient.Archive()
	return s.patientRepo.Save(ctx, patient)
}

// GetPatient returns one patient by id
func (s *PartnerService) GetPatient(ctx context.Context, patientID uuid.UUID) (*PatientResponse, error) {
	patient, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

// PatientListFilter defines filtering options for patient list queries
type PatientListFilter struct {
	Search   string `form:"search"`
	Archived *bool  `form:"archived"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ListPatients lists patients with filtering and pagination
func (s *PartnerService) ListPatients(ctx context.Context, filter PatientListFilter) ([]PatientResponse, int64, error) {
	patients, total, err := s.patientRepo.FindAll(ctx, partner.PatientFilter{
		Search:   filter.Search,
		Archived: filter.Archived,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PatientResponse, 0, len(patients))
	for i := range patients {
		responses = append(responses, *toPatientResponse(&patients[i]))
	}
	return responses, total, nil
}

// CreateCompanyRequest registers a company payer
type CreateCompanyRequest struct {
	Name      string `json:"name" binding:"required"`
	TaxNumber string `json:"tax_number,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TaxNumber string    `json:"tax_number,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCompany registers a company payer
func (s *PartnerService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	existing, err := s.companyRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainFieldError("DUPLICATE", "name", "Une société avec cette raison sociale existe déjà")
	}

	company, err := partner.NewCompany(req.Name, req.TaxNumber, req.Phone)
	if err != nil {
		return nil, err
	}
	company.UpdateContact(req.Phone, req.Email, req.Address)

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// GetCompany returns one company by id
func (s *PartnerService) GetCompany(ctx context.Context, companyID uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Société introuvable")
	}
	return toCompanyResponse(company), nil
}

// ListCompanies lists companies with filtering and pagination
func (s *PartnerService) ListCompanies(ctx context.Context, search string, archived *bool, page, pageSize int) ([]CompanyResponse, int64, error) {
	companies, total, err := s.companyRepo.FindAll(ctx, partner.CompanyFilter{
		Search:   search,
		Archived: archived,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		responses = append(responses, *toCompanyResponse(&companies[i]))
	}
	return responses, total, nil
}

func (s *PartnerService) loadPatient(ctx context.Context, patientID uuid.UUID) (*partner.Patient, error) {
	patient, err := s.patientRepo.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Patient introuvable")
	}
	return patient, nil
}

func toPatientResponse(p *partner.Patient) *PatientResponse {
	return &PatientResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		FullName:    p.FullName(),
		CIN:         p.CIN,
		Phone:       p.Phone,
		Email:       p.Email,
		Address:     p.Address,
		DateOfBirth: p.DateOfBirth,
		CNAMCode:    p.CNAMCode,
		DoctorName:  p.DoctorName,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toCompanyResponse(c *partner.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxNumber: c.TaxNumber,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Archived:  c.Archived,
		CreatedAt: c.CreatedAt,
	}
}
