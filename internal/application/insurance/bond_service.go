package insurance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/shared"
)

// BondService coordinates the CNAM bond lifecycle: submission, approval,
// rejection and renewal tracking. Expiry is never commanded; responses carry
// the effective status computed at read time.
type BondService struct {
	bondRepo  insurance.BondRepository
	publisher shared.EventPublisher
	clock     shared.Clock
	logger    *zap.Logger
}

// NewBondService creates a BondService
func NewBondService(bondRepo insurance.BondRepository, publisher shared.EventPublisher, clock shared.Clock, logger *zap.Logger) *BondService {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BondService{
		bondRepo:  bondRepo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// CreateBondRequest submits a bond to track
type CreateBondRequest struct {
	BondType      string     `json:"bond_type" binding:"required"`
	BondNumber    string     `json:"bond_number" binding:"required"`
	DossierNumber string     `json:"dossier_number" binding:"required"`
	BonAmount     float64    `json:"bon_amount"`
	StartDate     time.Time  `json:"start_date" binding:"required"`
	EndDate       time.Time  `json:"end_date" binding:"required"`
	RentalID      *uuid.UUID `json:"rental_id,omitempty"`
	PatientID     *uuid.UUID `json:"patient_id,omitempty"`
}

// BondResponse represents a bond in API responses. Status is the effective
// status as of the request, EXPIRE included.
type BondResponse struct {
	ID            uuid.UUID       `json:"id"`
	BondType      string          `json:"bond_type"`
	BondNumber    string          `json:"bond_number"`
	DossierNumber string          `json:"dossier_number"`
	Status        string          `json:"status"`
	BonAmount     decimal.Decimal `json:"bon_amount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	RentalID      *uuid.UUID      `json:"rental_id,omitempty"`
	PatientID     *uuid.UUID      `json:"patient_id,omitempty"`
	DecidedAt     *time.Time      `json:"decided_at,omitempty"`
	RejectReason  string          `json:"reject_reason,omitempty"`
	NeedsRenewal  bool            `json:"needs_renewal"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// BondListFilter defines filtering options for bond list queries
type BondListFilter struct {
	Status    string     `form:"status"`
	RentalID  *uuid.UUID `form:"rental_id"`
	PatientID *uuid.UUID `form:"patient_id"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreateBond submits a new bond in EN_ATTENTE
func (s *BondService) CreateBond(ctx context.Context, req CreateBondRequest) (*BondResponse, error) {
	bond, err := insurance.NewCNAMBond(
		insurance.BondType(req.BondType),
		req.BondNumber,
		req.DossierNumber,
		decimal.NewFromFloat(req.BonAmount),
		req.StartDate,
		req.EndDate,
		req.RentalID,
		req.PatientID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, bond); err != nil {
		return nil, err
	}

	s.logger.Info("bond submitted",
		zap.String("bond_id", bond.ID.String()),
		zap.String("bond_number", bond.BondNumber))

	return s.toResponse(bond), nil
}

// ApproveBond records the insurer's approval. The resulting BondApprovedEvent
// triggers re-evaluation of payment batches gated on this bond.
func (s *BondService) ApproveBond(ctx context.Context, bondID uuid.UUID) (*BondResponse, error) {
	bond, err := s.loadBond(ctx, bondID)
	if err != nil {
		return nil, err
	}

	if err := bond.Approve(s.clock); err != nil {
		return nil, err
	}
	if err := s.save(ctx, bond); err != nil {
		return nil, err
	}

	s.logger.Info("bond approved",
		zap.String("bond_id", bond.ID.String()),
		zap.String("bond_number", bond.BondNumber))

	return s.toResponse(bond), nil
}

// RejectBond records the insurer's rejection
func (s *BondService) RejectBond(ctx context.Context, bondID uuid.UUID, reason string) (*BondResponse, error) {
	bond, err := s.loadBond(ctx, bondID)
	if err != nil {
		return nil, err
	}

	if err := bond.Reject(s.clock, reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, bond); err != nil {
		return nil, err
	}

	s.logger.Info("bond rejected",
		zap.String("bond_id", bond.ID.String()),
		zap.String("reason", reason))

	return s.toResponse(bond), nil
}

// GetBond returns one bond by id
func (s *BondService) GetBond(ctx context.Context, bondID uuid.UUID) (*BondResponse, error) {
	bond, err := s.loadBond(ctx, bondID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(bond), nil
}

// GetBondsByRental returns the bond history of a rental, newest first
func (s *BondService) GetBondsByRental(ctx context.Context, rentalID uuid.UUID) ([]BondResponse, error) {
	bonds, err := s.bondRepo.FindByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(bonds), nil
}

// ListBonds lists bonds with filtering and pagination. The status filter
// matches the effective status: EXPIRE selects approved bonds past their
// window even though the stored value still reads APPROUVE.
func (s *BondService) ListBonds(ctx context.Context, filter BondListFilter) ([]BondResponse, int64, error) {
	domainFilter := insurance.BondFilter{
		RentalID:  filter.RentalID,
		PatientID: filter.PatientID,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}

	var effective *insurance.BondStatus
	if filter.Status != "" {
		status := insurance.BondStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Statut de prise en charge inconnu: "+filter.Status)
		}
		// EN_ATTENTE and REJETE are stored as-is; APPROUVE and EXPIRE both
		// live under a stored APPROUVE and are split after the read.
		if status == insurance.BondStatusEnAttente || status == insurance.BondStatusRejete {
			domainFilter.Status = &status
		} else {
			stored := insurance.BondStatusApprouve
			domainFilter.Status = &stored
			effective = &status
		}
	}

	bonds, total, err := s.bondRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	if effective != nil {
		now := s.clock.Now()
		filtered := bonds[:0]
		for i := range bonds {
			if bonds[i].EffectiveStatus(now) == *effective {
				filtered = append(filtered, bonds[i])
			}
		}
		bonds = filtered
		total = int64(len(bonds))
	}

	return s.toResponses(bonds), total, nil
}

// ListExpiringBonds returns approved bonds whose end date falls within the
// renewal lead time, the candidates for a renewal submission.
func (s *BondService) ListExpiringBonds(ctx context.Context) ([]BondResponse, error) {
	cutoff := s.clock.Now().AddDate(0, 0, insurance.RenewalLeadDays)
	bonds, err := s.bondRepo.FindExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return s.toResponses(bonds), nil
}

func (s *BondService) loadBond(ctx context.Context, bondID uuid.UUID) (*insurance.CNAMBond, error) {
	bond, err := s.bondRepo.FindByID(ctx, bondID)
	if err != nil {
		return nil, err
	}
	if bond == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Prise en charge introuvable")
	}
	return bond, nil
}

func (s *BondService) save(ctx context.Context, bond *insurance.CNAMBond) error {
	if err := s.bondRepo.Save(ctx, bond); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, bond.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish bond events",
				zap.String("bond_id", bond.ID.String()), zap.Error(err))
		}
	}
	bond.ClearDomainEvents()
	return nil
}

func (s *BondService) toResponse(b *insurance.CNAMBond) *BondResponse {
	now := s.clock.Now()
	return &BondResponse{
		ID:            b.ID,
		BondType:      string(b.BondType),
		BondNumber:    b.BondNumber,
		DossierNumber: b.DossierNumber,
		Status:        b.EffectiveStatus(now).String(),
		BonAmount:     b.BonAmount,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		RentalID:      b.RentalID,
		PatientID:     b.PatientID,
		DecidedAt:     b.DecidedAt,
		RejectReason:  b.RejectReason,
		NeedsRenewal:  b.NeedsRenewal(now),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Version:       b.GetVersion(),
	}
}

func (s *BondService) toResponses(bonds []insurance.CNAMBond) []BondResponse {
	responses := make([]BondResponse, 0, len(bonds))
	for i := range bonds {
		responses = append(responses, *s.toResponse(&bonds[i]))
	}
	return responses
}
