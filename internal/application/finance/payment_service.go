package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/domain/shared/valueobject"
)

// PaymentService coordinates payment batch operations: creation (or resume),
// record acceptance, partial save and finalization. It owns the idempotency
// gate for resubmissions and publishes the domain events the batches raise.
type PaymentService struct {
	batchRepo         finance.PaymentBatchRepository
	bondRepo          insurance.BondRepository
	reconciliationSvc *finance.ReconciliationService
	idempotencyStore  shared.IdempotencyStore
	idempotencyCfg    shared.IdempotencyConfig
	publisher         shared.EventPublisher
	logger            *zap.Logger
}

// PaymentServiceOption is a functional option for configuring PaymentService
type PaymentServiceOption func(*PaymentService)

// WithIdempotencyStore wires the resubmission guard
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) PaymentServiceOption {
	return func(s *PaymentService) {
		s.idempotencyStore = store
		s.idempotencyCfg = cfg
	}
}

// WithEventPublisher wires the domain event publisher
func WithEventPublisher(publisher shared.EventPublisher) PaymentServiceOption {
	return func(s *PaymentService) {
		s.publisher = publisher
	}
}

// WithReconciliationService injects a custom reconciliation service
func WithReconciliationService(svc *finance.ReconciliationService) PaymentServiceOption {
	return func(s *PaymentService) {
		s.reconciliationSvc = svc
	}
}

// WithBondRepository wires bond lookups so batch reads report the bond-aware
// status (CNAM settlement and the stale-bond fallback)
func WithBondRepository(repo insurance.BondRepository) PaymentServiceOption {
	return func(s *PaymentService) {
		s.bondRepo = repo
	}
}

// NewPaymentService creates a PaymentService
func NewPaymentService(batchRepo finance.PaymentBatchRepository, logger *zap.Logger, opts ...PaymentServiceOption) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PaymentService{
		batchRepo:         batchRepo,
		reconciliationSvc: finance.NewReconciliationService(nil),
		idempotencyCfg:    shared.DefaultIdempotencyConfig(),
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PaymentRecordRequest is one payment line in a submission
type PaymentRecordRequest struct {
	Method            string     `json:"method" binding:"required"`
	Classification    string     `json:"classification" binding:"required"`
	Amount            float64    `json:"amount" binding:"required"`
	CheckNumber       string     `json:"check_number,omitempty"`
	TransferReference string     `json:"transfer_reference,omitempty"`
	MandateNumber     string     `json:"mandate_number,omitempty"`
	DraftDueDate      *time.Time `json:"draft_due_date,omitempty"`
	BondID            *uuid.UUID `json:"bond_id,omitempty"`
}

// CreateBatchRequest opens (or resumes) the payment batch of a transaction
type CreateBatchRequest struct {
	RentalID       *uuid.UUID             `json:"rental_id,omitempty"`
	SaleID         *uuid.UUID             `json:"sale_id,omitempty"`
	DiagnosticID   *uuid.UUID             `json:"diagnostic_id,omitempty"`
	PatientID      *uuid.UUID             `json:"patient_id,omitempty"`
	CompanyID      *uuid.UUID             `json:"company_id,omitempty"`
	TotalAmount    float64                `json:"total_amount" binding:"required"`
	Notes          string                 `json:"notes,omitempty"`
	Records        []PaymentRecordRequest `json:"records,omitempty"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
}

// BatchResponse represents a payment batch in API responses
type BatchResponse struct {
	ID              uuid.UUID               `json:"id"`
	RentalID        *uuid.UUID              `json:"rental_id,omitempty"`
	SaleID          *uuid.UUID              `json:"sale_id,omitempty"`
	DiagnosticID    *uuid.UUID              `json:"diagnostic_id,omitempty"`
	PatientID       *uuid.UUID              `json:"patient_id,omitempty"`
	CompanyID       *uuid.UUID              `json:"company_id,omitempty"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaidAmount      decimal.Decimal         `json:"paid_amount"`
	RemainingAmount decimal.Decimal         `json:"remaining_amount"`
	Status          string                  `json:"status"`
	Records         []finance.PaymentRecord `json:"records"`
	Notes           string                  `json:"notes,omitempty"`
	Finalized       bool                    `json:"finalized"`
	FinalizedAt     *time.Time              `json:"finalized_at,omitempty"`
	Resumed         bool                    `json:"resumed,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Version         int                     `json:"version"`
}

// BatchListFilter defines filtering options for batch list queries
type BatchListFilter struct {
	Status    string     `form:"status"`
	PatientID *uuid.UUID `form:"patient_id"`
	CompanyID *uuid.UUID `form:"company_id"`
	Finalized *bool      `form:"finalized"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreateBatch opens the payment batch of a transaction. If an open batch
// already exists for the same transaction it is resumed: submitted records
// are appended to it and no duplicate is created. A repeated idempotency key
// returns the existing state without touching it.
func (s *PaymentService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	target := finance.BatchTarget{RentalID: req.RentalID, SaleID: req.SaleID, DiagnosticID: req.DiagnosticID}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotencyStore != nil && s.idempotencyCfg.Enabled {
		fresh, err := s.idempotencyStore.MarkProcessed(ctx, "payment:"+req.IdempotencyKey, s.idempotencyCfg.TTL)
		if err != nil {
			// The guard is best-effort: a store outage must not block payments.
			s.logger.Warn("idempotency store unavailable, accepting submission",
				zap.String("key", req.IdempotencyKey), zap.Error(err))
		} else if !fresh {
			s.logger.Info("duplicate payment submission ignored",
				zap.String("key", req.IdempotencyKey))
			existing, err := s.batchRepo.FindActiveByTarget(ctx, target)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return toBatchResponse(existing, true), nil
			}
			return nil, shared.NewDomainError("DUPLICATE_SUBMISSION", "Ce paiement a déjà été enregistré")
		}
	}

	batch, err := s.batchRepo.FindActiveByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	resumed := batch != nil
	if !resumed {
		payer := finance.Payer{PatientID: req.PatientID, CompanyID: req.CompanyID}
		total := valueobject.NewMoneyTNDFromFloat(req.TotalAmount)
		batch, err = finance.NewPaymentBatch(target, payer, total, req.Notes)
		if err != nil {
			return nil, err
		}
	}

	if len(req.Records) > 0 {
		records, err := toDomainRecords(req.Records)
		if err != nil {
			return nil, err
		}
		if err := batch.AddRecords(records); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("payment batch saved",
		zap.String("batch_id", batch.ID.String()),
		zap.String("status", batch.Status.String()),
		zap.Bool("resumed", resumed))

	return toBatchResponse(batch, resumed), nil
}

// AddRecords appends payment lines to an open batch
func (s *PaymentService) AddRecords(ctx context.Context, batchID uuid.UUID, requests []PaymentRecordRequest) (*BatchResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	records, err := toDomainRecords(requests)
	if err != nil {
		return nil, err
	}
	if err := batch.AddRecords(records); err != nil {
		return nil, err
	}

	if err := s.save(ctx, batch); err != nil {
		return nil, err
	}

	return toBatchResponse(batch, false), nil
}

// SavePartial records an explicit "save and continue later" on an open batch
func (s *PaymentService) SavePartial(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if err := batch.SavePartial(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, batch); err != nil {
		return nil, err
	}

	return toBatchResponse(batch, false), nil
}

// Finalize closes a financially complete batch
func (s *PaymentService) Finalize(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	if err := batch.Finalize(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("payment batch finalized",
		zap.String("batch_id", batch.ID.String()),
		zap.String("status", batch.Status.String()))

	return toBatchResponse(batch, false), nil
}

// GetBatch returns one batch by id, re-evaluated against current bond state
func (s *PaymentService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluate(ctx, batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch, false), nil
}

// GetBatchesByTarget returns every batch of a transaction, newest first
func (s *PaymentService) GetBatchesByTarget(ctx context.Context, target finance.BatchTarget) ([]BatchResponse, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	responses := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, *toBatchResponse(&batches[i], false))
	}
	return responses, nil
}

// ListBatches lists batches with filtering and pagination
func (s *PaymentService) ListBatches(ctx context.Context, filter BatchListFilter) ([]BatchResponse, int64, error) {
	domainFilter := finance.PaymentBatchFilter{
		PatientID: filter.PatientID,
		CompanyID: filter.CompanyID,
		Finalized: filter.Finalized,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	if filter.Status != "" {
		status := finance.BatchStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Statut de paiement inconnu: "+filter.Status)
		}
		domainFilter.Status = &status
	}

	batches, total, err := s.batchRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, *toBatchResponse(&batches[i], false))
	}
	return responses, total, nil
}

// MethodBreakdown is the per-method aggregation of a batch
type MethodBreakdown struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// BatchSummaryResponse is the reconciliation view of one batch
type BatchSummaryResponse struct {
	BatchID         uuid.UUID         `json:"batch_id"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	RemainingAmount decimal.Decimal   `json:"remaining_amount"`
	Status          string            `json:"status"`
	PendingCNAM     bool              `json:"pending_cnam"`
	ByMethod        []MethodBreakdown `json:"by_method"`
}

// GetBatchSummary returns totals and the per-method breakdown of a batch,
// re-evaluated against current bond state
func (s *PaymentService) GetBatchSummary(ctx context.Context, batchID uuid.UUID) (*BatchSummaryResponse, error) {
	batch, err := s.loadBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluate(ctx, batch); err != nil {
		return nil, err
	}

	grouped := finance.GroupByMethod(batch.Records)
	byMethod := make([]MethodBreakdown, 0, len(grouped))
	for _, method := range []finance.PaymentMethod{
		finance.MethodEspeces, finance.MethodCheque, finance.MethodVirement,
		finance.MethodMandat, finance.MethodCNAM, finance.MethodTraite,
	} {
		records, ok := grouped[method]
		if !ok {
			continue
		}
		amount := decimal.Zero
		for i := range records {
			amount = amount.Add(records[i].Amount)
		}
		byMethod = append(byMethod, MethodBreakdown{Method: method.String(), Count: len(records), Amount: amount})
	}

	return &BatchSummaryResponse{
		BatchID:         batch.ID,
		TotalAmount:     batch.TotalAmount,
		PaidAmount:      batch.PaidAmount,
		RemainingAmount: batch.RemainingAmount,
		Status:          batch.Status.String(),
		PendingCNAM:     batch.HasPendingCNAM(),
		ByMethod:        byMethod,
	}, nil
}

// evaluate re-derives the classification of a loaded batch against the current
// state of its referenced bonds. The result is a read-side view: the batch is
// not persisted here, settlement is written by the bond approval handler.
func (s *PaymentService) evaluate(ctx context.Context, batch *finance.PaymentBatch) error {
	if s.bondRepo == nil {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	var bonds []*insurance.CNAMBond
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.IsPendingCNAM() || rec.BondID == nil || seen[*rec.BondID] {
			continue
		}
		seen[*rec.BondID] = true
		bond, err := s.bondRepo.FindByID(ctx, *rec.BondID)
		if err != nil {
			return err
		}
		if bond != nil {
			bonds = append(bonds, bond)
		}
	}
	if len(bonds) == 0 {
		return nil
	}

	s.reconciliationSvc.Evaluate(batch, bonds)
	batch.ClearDomainEvents()
	return nil
}

func (s *PaymentService) loadBatch(ctx context.Context, batchID uuid.UUID) (*finance.PaymentBatch, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Paiement introuvable")
	}
	return batch, nil
}

func (s *PaymentService) save(ctx context.Context, batch *finance.PaymentBatch) error {
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, batch.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish payment events",
				zap.String("batch_id", batch.ID.String()), zap.Error(err))
		}
	}
	batch.ClearDomainEvents()
	return nil
}

func toDomainRecords(requests []PaymentRecordRequest) ([]finance.PaymentRecord, error) {
	records := make([]finance.PaymentRecord, 0, len(requests))
	for _, r := range requests {
		rec := finance.PaymentRecord{
			Method:            finance.PaymentMethod(r.Method),
			Classification:    finance.PaymentClassification(r.Classification),
			Amount:            decimal.NewFromFloat(r.Amount),
			CheckNumber:       r.CheckNumber,
			TransferReference: r.TransferReference,
			MandateNumber:     r.MandateNumber,
			DraftDueDate:      r.DraftDueDate,
			BondID:            r.BondID,
		}
		// CNAM lines start unsettled until the insurer approves the bond
		if rec.Method == finance.MethodCNAM {
			rec.CNAMPending = true
		}
		records = append(records, rec)
	}
	return records, nil
}

func toBatchResponse(b *finance.PaymentBatch, resumed bool) *BatchResponse {
	return &BatchResponse{
		ID:              b.ID,
		RentalID:        b.RentalID,
		SaleID:          b.SaleID,
		DiagnosticID:    b.DiagnosticID,
		PatientID:       b.PatientID,
		CompanyID:       b.CompanyID,
		TotalAmount:     b.TotalAmount,
		PaidAmount:      b.PaidAmount,
		RemainingAmount: b.RemainingAmount,
		Status:          b.Status.String(),
		Records:         b.Records,
		Notes:           b.Notes,
		Finalized:       b.Finalized,
		FinalizedAt:     b.FinalizedAt,
		Resumed:         resumed,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.GetVersion(),
	}
}
