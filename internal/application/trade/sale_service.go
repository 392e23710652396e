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

// SaleService records device sales and diagnostics
type SaleService struct {
	saleRepo       trade.SaleRepository
	diagnosticRepo trade.DiagnosticRepository
	deviceRepo     catalog.DeviceRepository
	publisher      shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a SaleService
func NewSaleService(
	saleRepo trade.SaleRepository,
	diagnosticRepo trade.DiagnosticRepository,
	deviceRepo catalog.DeviceRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo:       saleRepo,
		diagnosticRepo: diagnosticRepo,
		deviceRepo:     deviceRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

// SaleLineRequest is one line of a sale submission
type SaleLineRequest struct {
	DeviceID  uuid.UUID `json:"device_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	UnitPrice float64   `json:"unit_price"`
}

// CreateSaleRequest records a sale
type CreateSaleRequest struct {
	SaleNumber string            `json:"sale_number" binding:"required"`
	PatientID  *uuid.UUID        `json:"patient_id,omitempty"`
	CompanyID  *uuid.UUID        `json:"company_id,omitempty"`
	SaleDate   time.Time         `json:"sale_date" binding:"required"`
	Lines      []SaleLineRequest `json:"lines" binding:"required"`
	Notes      string            `json:"notes,omitempty"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID          uuid.UUID       `json:"id"`
	SaleNumber  string          `json:"sale_number"`
	PatientID   *uuid.UUID      `json:"patient_id,omitempty"`
	CompanyID   *uuid.UUID      `json:"company_id,omitempty"`
	SaleDate    time.Time       `json:"sale_date"`
	Lines       trade.SaleLines `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateSale records a sale and marks the sold devices
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	lines := make([]trade.SaleLine, 0, len(req.Lines))
	devices := make([]*catalog.Device, 0, len(req.Lines))

	for _, line := range req.Lines {
		device, err := s.deviceRepo.FindByID(ctx, line.DeviceID)
		if err != nil {
			return nil, err
		}
		if device == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "Appareil introuvable")
		}

		price := decimal.NewFromFloat(line.UnitPrice)
		if price.IsZero() {
			price = device.SalePrice
		}
		lines = append(lines, trade.SaleLine{
			DeviceID:   device.ID,
			DeviceName: device.Name,
			Quantity:   line.Quantity,
			UnitPrice:  price,
		})
		devices = append(devices, device)
	}

	sale, err := trade.NewSale(req.SaleNumber, req.PatientID, req.CompanyID, req.SaleDate, lines)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		sale.SetNotes(req.Notes)
	}

	for _, device := range devices {
		if err := device.MarkSold(); err != nil {
			return nil, err
		}
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}
	for _, device := range devices {
		if err := s.deviceRepo.Save(ctx, device); err != nil {
			return nil, err
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, sale.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish sale events",
				zap.String("sale_id", sale.ID.String()), zap.Error(err))
		}
	}
	sale.ClearDomainEvents()

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("total", sale.TotalAmount.String()))

	return toSaleResponse(sale), nil
}

// GetSale returns one sale by id
func (s *SaleService) GetSale(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Vente introuvable")
	}
	return toSaleResponse(sale), nil
}

// SaleListFilter defines filtering options for sale list queries
type SaleListFilter struct {
	PatientID *uuid.UUID `form:"patient_id"`
	From      *time.Time `form:"from"`
	To        *time.Time `form:"to"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// ListSales lists sales with filtering and pagination
func (s *SaleService) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	sales, total, err := s.saleRepo.FindAll(ctx, trade.SaleFilter{
		PatientID: filter.PatientID,
		From:      filter.From,
		To:        filter.To,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		responses = append(responses, *toSaleResponse(&sales[i]))
	}
	return responses, total, nil
}

// CreateDiagnosticRequest opens a pending diagnostic
type CreateDiagnosticRequest struct {
	DiagnosticNumber string     `json:"diagnostic_number" binding:"required"`
	PatientID        uuid.UUID  `json:"patient_id" binding:"required"`
	DeviceID         *uuid.UUID `json:"device_id,omitempty"`
	PerformedAt      time.Time  `json:"performed_at" binding:"required"`
	Fee              float64    `json:"fee"`
}

// DiagnosticResponse represents a diagnostic in API responses
type DiagnosticResponse struct {
	ID               uuid.UUID       `json:"id"`
	DiagnosticNumber string          `json:"diagnostic_number"`
	PatientID        uuid.UUID       `json:"patient_id"`
	DeviceID         *uuid.UUID      `json:"device_id,omitempty"`
	Status           string          `json:"status"`
	PerformedAt      time.Time       `json:"performed_at"`
	Fee              decimal.Decimal `json:"fee"`
	Result           string          `json:"result,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// CreateDiagnostic opens a pending diagnostic
func (s *SaleService) CreateDiagnostic(ctx context.Context, req CreateDiagnosticRequest) (*DiagnosticResponse, error) {
	diagnostic, err := trade.NewDiagnostic(req.DiagnosticNumber, req.PatientID, req.DeviceID, req.PerformedAt, decimal.NewFromFloat(req.Fee))
	if err != nil {
		return nil, err
	}
	if err := s.diagnosticRepo.Save(ctx, diagnostic); err != nil {
		return nil, err
	}
	return toDiagnosticResponse(diagnostic), nil
}

// EnterDiagnosticResult records the result and completes the diagnostic,
// which removes it from the reminder feed.
func (s *SaleService) EnterDiagnosticResult(ctx context.Context, diagnosticID uuid.UUID, result string) (*DiagnosticResponse, error) {
	diagnostic, err := s.diagnosticRepo.FindByID(ctx, diagnosticID)
	if err != nil {
		return nil, err
	}
	if diagnostic == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Diagnostic introuvable")
	}

	if err := diagnostic.EnterResult(result); err != nil {
		return nil, err
	}
	if err := s.diagnosticRepo.Save(ctx, diagnostic); err != nil {
		return nil, err
	}

	return toDiagnosticResponse(diagnostic), nil
}

// GetDiagnostic returns one diagnostic by id
func (s *SaleService) GetDiagnostic(ctx context.Context, diagnosticID uuid.UUID) (*DiagnosticResponse, error) {
	diagnostic, err := s.diagnosticRepo.FindByID(ctx, diagnosticID)
	if err != nil {
		return nil, err
	}
	if diagnostic == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Diagnostic introuvable")
	}
	return toDiagnosticResponse(diagnostic), nil
}

// ListDiagnostics lists diagnostics with filtering and pagination
func (s *SaleService) ListDiagnostics(ctx context.Context, status string, patientID *uuid.UUID, page, pageSize int) ([]DiagnosticResponse, int64, error) {
	filter := trade.DiagnosticFilter{PatientID: patientID, Page: page, PageSize: pageSize}
	if status != "" {
		st := trade.DiagnosticStatus(status)
		if !st.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Statut de diagnostic inconnu: "+status)
		}
		filter.Status = &st
	}

	diagnostics, total, err := s.diagnosticRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DiagnosticResponse, 0, len(diagnostics))
	for i := range diagnostics {
		responses = append(responses, *toDiagnosticResponse(&diagnostics[i]))
	}
	return responses, total, nil
}

func toSaleResponse(sale *trade.Sale) *SaleResponse {
	return &SaleResponse{
		ID:          sale.ID,
		SaleNumber:  sale.SaleNumber,
		PatientID:   sale.PatientID,
		CompanyID:   sale.CompanyID,
		SaleDate:    sale.SaleDate,
		Lines:       sale.Lines,
		TotalAmount: sale.TotalAmount,
		Notes:       sale.Notes,
		CreatedAt:   sale.CreatedAt,
	}
}

func toDiagnosticResponse(d *trade.Diagnostic) *DiagnosticResponse {
	return &DiagnosticResponse{
		ID:               d.ID,
		DiagnosticNumber: d.DiagnosticNumber,
		PatientID:        d.PatientID,
		DeviceID:         d.DeviceID,
		Status:           d.Status.String(),
		PerformedAt:      d.PerformedAt,
		Fee:              d.Fee,
		Result:           d.Result,
		CompletedAt:      d.CompletedAt,
	}
}
