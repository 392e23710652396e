package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/catalog"
	"github.com/medirent/backend/internal/domain/shared"
)

// DeviceService manages the device stock
type DeviceService struct {
	deviceRepo catalog.DeviceRepository
	logger     *zap.Logger
}

// NewDeviceService creates a DeviceService
func NewDeviceService(deviceRepo catalog.DeviceRepository, logger *zap.Logger) *DeviceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{deviceRepo: deviceRepo, logger: logger}
}

// CreateDeviceRequest registers a device in stock
type CreateDeviceRequest struct {
	Reference    string  `json:"reference" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category" binding:"required"`
	SerialNumber string  `json:"serial_number" binding:"required"`
	SalePrice    float64 `json:"sale_price"`
	RentalRate   float64 `json:"rental_rate"`
}

// DeviceResponse represents a device in API responses
type DeviceResponse struct {
	ID           uuid.UUID       `json:"id"`
	Reference    string          `json:"reference"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SerialNumber string          `json:"serial_number"`
	Availability string          `json:"availability"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	RentalRate   decimal.Decimal `json:"rental_rate"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DeviceListFilter defines filtering options for device list queries
type DeviceListFilter struct {
	Category     string `form:"category"`
	Availability string `form:"availability"`
	Search       string `form:"search"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// CreateDevice registers a device, rejecting duplicate serial numbers
func (s *DeviceService) CreateDevice(ctx context.Context, req CreateDeviceRequest) (*DeviceResponse, error) {
	existing, err := s.deviceRepo.FindBySerialNumber(ctx, req.SerialNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainFieldError("DUPLICATE", "serial_number", "Un appareil avec ce numéro de série existe déjà")
	}

	device, err := catalog.NewDevice(
		req.Reference,
		req.Name,
		catalog.DeviceCategory(req.Category),
		req.SerialNumber,
		decimal.NewFromFloat(req.SalePrice),
		decimal.NewFromFloat(req.RentalRate),
	)
	if err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	s.logger.Info("device registered",
		zap.String("device_id", device.ID.String()),
		zap.String("serial_number", device.SerialNumber))

	return toDeviceResponse(device), nil
}

// UpdatePricing updates a device's sale price and rental rate
func (s *DeviceService) UpdatePricing(ctx context.Context, deviceID uuid.UUID, salePrice, rentalRate float64) (*DeviceResponse, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if err := device.UpdatePricing(decimal.NewFromFloat(salePrice), decimal.NewFromFloat(rentalRate)); err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	return toDeviceResponse(device), nil
}

// SetMaintenance moves an available device into maintenance, or back
func (s *DeviceService) SetMaintenance(ctx context.Context, deviceID uuid.UUID, inMaintenance bool) (*DeviceResponse, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if inMaintenance {
		err = device.MarkMaintenance()
	} else {
		err = device.MarkAvailable()
	}
	if err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	return toDeviceResponse(device), nil
}

// RetireDevice removes a device from circulation
func (s *DeviceService) RetireDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if err := device.Retire(); err != nil {
		return nil, err
	}
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}
	return toDeviceResponse(device), nil
}

// GetDevice returns one device by id
func (s *DeviceService) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	device, err := s.loadDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return toDeviceResponse(device), nil
}

// ListDevices lists devices with filtering and pagination
func (s *DeviceService) ListDevices(ctx context.Context, filter DeviceListFilter) ([]DeviceResponse, int64, error) {
	domainFilter := catalog.DeviceFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Category != "" {
		category := catalog.DeviceCategory(filter.Category)
		if !category.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_CATEGORY", "Catégorie d'appareil inconnue: "+filter.Category)
		}
		domainFilter.Category = &category
	}
	if filter.Availability != "" {
		availability := catalog.DeviceAvailability(filter.Availability)
		if !availability.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Disponibilité inconnue: "+filter.Availability)
		}
		domainFilter.Availability = &availability
	}

	devices, total, err := s.deviceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DeviceResponse, 0, len(devices))
	for i := range devices {
		responses = append(responses, *toDeviceResponse(&devices[i]))
	}
	return responses, total, nil
}

func (s *DeviceService) loadDevice(ctx context.Context, deviceID uuid.UUID) (*catalog.Device, error) {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Appareil introuvable")
	}
	return device, nil
}

func toDeviceResponse(d *catalog.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:           d.ID,
		Reference:    d.Reference,
		Name:         d.Name,
		Category:     string(d.Category),
		SerialNumber: d.SerialNumber,
		Availability: string(d.Availability),
		SalePrice:    d.SalePrice,
		RentalRate:   d.RentalRate,
		Notes:        d.Notes,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
