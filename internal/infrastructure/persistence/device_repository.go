package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormDeviceRepository implements DeviceRepository using GORM
type GormDeviceRepository struct {
	db *gorm.DB
}

// NewGormDeviceRepository creates a new GormDeviceRepository
func NewGormDeviceRepository(db *gorm.DB) *GormDeviceRepository {
	return &GormDeviceRepository{db: db}
}

// FindByID finds a device by ID. Returns nil, nil when not found.
func (r *GormDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Device, error) {
	var device catalog.Device
	if err := r.db.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// FindBySerialNumber finds a device by serial number. Returns nil, nil when not found.
func (r *GormDeviceRepository) FindBySerialNumber(ctx context.Context, serialNumber string) (*catalog.Device, error) {
	var device catalog.Device
	if err := r.db.WithContext(ctx).
		Where("serial_number = ?", serialNumber).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// FindAvailableByCategory lists devices in stock for a category
func (r *GormDeviceRepository) FindAvailableByCategory(ctx context.Context, category catalog.DeviceCategory) ([]catalog.Device, error) {
	var devices []catalog.Device
	if err := r.db.WithContext(ctx).
		Where("category = ? AND availability = ?", category, catalog.DeviceAvailable).
		Order("reference ASC").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// FindAll lists devices with filtering and pagination
func (r *GormDeviceRepository) FindAll(ctx context.Context, filter catalog.DeviceFilter) ([]catalog.Device, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Device{})

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Availability != nil {
		query = query.Where("availability = ?", *filter.Availability)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(reference) LIKE ? OR LOWER(name) LIKE ? OR LOWER(serial_number) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var devices []catalog.Device
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("reference ASC").
		Find(&devices).Error; err != nil {
		return nil, 0, err
	}
	return devices, total, nil
}

// Save creates or updates a device
func (r *GormDeviceRepository) Save(ctx context.Context, device *catalog.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}
