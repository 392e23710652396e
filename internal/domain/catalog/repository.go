package catalog

import (
	"context"

	"github.com/google/uuid"
)

// DeviceFilter defines filtering options for device list queries
type DeviceFilter struct {
	Category     *DeviceCategory
	Availability *DeviceAvailability
	Search       string // matches reference, name or serial number
	Page         int
	PageSize     int
}

// DeviceRepository defines persistence operations for devices
type DeviceRepository interface {
	// FindByID finds a device by ID. Returns nil, nil when not found.
	FindByID(ctx context.Context, id uuid.UUID) (*Device, error)

	// FindBySerialNumber finds a device by serial number. Returns nil, nil
	// when not found.
	FindBySerialNumber(ctx context.Context, serialNumber string) (*Device, error)

	// FindAvailableByCategory lists devices in stock for a category
	FindAvailableByCategory(ctx context.Context, category DeviceCategory) ([]Device, error)

	// FindAll lists devices with filtering and pagination
	FindAll(ctx context.Context, filter DeviceFilter) ([]Device, int64, error)

	// Save creates or updates a device
	Save(ctx context.Context, device *Device) error
}
