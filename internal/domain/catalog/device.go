package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DeviceCategory groups devices by therapeutic use
type DeviceCategory string

const (
	DeviceCategoryCPAP          DeviceCategory = "CPAP"
	DeviceCategoryVNI           DeviceCategory = "VNI"
	DeviceCategoryConcentrateur DeviceCategory = "CONCENTRATEUR_O2"
	DeviceCategoryPolygraphe    DeviceCategory = "POLYGRAPHE"
	DeviceCategoryAccessoire    DeviceCategory = "ACCESSOIRE"
)

// IsValid checks if the category is a valid DeviceCategory
func (c DeviceCategory) IsValid() bool {
	switch c {
	case DeviceCategoryCPAP, DeviceCategoryVNI, DeviceCategoryConcentrateur, DeviceCategoryPolygraphe, DeviceCategoryAccessoire:
		return true
	}
	return false
}

// DeviceAvailability tracks whether a device can be handed out
type DeviceAvailability string

const (
	DeviceAvailable   DeviceAvailability = "AVAILABLE"
	DeviceRented      DeviceAvailability = "RENTED"
	DeviceSold        DeviceAvailability = "SOLD"
	DeviceMaintenance DeviceAvailability = "MAINTENANCE"
	DeviceRetired     DeviceAvailability = "RETIRED"
)

// IsValid checks if the value is a valid DeviceAvailability
func (a DeviceAvailability) IsValid() bool {
	switch a {
	case DeviceAvailable, DeviceRented, DeviceSold, DeviceMaintenance, DeviceRetired:
		return true
	}
	return false
}

// Device represents one physical unit in stock, tracked by serial number.
type Device struct {
	shared.BaseAggregateRoot
	Reference    string             `gorm:"type:varchar(50);not null;index"`
	Name         string             `gorm:"type:varchar(200);not null"`
	Category     DeviceCategory     `gorm:"type:varchar(30);not null;index"`
	SerialNumber string             `gorm:"type:varchar(100);uniqueIndex;not null"`
	Availability DeviceAvailability `gorm:"type:varchar(20);not null;index"`
	SalePrice    decimal.Decimal    `gorm:"type:decimal(18,3);not null"`
	RentalRate   decimal.Decimal    `gorm:"type:decimal(18,3);not null"`
	Notes        string
}

// NewDevice registers a device in stock
func NewDevice(reference, name string, category DeviceCategory, serialNumber string, salePrice, rentalRate decimal.Decimal) (*Device, error) {
	reference = strings.TrimSpace(reference)
	name = strings.TrimSpace(name)
	serialNumber = strings.TrimSpace(serialNumber)

	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "La référence est obligatoire")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "La désignation est obligatoire")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Catégorie d'appareil inconnue: %s", category))
	}
	if serialNumber == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Le numéro de série est obligatoire")
	}
	if salePrice.IsNegative() || rentalRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Les prix ne peuvent pas être négatifs")
	}

	return &Device{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		Name:              name,
		Category:          category,
		SerialNumber:      serialNumber,
		Availability:      DeviceAvailable,
		SalePrice:         salePrice,
		RentalRate:        rentalRate,
	}, nil
}

// IsAvailable returns true when the device can be rented or sold
func (d *Device) IsAvailable() bool {
	return d.Availability == DeviceAvailable
}

// MarkRented flags the device as out on rental
func (d *Device) MarkRented() error {
	return d.transition(DeviceRented)
}

// MarkSold flags the device as sold
func (d *Device) MarkSold() error {
	return d.transition(DeviceSold)
}

// MarkAvailable returns the device to stock after a rental or maintenance
func (d *Device) MarkAvailable() error {
	if d.Availability == DeviceSold || d.Availability == DeviceRetired {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Un appareil %s ne peut pas revenir en stock", d.Availability))
	}
	d.Availability = DeviceAvailable
	d.UpdatedAt = time.Now()
	return nil
}

// MarkMaintenance takes the device out of stock for servicing
func (d *Device) MarkMaintenance() error {
	return d.transition(DeviceMaintenance)
}

// Retire removes the device from circulation permanently
func (d *Device) Retire() error {
	if d.Availability == DeviceRented {
		return shared.NewDomainError("INVALID_STATE", "Un appareil en location ne peut pas être réformé")
	}
	d.Availability = DeviceRetired
	d.UpdatedAt = time.Now()
	return nil
}

// UpdatePricing updates sale price and rental rate
func (d *Device) UpdatePricing(salePrice, rentalRate decimal.Decimal) error {
	if salePrice.IsNegative() || rentalRate.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Les prix ne peuvent pas être négatifs")
	}
	d.SalePrice = salePrice
	d.RentalRate = rentalRate
	d.UpdatedAt = time.Now()
	return nil
}

func (d *Device) transition(target DeviceAvailability) error {
	if d.Availability != DeviceAvailable {
		return shared.NewDomainError("DEVICE_UNAVAILABLE", fmt.Sprintf("L'appareil %s n'est pas disponible (statut %s)", d.SerialNumber, d.Availability))
	}
	d.Availability = target
	d.UpdatedAt = time.Now()
	return nil
}
