package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	device, err := NewDevice("CPAP-AS11", "CPAP AirSense 11", DeviceCategoryCPAP, "SN-0001", decimal.NewFromInt(2500), decimal.NewFromInt(200))
	require.NoError(t, err)
	return device
}

func TestNewDevice(t *testing.T) {
	t.Run("valid device starts available", func(t *testing.T) {
		device := newTestDevice(t)
		assert.True(t, device.IsAvailable())
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := NewDevice("X", "X", DeviceCategory("NEBULISEUR"), "SN-1", decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("missing serial number", func(t *testing.T) {
		_, err := NewDevice("X", "X", DeviceCategoryCPAP, " ", decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})
}

func TestDeviceAvailabilityTransitions(t *testing.T) {
	t.Run("rent and return", func(t *testing.T) {
		device := newTestDevice(t)
		require.NoError(t, device.MarkRented())
		assert.Equal(t, DeviceRented, device.Availability)
		assert.Error(t, device.MarkSold())

		require.NoError(t, device.MarkAvailable())
		assert.True(t, device.IsAvailable())
	})

	t.Run("sold is final", func(t *testing.T) {
		device := newTestDevice(t)
		require.NoError(t, device.MarkSold())
		assert.Error(t, device.MarkAvailable())
	})

	t.Run("rented device cannot be retired", func(t *testing.T) {
		device := newTestDevice(t)
		require.NoError(t, device.MarkRented())
		assert.Error(t, device.Retire())
	})

	t.Run("maintenance then back to stock", func(t *testing.T) {
		device := newTestDevice(t)
		require.NoError(t, device.MarkMaintenance())
		require.NoError(t, device.MarkAvailable())
		require.NoError(t, device.Retire())
		assert.Equal(t, DeviceRetired, device.Availability)
	})
}
