package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSale(t *testing.T) {
	patientID := uuid.New()
	saleDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("computes line amounts and total", func(t *testing.T) {
		sale, err := NewSale("VTE-2024-001", &patientID, nil, saleDate, []SaleLine{
			{DeviceID: uuid.New(), DeviceName: "CPAP AirSense 11", Quantity: 1, UnitPrice: decimal.NewFromInt(2500)},
			{DeviceID: uuid.New(), DeviceName: "Masque nasal", Quantity: 2, UnitPrice: decimal.NewFromFloat(150.500)},
		})
		require.NoError(t, err)
		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(2801)))
		assert.True(t, sale.Lines[1].Amount.Equal(decimal.NewFromInt(301)))
		assert.NotEqual(t, uuid.Nil, sale.Lines[0].ID)
		assert.Len(t, sale.GetDomainEvents(), 1)
	})

	t.Run("requires exactly one buyer", func(t *testing.T) {
		companyID := uuid.New()
		lines := []SaleLine{{DeviceID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(100)}}

		_, err := NewSale("VTE-1", nil, nil, saleDate, lines)
		assert.Error(t, err)

		_, err = NewSale("VTE-1", &patientID, &companyID, saleDate, lines)
		assert.Error(t, err)
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		_, err := NewSale("VTE-1", &patientID, nil, saleDate, nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewSale("VTE-1", &patientID, nil, saleDate, []SaleLine{
			{DeviceID: uuid.New(), Quantity: 0, UnitPrice: decimal.NewFromInt(100)},
		})
		assert.Error(t, err)
	})
}

func TestSaleRappelDate(t *testing.T) {
	patientID := uuid.New()
	saleDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	sale, err := NewSale("VTE-2024-002", &patientID, nil, saleDate, []SaleLine{
		{DeviceID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), sale.RappelDate(2))
	assert.Equal(t, time.Date(2031, 3, 15, 0, 0, 0, 0, time.UTC), sale.RappelDate(7))
}

func TestSaleLinesScan(t *testing.T) {
	lines := SaleLines{{ID: uuid.New(), DeviceID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(100), Amount: decimal.NewFromInt(100)}}

	value, err := lines.Value()
	require.NoError(t, err)

	var decoded SaleLines
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, lines[0].ID, decoded[0].ID)
	assert.True(t, decoded[0].Amount.Equal(lines[0].Amount))

	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)
}
