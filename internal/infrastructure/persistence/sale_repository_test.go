package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatientSale(t *testing.T, saleDate time.Time) *trade.Sale {
	t.Helper()

	patientID := uuid.New()
	sale, err := trade.NewSale("VEN-"+uuid.NewString()[:8], &patientID, nil, saleDate, []trade.SaleLine{
		{DeviceID: uuid.New(), DeviceName: "CPAP AirSense 10", Quantity: 1, UnitPrice: decimal.NewFromInt(2500)},
	})
	require.NoError(t, err)
	return sale
}

func TestGormSaleRepository_FindSoldBetween(t *testing.T) {
	repo := NewGormSaleRepository(setupTestDB(t))
	ctx := context.Background()

	from := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)

	inside := newPatientSale(t, from.AddDate(0, 0, 10))
	onLowerBound := newPatientSale(t, from)
	before := newPatientSale(t, from.AddDate(0, 0, -1))
	after := newPatientSale(t, to.AddDate(0, 0, 1))

	for _, sale := range []*trade.Sale{inside, onLowerBound, before, after} {
		require.NoError(t, repo.Save(ctx, sale))
	}

	sales, err := repo.FindSoldBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, onLowerBound.ID, sales[0].ID)
	assert.Equal(t, inside.ID, sales[1].ID)
}

func TestGormSaleRepository_FindAll(t *testing.T) {
	repo := NewGormSaleRepository(setupTestDB(t))
	ctx := context.Background()

	saleDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	sale := newPatientSale(t, saleDate)
	require.NoError(t, repo.Save(ctx, sale))
	require.NoError(t, repo.Save(ctx, newPatientSale(t, saleDate.AddDate(0, 1, 0))))

	t.Run("filters by patient", func(t *testing.T) {
		sales, total, err := repo.FindAll(ctx, trade.SaleFilter{PatientID: sale.PatientID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, sales, 1)
		assert.Equal(t, sale.ID, sales[0].ID)
	})

	t.Run("filters by date range", func(t *testing.T) {
		to := saleDate.AddDate(0, 0, 1)
		_, total, err := repo.FindAll(ctx, trade.SaleFilter{To: &to})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}
