package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalBond(t *testing.T, rentalID uuid.UUID, start, end time.Time) *insurance.CNAMBond {
	t.Helper()

	bond, err := insurance.NewCNAMBond(
		insurance.BondTypeCPAP,
		"BON-"+uuid.NewString()[:8],
		"DOS-"+uuid.NewString()[:8],
		decimal.NewFromInt(1500),
		start, end,
		&rentalID, nil,
	)
	require.NoError(t, err)
	return bond
}

func approveBond(t *testing.T, bond *insurance.CNAMBond) {
	t.Helper()
	clock := shared.NewFixedClock(bond.StartDate.Add(24 * time.Hour))
	require.NoError(t, bond.Approve(clock))
}

func TestGormBondRepository_FindByID(t *testing.T) {
	repo := NewGormBondRepository(setupTestDB(t))
	ctx := context.Background()

	t.Run("returns nil for unknown id", func(t *testing.T) {
		bond, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, bond)
	})

	t.Run("round trips a bond", func(t *testing.T) {
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		bond := newRentalBond(t, uuid.New(), start, start.AddDate(1, 0, 0))
		require.NoError(t, repo.Save(ctx, bond))

		found, err := repo.FindByID(ctx, bond.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, bond.BondNumber, found.BondNumber)
		assert.Equal(t, insurance.BondStatusEnAttente, found.Status)
		assert.True(t, found.BonAmount.Equal(decimal.NewFromInt(1500)))
	})
}

func TestGormBondRepository_FindByRental(t *testing.T) {
	repo := NewGormBondRepository(setupTestDB(t))
	ctx := context.Background()

	rentalID := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	older := newRentalBond(t, rentalID, start, start.AddDate(1, 0, 0))
	newer := newRentalBond(t, rentalID, start.AddDate(1, 0, 0), start.AddDate(2, 0, 0))
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, newRentalBond(t, uuid.New(), start, start.AddDate(1, 0, 0))))

	bonds, err := repo.FindByRental(ctx, rentalID)
	require.NoError(t, err)
	require.Len(t, bonds, 2)
	assert.Equal(t, newer.ID, bonds[0].ID)
	assert.Equal(t, older.ID, bonds[1].ID)
}

func TestGormBondRepository_FindApproved(t *testing.T) {
	repo := NewGormBondRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	approved := newRentalBond(t, uuid.New(), start, start.AddDate(1, 0, 0))
	approveBond(t, approved)
	require.NoError(t, repo.Save(ctx, approved))

	pending := newRentalBond(t, uuid.New(), start, start.AddDate(1, 0, 0))
	require.NoError(t, repo.Save(ctx, pending))

	bonds, err := repo.FindApproved(ctx)
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, approved.ID, bonds[0].ID)
}

func TestGormBondRepository_FindExpiringBefore(t *testing.T) {
	repo := NewGormBondRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := start.AddDate(0, 6, 0)

	expiring := newRentalBond(t, uuid.New(), start, start.AddDate(0, 3, 0))
	approveBond(t, expiring)
	require.NoError(t, repo.Save(ctx, expiring))

	farOut := newRentalBond(t, uuid.New(), start, start.AddDate(1, 0, 0))
	approveBond(t, farOut)
	require.NoError(t, repo.Save(ctx, farOut))

	// expiring soon but never approved, excluded from the renewal report
	pending := newRentalBond(t, uuid.New(), start, start.AddDate(0, 2, 0))
	require.NoError(t, repo.Save(ctx, pending))

	bonds, err := repo.FindExpiringBefore(ctx, deadline)
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, expiring.ID, bonds[0].ID)
}

func TestGormBondRepository_FindAll(t *testing.T) {
	repo := NewGormBondRepository(setupTestDB(t))
	ctx := context.Background()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rentalID := uuid.New()

	approved := newRentalBond(t, rentalID, start, start.AddDate(1, 0, 0))
	approveBond(t, approved)
	require.NoError(t, repo.Save(ctx, approved))
	require.NoError(t, repo.Save(ctx, newRentalBond(t, rentalID, start, start.AddDate(1, 0, 0))))
	require.NoError(t, repo.Save(ctx, newRentalBond(t, uuid.New(), start, start.AddDate(1, 0, 0))))

	t.Run("filters by rental", func(t *testing.T) {
		_, total, err := repo.FindAll(ctx, insurance.BondFilter{RentalID: &rentalID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := insurance.BondStatusApprouve
		bonds, total, err := repo.FindAll(ctx, insurance.BondFilter{Status: &status})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, bonds, 1)
		assert.Equal(t, approved.ID, bonds[0].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		bonds, total, err := repo.FindAll(ctx, insurance.BondFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, bonds, 1)
	})
}
