package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRentalBatch(t *testing.T, rentalID, patientID uuid.UUID, total float64) *finance.PaymentBatch {
	t.Helper()

	batch, err := finance.NewPaymentBatch(
		finance.BatchTarget{RentalID: &rentalID},
		finance.Payer{PatientID: &patientID},
		valueobject.NewMoneyTNDFromFloat(total),
		"",
	)
	require.NoError(t, err)
	return batch
}

func cashPayment(amount float64) finance.PaymentRecord {
	return finance.PaymentRecord{
		Method:         finance.MethodEspeces,
		Classification: finance.ClassificationPrincipale,
		Amount:         decimal.NewFromFloat(amount),
	}
}

func pendingCNAMPayment(amount float64, bondID uuid.UUID) finance.PaymentRecord {
	return finance.PaymentRecord{
		Method:         finance.MethodCNAM,
		Classification: finance.ClassificationPrincipale,
		Amount:         decimal.NewFromFloat(amount),
		BondID:         &bondID,
		CNAMPending:    true,
	}
}

func TestGormPaymentBatchRepository_FindByID(t *testing.T) {
	repo := NewGormPaymentBatchRepository(setupTestDB(t))
	ctx := context.Background()

	t.Run("returns nil for unknown id", func(t *testing.T) {
		batch, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, batch)
	})

	t.Run("round trips a batch with its records", func(t *testing.T) {
		batch := newRentalBatch(t, uuid.New(), uuid.New(), 250)
		require.NoError(t, batch.AddRecords([]finance.PaymentRecord{cashPayment(100)}))
		require.NoError(t, repo.Save(ctx, batch))

		found, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		assert.Equal(t, batch.ID, found.ID)
		assert.Equal(t, finance.BatchStatusPartial, found.Status)
		require.Len(t, found.Records, 1)
		assert.Equal(t, finance.MethodEspeces, found.Records[0].Method)
		assert.True(t, found.PaidAmount.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.RemainingAmount.Equal(decimal.NewFromInt(150)))
	})
}

func TestGormPaymentBatchRepository_FindActiveByTarget(t *testing.T) {
	repo := NewGormPaymentBatchRepository(setupTestDB(t))
	ctx := context.Background()

	rentalID := uuid.New()
	batch := newRentalBatch(t, rentalID, uuid.New(), 100)
	require.NoError(t, repo.Save(ctx, batch))

	t.Run("finds the open batch of the rental", func(t *testing.T) {
		found, err := repo.FindActiveByTarget(ctx, finance.BatchTarget{RentalID: &rentalID})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, batch.ID, found.ID)
	})

	t.Run("ignores other targets", func(t *testing.T) {
		otherID := uuid.New()
		found, err := repo.FindActiveByTarget(ctx, finance.BatchTarget{RentalID: &otherID})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("ignores finalized batches", func(t *testing.T) {
		require.NoError(t, batch.AddRecords([]finance.PaymentRecord{cashPayment(100)}))
		require.NoError(t, batch.Finalize())
		require.NoError(t, repo.Save(ctx, batch))

		found, err := repo.FindActiveByTarget(ctx, finance.BatchTarget{RentalID: &rentalID})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("empty target matches nothing", func(t *testing.T) {
		found, err := repo.FindActiveByTarget(ctx, finance.BatchTarget{})
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormPaymentBatchRepository_FindByTarget(t *testing.T) {
	repo := NewGormPaymentBatchRepository(setupTestDB(t))
	ctx := context.Background()

	rentalID := uuid.New()
	older := newRentalBatch(t, rentalID, uuid.New(), 100)
	newer := newRentalBatch(t, rentalID, uuid.New(), 200)
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	batches, err := repo.FindByTarget(ctx, finance.BatchTarget{RentalID: &rentalID})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, newer.ID, batches[0].ID)
	assert.Equal(t, older.ID, batches[1].ID)
}

func TestGormPaymentBatchRepository_FindPendingCNAMByBond(t *testing.T) {
	repo := NewGormPaymentBatchRepository(setupTestDB(t))
	ctx := context.Background()

	bondID := uuid.New()
	batch := newRentalBatch(t, uuid.New(), uuid.New(), 500)
	require.NoError(t, batch.AddRecords([]finance.PaymentRecord{pendingCNAMPayment(500, bondID)}))
	require.NoError(t, repo.Save(ctx, batch))

	unrelated := newRentalBatch(t, uuid.New(), uuid.New(), 100)
	require.NoError(t, unrelated.AddRecords([]finance.PaymentRecord{cashPayment(50)}))
	require.NoError(t, repo.Save(ctx, unrelated))

	t.Run("finds batches awaiting the bond", func(t *testing.T) {
		matches, err := repo.FindPendingCNAMByBond(ctx, bondID)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, batch.ID, matches[0].ID)
	})

	t.Run("ignores other bonds", func(t *testing.T) {
		matches, err := repo.FindPendingCNAMByBond(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("confirmed records no longer match", func(t *testing.T) {
		batch.ConfirmCNAMRecords(bondID)
		require.NoError(t, repo.Save(ctx, batch))

		matches, err := repo.FindPendingCNAMByBond(ctx, bondID)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestGormPaymentBatchRepository_FindAll(t *testing.T) {
	repo := NewGormPaymentBatchRepository(setupTestDB(t))
	ctx := context.Background()

	patientID := uuid.New()

	open := newRentalBatch(t, uuid.New(), patientID, 100)
	require.NoError(t, repo.Save(ctx, open))

	closed := newRentalBatch(t, uuid.New(), patientID, 100)
	require.NoError(t, closed.AddRecords([]finance.PaymentRecord{cashPayment(100)}))
	require.NoError(t, closed.Finalize())
	require.NoError(t, repo.Save(ctx, closed))

	other := newRentalBatch(t, uuid.New(), uuid.New(), 50)
	require.NoError(t, repo.Save(ctx, other))

	t.Run("filters by payer", func(t *testing.T) {
		batches, total, err := repo.FindAll(ctx, finance.PaymentBatchFilter{PatientID: &patientID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, batches, 2)
	})

	t.Run("filters by finalized", func(t *testing.T) {
		finalized := true
		batches, total, err := repo.FindAll(ctx, finance.PaymentBatchFilter{Finalized: &finalized})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, batches, 1)
		assert.Equal(t, closed.ID, batches[0].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := finance.BatchStatusPending
		_, total, err := repo.FindAll(ctx, finance.PaymentBatchFilter{Status: &status})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("paginates", func(t *testing.T) {
		batches, total, err := repo.FindAll(ctx, finance.PaymentBatchFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, batches, 2)
	})
}
