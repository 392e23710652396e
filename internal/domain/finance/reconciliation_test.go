package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/shared"
)

func TestComputeTotals(t *testing.T) {
	total := decimal.NewFromInt(600)

	t.Run("empty records", func(t *testing.T) {
		totals := ComputeTotals(nil, total)
		assert.True(t, totals.PaidAmount.IsZero())
		assert.True(t, totals.RemainingAmount.Equal(total))
		assert.False(t, totals.IsComplete)
	})

	t.Run("paid is the sum of all records", func(t *testing.T) {
		totals := ComputeTotals(PaymentRecords{cashRecord(150), cashRecord(250.500)}, total)
		assert.True(t, totals.PaidAmount.Equal(decimal.NewFromFloat(400.500)))
		assert.True(t, totals.RemainingAmount.Equal(decimal.NewFromFloat(199.500)))
	})

	t.Run("remaining floors at zero on overpayment", func(t *testing.T) {
		totals := ComputeTotals(PaymentRecords{cashRecord(700)}, total)
		assert.True(t, totals.RemainingAmount.IsZero())
		assert.True(t, totals.IsComplete)
	})

	t.Run("zero total is complete from the start", func(t *testing.T) {
		totals := ComputeTotals(nil, decimal.Zero)
		assert.True(t, totals.IsComplete)
	})
}

func TestClassify(t *testing.T) {
	total := decimal.NewFromInt(600)
	bondID := uuid.New()

	assert.Equal(t, BatchStatusPending, Classify(nil, total))
	assert.Equal(t, BatchStatusPartial, Classify(PaymentRecords{cashRecord(100)}, total))
	assert.Equal(t, BatchStatusCompleted, Classify(PaymentRecords{cashRecord(600)}, total))
	assert.Equal(t, BatchStatusCompletedPendingCNAM, Classify(PaymentRecords{cashRecord(100), cnamRecord(500, bondID)}, total))

	// a settled CNAM record no longer gates
	settled := cnamRecord(600, bondID)
	settled.CNAMPending = false
	assert.Equal(t, BatchStatusCompleted, Classify(PaymentRecords{settled}, total))

	// a pending CNAM record on an incomplete batch stays PARTIAL
	assert.Equal(t, BatchStatusPartial, Classify(PaymentRecords{cnamRecord(100, bondID)}, total))
}

func TestGroupByMethod(t *testing.T) {
	records := PaymentRecords{cashRecord(50), cnamRecord(400, uuid.New()), cashRecord(25)}

	grouped := GroupByMethod(records)
	require.Len(t, grouped[MethodEspeces], 2)
	require.Len(t, grouped[MethodCNAM], 1)
	assert.True(t, grouped[MethodEspeces][0].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, grouped[MethodEspeces][1].Amount.Equal(decimal.NewFromInt(25)))
}

func newApprovedBond(t *testing.T, clock shared.Clock, endDate time.Time) *insurance.CNAMBond {
	t.Helper()
	rentalID := uuid.New()
	bond, err := insurance.NewCNAMBond(
		insurance.BondTypeCPAP,
		"BON-123",
		"DOS-456",
		decimal.NewFromInt(700),
		endDate.AddDate(0, -6, 0),
		endDate,
		&rentalID,
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, bond.Approve(clock))
	return bond
}

func TestApplyBondApproval(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := shared.NewFixedClock(now)
	service := NewReconciliationService(clock)

	t.Run("approval lifts the CNAM gate", func(t *testing.T) {
		bond := newApprovedBond(t, clock, now.AddDate(0, 3, 0))
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(300), cnamRecord(700, bond.ID)}))
		require.Equal(t, BatchStatusCompletedPendingCNAM, batch.Status)

		status, err := service.ApplyBondApproval(batch, bond)
		require.NoError(t, err)
		assert.Equal(t, BatchStatusCompleted, status)
	})

	t.Run("expired bond drops the batch to PARTIAL", func(t *testing.T) {
		// approved in the past, validity window already elapsed
		past := shared.NewFixedClock(now.AddDate(-1, 0, 0))
		bond := newApprovedBond(t, past, now.AddDate(0, 0, -10))
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(300), cnamRecord(700, bond.ID)}))

		status, err := service.ApplyBondApproval(batch, bond)
		require.NoError(t, err)
		assert.Equal(t, BatchStatusPartial, status)
		assert.True(t, batch.HasPendingCNAM())
		assert.True(t, batch.PaidAmount.Equal(decimal.NewFromInt(300)))
		assert.True(t, batch.RemainingAmount.Equal(decimal.NewFromInt(700)))
	})

	t.Run("nil inputs rejected", func(t *testing.T) {
		_, err := service.ApplyBondApproval(nil, nil)
		assert.Error(t, err)
	})
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := shared.NewFixedClock(now)
	service := NewReconciliationService(clock)

	t.Run("approved bonds settle their records", func(t *testing.T) {
		bond := newApprovedBond(t, clock, now.AddDate(0, 3, 0))
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(300), cnamRecord(700, bond.ID)}))

		status := service.Evaluate(batch, []*insurance.CNAMBond{bond})
		assert.Equal(t, BatchStatusCompleted, status)
	})

	t.Run("expired bond excludes its record from funding", func(t *testing.T) {
		past := shared.NewFixedClock(now.AddDate(-1, 0, 0))
		bond := newApprovedBond(t, past, now.AddDate(0, 0, -10))
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(300), cnamRecord(700, bond.ID)}))

		status := service.Evaluate(batch, []*insurance.CNAMBond{bond})
		assert.Equal(t, BatchStatusPartial, status)
		assert.True(t, batch.RemainingAmount.Equal(decimal.NewFromInt(700)))
	})

	t.Run("expired bond with no cash at all reports PENDING", func(t *testing.T) {
		past := shared.NewFixedClock(now.AddDate(-1, 0, 0))
		bond := newApprovedBond(t, past, now.AddDate(0, 0, -10))
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cnamRecord(1000, bond.ID)}))

		status := service.Evaluate(batch, []*insurance.CNAMBond{bond})
		assert.Equal(t, BatchStatusPending, status)
	})

	t.Run("unknown bond keeps the record pending", func(t *testing.T) {
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(300), cnamRecord(700, uuid.New())}))

		status := service.Evaluate(batch, nil)
		assert.Equal(t, BatchStatusCompletedPendingCNAM, status)
	})

	t.Run("evaluation is idempotent", func(t *testing.T) {
		bond := newApprovedBond(t, clock, now.AddDate(0, 3, 0))
		batch := newTestBatch(t, 1000)
		require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(300), cnamRecord(700, bond.ID)}))

		first := service.Evaluate(batch, []*insurance.CNAMBond{bond})
		second := service.Evaluate(batch, []*insurance.CNAMBond{bond})
		assert.Equal(t, first, second)
	})
}
