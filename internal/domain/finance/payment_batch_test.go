package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/domain/shared/valueobject"
)

func newTestBatch(t *testing.T, total float64) *PaymentBatch {
	t.Helper()
	rentalID := uuid.New()
	patientID := uuid.New()
	batch, err := NewPaymentBatch(
		BatchTarget{RentalID: &rentalID},
		Payer{PatientID: &patientID},
		valueobject.NewMoneyTNDFromFloat(total),
		"",
	)
	require.NoError(t, err)
	return batch
}

func cashRecord(amount float64) PaymentRecord {
	return PaymentRecord{
		Method:         MethodEspeces,
		Classification: ClassificationPrincipale,
		Amount:         decimal.NewFromFloat(amount),
	}
}

func cnamRecord(amount float64, bondID uuid.UUID) PaymentRecord {
	return PaymentRecord{
		Method:         MethodCNAM,
		Classification: ClassificationPrincipale,
		Amount:         decimal.NewFromFloat(amount),
		BondID:         &bondID,
		CNAMPending:    true,
	}
}

func TestNewPaymentBatch(t *testing.T) {
	t.Run("starts pending with full remaining", func(t *testing.T) {
		batch := newTestBatch(t, 600)
		assert.Equal(t, BatchStatusPending, batch.Status)
		assert.True(t, batch.RemainingAmount.Equal(decimal.NewFromInt(600)))
		assert.False(t, batch.Finalized)
		assert.Len(t, batch.GetDomainEvents(), 1)
	})

	t.Run("rejects target with no reference", func(t *testing.T) {
		patientID := uuid.New()
		_, err := NewPaymentBatch(BatchTarget{}, Payer{PatientID: &patientID}, valueobject.NewMoneyTNDFromFloat(100), "")
		assert.Error(t, err)
	})

	t.Run("rejects target with two references", func(t *testing.T) {
		rentalID, saleID, patientID := uuid.New(), uuid.New(), uuid.New()
		_, err := NewPaymentBatch(
			BatchTarget{RentalID: &rentalID, SaleID: &saleID},
			Payer{PatientID: &patientID},
			valueobject.NewMoneyTNDFromFloat(100), "")
		assert.Error(t, err)
	})

	t.Run("rejects payer with both references", func(t *testing.T) {
		rentalID, patientID, companyID := uuid.New(), uuid.New(), uuid.New()
		_, err := NewPaymentBatch(
			BatchTarget{RentalID: &rentalID},
			Payer{PatientID: &patientID, CompanyID: &companyID},
			valueobject.NewMoneyTNDFromFloat(100), "")
		assert.Error(t, err)
	})
}

func TestPaymentBatchFullCashPayment(t *testing.T) {
	batch := newTestBatch(t, 600)

	require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(600)}))

	assert.Equal(t, BatchStatusCompleted, batch.Status)
	assert.True(t, batch.PaidAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, batch.RemainingAmount.IsZero())
	require.NoError(t, batch.Finalize())
	assert.True(t, batch.Finalized)
	assert.NotNil(t, batch.FinalizedAt)
}

func TestPaymentBatchPartialThenResume(t *testing.T) {
	batch := newTestBatch(t, 600)

	require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(200)}))
	assert.Equal(t, BatchStatusPartial, batch.Status)
	assert.True(t, batch.RemainingAmount.Equal(decimal.NewFromInt(400)))

	// save and continue later keeps the batch open
	require.NoError(t, batch.SavePartial())
	assert.False(t, batch.Finalized)

	err := batch.Finalize()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INCOMPLETE_PAYMENT", domainErr.Code)

	// resume: the remaining amount arrives by check
	require.NoError(t, batch.AddRecords([]PaymentRecord{{
		Method:         MethodCheque,
		Classification: ClassificationComplement,
		Amount:         decimal.NewFromInt(400),
		CheckNumber:    "CHQ-778",
	}}))
	assert.Equal(t, BatchStatusCompleted, batch.Status)
	require.NoError(t, batch.Finalize())
}

func TestPaymentBatchPendingCNAM(t *testing.T) {
	bondID := uuid.New()
	batch := newTestBatch(t, 1000)

	require.NoError(t, batch.AddRecords([]PaymentRecord{
		cashRecord(300),
		cnamRecord(700, bondID),
	}))

	// financially complete but gated on insurer approval
	assert.Equal(t, BatchStatusCompletedPendingCNAM, batch.Status)
	assert.True(t, batch.HasPendingCNAM())
	assert.True(t, batch.RemainingAmount.IsZero())

	// a gated batch can still be finalized: the money side is settled
	require.NoError(t, batch.Finalize())

	confirmed := batch.ConfirmCNAMRecords(bondID)
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, BatchStatusCompleted, batch.Status)
	assert.False(t, batch.HasPendingCNAM())

	// confirming again is a no-op
	assert.Zero(t, batch.ConfirmCNAMRecords(bondID))
}

func TestPaymentBatchOverpayment(t *testing.T) {
	batch := newTestBatch(t, 500)

	require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(650)}))

	assert.Equal(t, BatchStatusCompleted, batch.Status)
	assert.True(t, batch.PaidAmount.Equal(decimal.NewFromInt(650)))
	assert.True(t, batch.RemainingAmount.IsZero())
}

func TestPaymentBatchRejectsInvalidRecordsAtomically(t *testing.T) {
	batch := newTestBatch(t, 500)

	err := batch.AddRecords([]PaymentRecord{
		cashRecord(100),
		{Method: MethodCheque, Classification: ClassificationPrincipale, Amount: decimal.NewFromInt(200)}, // missing check number
	})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// nothing was accepted
	assert.Empty(t, batch.Records)
	assert.Equal(t, BatchStatusPending, batch.Status)
}

func TestPaymentBatchFinalizedIsClosed(t *testing.T) {
	batch := newTestBatch(t, 100)
	require.NoError(t, batch.AddRecords([]PaymentRecord{cashRecord(100)}))
	require.NoError(t, batch.Finalize())

	assert.Error(t, batch.AddRecords([]PaymentRecord{cashRecord(10)}))
	assert.Error(t, batch.Finalize())
	assert.Error(t, batch.SavePartial())
}

func TestPaymentBatchCompletedEventCarriesPendingFlag(t *testing.T) {
	bondID := uuid.New()
	batch := newTestBatch(t, 400)
	batch.ClearDomainEvents()

	require.NoError(t, batch.AddRecords([]PaymentRecord{cnamRecord(400, bondID)}))

	var completed *PaymentBatchCompletedEvent
	for _, ev := range batch.GetDomainEvents() {
		if e, ok := ev.(*PaymentBatchCompletedEvent); ok {
			completed = e
		}
	}
	require.NotNil(t, completed)
	assert.True(t, completed.PendingCNAM)
}

func TestPaymentRecordsJSONRoundTrip(t *testing.T) {
	bondID := uuid.New()
	due := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	records := PaymentRecords{
		{ID: uuid.New(), Method: MethodTraite, Classification: ClassificationGarantie, Amount: decimal.NewFromFloat(120.500), PaidAt: due, DraftDueDate: &due},
		{ID: uuid.New(), Method: MethodCNAM, Classification: ClassificationPrincipale, Amount: decimal.NewFromInt(300), PaidAt: due, BondID: &bondID, CNAMPending: true},
	}

	value, err := records.Value()
	require.NoError(t, err)

	var decoded PaymentRecords
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 2)
	assert.True(t, decoded[0].Amount.Equal(records[0].Amount))
	assert.True(t, decoded[1].IsPendingCNAM())
	assert.Equal(t, bondID, *decoded[1].BondID)
}
