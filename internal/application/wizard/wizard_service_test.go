package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfinance "github.com/medirent/backend/internal/application/finance"
	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/shared"
)

type fakeBatchRepo struct {
	batches map[uuid.UUID]*finance.PaymentBatch
	saveErr error
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]*finance.PaymentBatch)}
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*finance.PaymentBatch, error) {
	return r.batches[id], nil
}

func (r *fakeBatchRepo) FindActiveByTarget(_ context.Context, target finance.BatchTarget) (*finance.PaymentBatch, error) {
	for _, b := range r.batches {
		if !b.Finalized && sameRef(b.RentalID, target.RentalID) && sameRef(b.SaleID, target.SaleID) && sameRef(b.DiagnosticID, target.DiagnosticID) {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBatchRepo) FindByTarget(_ context.Context, _ finance.BatchTarget) ([]finance.PaymentBatch, error) {
	return nil, nil
}

func (r *fakeBatchRepo) FindPendingCNAMByBond(_ context.Context, _ uuid.UUID) ([]finance.PaymentBatch, error) {
	return nil, nil
}

func (r *fakeBatchRepo) FindAll(_ context.Context, _ finance.PaymentBatchFilter) ([]finance.PaymentBatch, int64, error) {
	return nil, 0, nil
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *finance.PaymentBatch) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.batches[batch.ID] = batch
	return nil
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func newTestCoordinator(repo *fakeBatchRepo, clock shared.Clock) *Coordinator {
	return NewCoordinator(appfinance.NewPaymentService(repo, nil), clock, nil)
}

func clientStep() ClientStep {
	patientID := uuid.New()
	return ClientStep{PatientID: &patientID}
}

func productsStep(total float64) ProductsStep {
	rentalID := uuid.New()
	return ProductsStep{RentalID: &rentalID, TotalAmount: total}
}

func cashRecord(amount float64) appfinance.PaymentRecordRequest {
	return appfinance.PaymentRecordRequest{
		Method:         string(finance.MethodEspeces),
		Classification: string(finance.ClassificationPrincipale),
		Amount:         amount,
	}
}

func TestWizardHappyPath(t *testing.T) {
	repo := newFakeBatchRepo()
	coordinator := newTestCoordinator(repo, nil)

	session := coordinator.Start()
	assert.Equal(t, StepClient, session.Step)

	session, err := coordinator.SubmitClient(session.ID, clientStep())
	require.NoError(t, err)
	assert.Equal(t, StepProducts, session.Step)

	session, err = coordinator.SubmitProducts(session.ID, productsStep(250))
	require.NoError(t, err)
	assert.Equal(t, StepPayment, session.Step)

	session, batch, err := coordinator.Complete(context.Background(), session.ID,
		[]appfinance.PaymentRecordRequest{cashRecord(250)}, true)
	require.NoError(t, err)

	assert.Equal(t, StepDone, session.Step)
	require.NotNil(t, session.BatchID)
	assert.Equal(t, batch.ID, *session.BatchID)
	assert.True(t, batch.Finalized)
	assert.Equal(t, finance.BatchStatusCompleted.String(), batch.Status)
	assert.Len(t, repo.batches, 1)
}

func TestWizardStepOrderEnforced(t *testing.T) {
	coordinator := newTestCoordinator(newFakeBatchRepo(), nil)
	session := coordinator.Start()

	_, err := coordinator.SubmitProducts(session.ID, productsStep(100))
	requireCode(t, err, "STEP_ORDER")

	_, _, err = coordinator.Complete(context.Background(), session.ID, nil, true)
	requireCode(t, err, "STEP_ORDER")
}

func TestWizardPayerValidation(t *testing.T) {
	coordinator := newTestCoordinator(newFakeBatchRepo(), nil)
	session := coordinator.Start()

	_, err := coordinator.SubmitClient(session.ID, ClientStep{})
	requireCode(t, err, "INVALID_PAYER")

	patientID := uuid.New()
	companyID := uuid.New()
	_, err = coordinator.SubmitClient(session.ID, ClientStep{PatientID: &patientID, CompanyID: &companyID})
	requireCode(t, err, "INVALID_PAYER")
}

func TestWizardProductsValidation(t *testing.T) {
	coordinator := newTestCoordinator(newFakeBatchRepo(), nil)
	session := coordinator.Start()
	_, err := coordinator.SubmitClient(session.ID, clientStep())
	require.NoError(t, err)

	_, err = coordinator.SubmitProducts(session.ID, ProductsStep{TotalAmount: 100})
	requireCode(t, err, "INVALID_TARGET")

	products := productsStep(0)
	_, err = coordinator.SubmitProducts(session.ID, products)
	requireCode(t, err, "INVALID_AMOUNT")
}

func TestWizardSavePartialLeavesBatchOpen(t *testing.T) {
	repo := newFakeBatchRepo()
	coordinator := newTestCoordinator(repo, nil)

	session := coordinator.Start()
	_, err := coordinator.SubmitClient(session.ID, clientStep())
	require.NoError(t, err)
	_, err = coordinator.SubmitProducts(session.ID, productsStep(300))
	require.NoError(t, err)

	session, batch, err := coordinator.Complete(context.Background(), session.ID,
		[]appfinance.PaymentRecordRequest{cashRecord(100)}, false)
	require.NoError(t, err)

	assert.Equal(t, StepDone, session.Step)
	assert.False(t, batch.Finalized)
	assert.Equal(t, finance.BatchStatusPartial.String(), batch.Status)
}

func TestWizardPersistenceFailurePreservesSession(t *testing.T) {
	repo := newFakeBatchRepo()
	repo.saveErr = errors.New("database unavailable")
	coordinator := newTestCoordinator(repo, nil)

	session := coordinator.Start()
	_, err := coordinator.SubmitClient(session.ID, clientStep())
	require.NoError(t, err)
	_, err = coordinator.SubmitProducts(session.ID, productsStep(200))
	require.NoError(t, err)

	_, _, err = coordinator.Complete(context.Background(), session.ID,
		[]appfinance.PaymentRecordRequest{cashRecord(200)}, true)
	require.Error(t, err)

	// the session survives so the user can resubmit without re-entering data
	kept, err := coordinator.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, StepPayment, kept.Step)
	require.NotNil(t, kept.Products)

	repo.saveErr = nil
	_, batch, err := coordinator.Complete(context.Background(), session.ID,
		[]appfinance.PaymentRecordRequest{cashRecord(200)}, true)
	require.NoError(t, err)
	assert.True(t, batch.Finalized)
}

func TestWizardClosedSessionRejectsMutations(t *testing.T) {
	coordinator := newTestCoordinator(newFakeBatchRepo(), nil)

	session := coordinator.Start()
	_, err := coordinator.SubmitClient(session.ID, clientStep())
	require.NoError(t, err)
	_, err = coordinator.SubmitProducts(session.ID, productsStep(50))
	require.NoError(t, err)
	_, _, err = coordinator.Complete(context.Background(), session.ID,
		[]appfinance.PaymentRecordRequest{cashRecord(50)}, true)
	require.NoError(t, err)

	_, err = coordinator.SubmitClient(session.ID, clientStep())
	requireCode(t, err, "SESSION_CLOSED")

	_, _, err = coordinator.Complete(context.Background(), session.ID, nil, true)
	requireCode(t, err, "SESSION_CLOSED")
}

func TestWizardCancelDropsSession(t *testing.T) {
	coordinator := newTestCoordinator(newFakeBatchRepo(), nil)
	session := coordinator.Start()

	require.NoError(t, coordinator.Cancel(session.ID))

	_, err := coordinator.Get(session.ID)
	requireCode(t, err, "SESSION_NOT_FOUND")

	err = coordinator.Cancel(session.ID)
	requireCode(t, err, "SESSION_NOT_FOUND")
}

type movingClock struct {
	now time.Time
}

func (c *movingClock) Now() time.Time { return c.now }

func TestWizardPurgeDropsStaleSessions(t *testing.T) {
	clock := &movingClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	coordinator := newTestCoordinator(newFakeBatchRepo(), clock)

	stale := coordinator.Start()

	done := coordinator.Start()
	_, err := coordinator.SubmitClient(done.ID, clientStep())
	require.NoError(t, err)
	_, err = coordinator.SubmitProducts(done.ID, productsStep(100))
	require.NoError(t, err)
	_, _, err = coordinator.Complete(context.Background(), done.ID,
		[]appfinance.PaymentRecordRequest{cashRecord(100)}, true)
	require.NoError(t, err)

	clock.now = clock.now.Add(SessionTTL + time.Minute)
	fresh := coordinator.Start()

	dropped := coordinator.Purge()
	assert.Equal(t, 2, dropped)

	_, err = coordinator.Get(stale.ID)
	requireCode(t, err, "SESSION_NOT_FOUND")
	_, err = coordinator.Get(done.ID)
	requireCode(t, err, "SESSION_NOT_FOUND")
	_, err = coordinator.Get(fresh.ID)
	require.NoError(t, err)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
