package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/insurance"
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

func (r *fakeBatchRepo) FindByTarget(_ context.Context, target finance.BatchTarget) ([]finance.PaymentBatch, error) {
	var out []finance.PaymentBatch
	for _, b := range r.batches {
		if sameRef(b.RentalID, target.RentalID) && sameRef(b.SaleID, target.SaleID) && sameRef(b.DiagnosticID, target.DiagnosticID) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindPendingCNAMByBond(_ context.Context, bondID uuid.UUID) ([]finance.PaymentBatch, error) {
	var out []finance.PaymentBatch
	for _, b := range r.batches {
		for i := range b.Records {
			rec := b.Records[i]
			if rec.IsPendingCNAM() && rec.BondID != nil && *rec.BondID == bondID {
				out = append(out, *b)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindAll(_ context.Context, _ finance.PaymentBatchFilter) ([]finance.PaymentBatch, int64, error) {
	var out []finance.PaymentBatch
	for _, b := range r.batches {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
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

type fakeBondRepo struct {
	bonds map[uuid.UUID]*insurance.CNAMBond
}

func newFakeBondRepo() *fakeBondRepo {
	return &fakeBondRepo{bonds: make(map[uuid.UUID]*insurance.CNAMBond)}
}

func (r *fakeBondRepo) FindByID(_ context.Context, id uuid.UUID) (*insurance.CNAMBond, error) {
	return r.bonds[id], nil
}

func (r *fakeBondRepo) FindByRental(_ context.Context, _ uuid.UUID) ([]insurance.CNAMBond, error) {
	return nil, nil
}

func (r *fakeBondRepo) FindApproved(_ context.Context) ([]insurance.CNAMBond, error) {
	return nil, nil
}

func (r *fakeBondRepo) FindExpiringBefore(_ context.Context, _ time.Time) ([]insurance.CNAMBond, error) {
	return nil, nil
}

func (r *fakeBondRepo) FindAll(_ context.Context, _ insurance.BondFilter) ([]insurance.CNAMBond, int64, error) {
	return nil, 0, nil
}

func (r *fakeBondRepo) Save(_ context.Context, bond *insurance.CNAMBond) error {
	r.bonds[bond.ID] = bond
	return nil
}

type fakeIdempotencyStore struct {
	keys map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.keys[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func cashRequest(amount float64) PaymentRecordRequest {
	return PaymentRecordRequest{
		Method:         string(finance.MethodEspeces),
		Classification: string(finance.ClassificationPrincipale),
		Amount:         amount,
	}
}

func rentalRequest(records ...PaymentRecordRequest) CreateBatchRequest {
	rentalID := uuid.New()
	patientID := uuid.New()
	return CreateBatchRequest{
		RentalID:    &rentalID,
		PatientID:   &patientID,
		TotalAmount: 300,
		Records:     records,
	}
}

func TestCreateBatchFullPayment(t *testing.T) {
	repo := newFakeBatchRepo()
	publisher := &capturingPublisher{}
	svc := NewPaymentService(repo, nil, WithEventPublisher(publisher))

	resp, err := svc.CreateBatch(context.Background(), rentalRequest(cashRequest(300)))
	require.NoError(t, err)

	assert.Equal(t, finance.BatchStatusCompleted.String(), resp.Status)
	assert.True(t, resp.RemainingAmount.IsZero())
	assert.False(t, resp.Resumed)
	assert.Len(t, resp.Records, 1)

	completed := false
	for _, e := range publisher.events {
		if e.EventType() == finance.EventTypePaymentBatchCompleted {
			completed = true
		}
	}
	assert.True(t, completed)
}

func TestCreateBatchRequiresExactlyOneTarget(t *testing.T) {
	svc := NewPaymentService(newFakeBatchRepo(), nil)

	rentalID := uuid.New()
	saleID := uuid.New()
	patientID := uuid.New()
	_, err := svc.CreateBatch(context.Background(), CreateBatchRequest{
		RentalID:    &rentalID,
		SaleID:      &saleID,
		PatientID:   &patientID,
		TotalAmount: 100,
	})
	require.Error(t, err)

	_, err = svc.CreateBatch(context.Background(), CreateBatchRequest{
		PatientID:   &patientID,
		TotalAmount: 100,
	})
	require.Error(t, err)
}

func TestCreateBatchResumesOpenBatch(t *testing.T) {
	repo := newFakeBatchRepo()
	svc := NewPaymentService(repo, nil)

	req := rentalRequest(cashRequest(100))
	first, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, finance.BatchStatusPartial.String(), first.Status)

	req.Records = []PaymentRecordRequest{cashRequest(200)}
	second, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Resumed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, finance.BatchStatusCompleted.String(), second.Status)
	assert.Len(t, second.Records, 2)
	assert.Len(t, repo.batches, 1)
}

func TestCreateBatchFinalizedBatchNotResumed(t *testing.T) {
	repo := newFakeBatchRepo()
	svc := NewPaymentService(repo, nil)

	req := rentalRequest(cashRequest(300))
	first, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Finalize(context.Background(), first.ID)
	require.NoError(t, err)

	second, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.Resumed)
	assert.Len(t, repo.batches, 2)
}

func TestCreateBatchIdempotencyKeyBlocksDuplicate(t *testing.T) {
	repo := newFakeBatchRepo()
	store := newFakeIdempotencyStore()
	svc := NewPaymentService(repo, nil,
		WithIdempotencyStore(store, shared.DefaultIdempotencyConfig()))

	req := rentalRequest(cashRequest(100))
	req.IdempotencyKey = "wizard-42"
	first, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Records, 1, "duplicate submission must not append records")
}

func TestCreateBatchIdempotencyStoreOutageAccepts(t *testing.T) {
	repo := newFakeBatchRepo()
	store := newFakeIdempotencyStore()
	store.err = errors.New("redis down")
	svc := NewPaymentService(repo, nil,
		WithIdempotencyStore(store, shared.DefaultIdempotencyConfig()))

	req := rentalRequest(cashRequest(300))
	req.IdempotencyKey = "wizard-43"
	resp, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, finance.BatchStatusCompleted.String(), resp.Status)
}

func TestSavePartialKeepsBatchResumable(t *testing.T) {
	repo := newFakeBatchRepo()
	svc := NewPaymentService(repo, nil)

	created, err := svc.CreateBatch(context.Background(), rentalRequest(cashRequest(120)))
	require.NoError(t, err)

	saved, err := svc.SavePartial(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.BatchStatusPartial.String(), saved.Status)
	assert.False(t, saved.Finalized)

	resumed, err := svc.AddRecords(context.Background(), created.ID, []PaymentRecordRequest{cashRequest(180)})
	require.NoError(t, err)
	assert.Equal(t, finance.BatchStatusCompleted.String(), resumed.Status)
}

func TestFinalizeIncompleteBatchRejected(t *testing.T) {
	repo := newFakeBatchRepo()
	svc := NewPaymentService(repo, nil)

	created, err := svc.CreateBatch(context.Background(), rentalRequest(cashRequest(100)))
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), created.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INCOMPLETE_PAYMENT", domainErr.Code)
}

func TestFinalizePendingCNAMBatch(t *testing.T) {
	repo := newFakeBatchRepo()
	svc := NewPaymentService(repo, nil)

	bondID := uuid.New()
	req := rentalRequest(cashRequest(100), PaymentRecordRequest{
		Method:         string(finance.MethodCNAM),
		Classification: string(finance.ClassificationPrincipale),
		Amount:         200,
		BondID:         &bondID,
	})
	created, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, finance.BatchStatusCompletedPendingCNAM.String(), created.Status)

	finalized, err := svc.Finalize(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, finalized.Finalized)
	assert.Equal(t, finance.BatchStatusCompletedPendingCNAM.String(), finalized.Status)
}

func TestGetBatchSummary(t *testing.T) {
	repo := newFakeBatchRepo()
	svc := NewPaymentService(repo, nil)

	bondID := uuid.New()
	req := rentalRequest(
		PaymentRecordRequest{
			Method:         string(finance.MethodCNAM),
			Classification: string(finance.ClassificationPrincipale),
			Amount:         150,
			BondID:         &bondID,
		},
		cashRequest(100),
		cashRequest(50),
	)
	created, err := svc.CreateBatch(context.Background(), req)
	require.NoError(t, err)

	summary, err := svc.GetBatchSummary(context.Background(), created.ID)
	require.NoError(t, err)

	assert.True(t, summary.PendingCNAM)
	require.Len(t, summary.ByMethod, 2)
	assert.Equal(t, finance.MethodEspeces.String(), summary.ByMethod[0].Method)
	assert.Equal(t, 2, summary.ByMethod[0].Count)
	assert.True(t, summary.ByMethod[0].Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, finance.MethodCNAM.String(), summary.ByMethod[1].Method)
	assert.Equal(t, 1, summary.ByMethod[1].Count)
}

func cnamRequest(amount float64, bondID uuid.UUID) PaymentRecordRequest {
	return PaymentRecordRequest{
		Method:         string(finance.MethodCNAM),
		Classification: string(finance.ClassificationPrincipale),
		Amount:         amount,
		BondID:         &bondID,
	}
}

func approvedBond(t *testing.T, approvedAt time.Time, endDate time.Time) *insurance.CNAMBond {
	t.Helper()
	rentalID := uuid.New()
	bond, err := insurance.NewCNAMBond(
		insurance.BondTypeCPAP,
		"BON-900",
		"DOS-900",
		decimal.NewFromInt(700),
		endDate.AddDate(0, -6, 0),
		endDate,
		&rentalID,
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, bond.Approve(shared.NewFixedClock(approvedAt)))
	return bond
}

func TestGetBatchBondAwareStatus(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	newService := func(bondRepo *fakeBondRepo) *PaymentService {
		return NewPaymentService(newFakeBatchRepo(), nil,
			WithBondRepository(bondRepo),
			WithReconciliationService(finance.NewReconciliationService(shared.NewFixedClock(now))))
	}

	makeBatch := func(t *testing.T, svc *PaymentService, bondID uuid.UUID) uuid.UUID {
		t.Helper()
		req := rentalRequest(cashRequest(300), cnamRequest(700, bondID))
		req.TotalAmount = 1000
		created, err := svc.CreateBatch(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, finance.BatchStatusCompletedPendingCNAM.String(), created.Status)
		return created.ID
	}

	t.Run("approved bond settles on read", func(t *testing.T) {
		bondRepo := newFakeBondRepo()
		bond := approvedBond(t, now, now.AddDate(0, 3, 0))
		require.NoError(t, bondRepo.Save(context.Background(), bond))
		svc := newService(bondRepo)
		batchID := makeBatch(t, svc, bond.ID)

		resp, err := svc.GetBatch(context.Background(), batchID)
		require.NoError(t, err)
		assert.Equal(t, finance.BatchStatusCompleted.String(), resp.Status)

		summary, err := svc.GetBatchSummary(context.Background(), batchID)
		require.NoError(t, err)
		assert.False(t, summary.PendingCNAM)
	})

	t.Run("expired bond drops the read to PARTIAL", func(t *testing.T) {
		bondRepo := newFakeBondRepo()
		bond := approvedBond(t, now.AddDate(-1, 0, 0), now.AddDate(0, 0, -10))
		require.NoError(t, bondRepo.Save(context.Background(), bond))
		svc := newService(bondRepo)
		batchID := makeBatch(t, svc, bond.ID)

		resp, err := svc.GetBatch(context.Background(), batchID)
		require.NoError(t, err)
		assert.Equal(t, finance.BatchStatusPartial.String(), resp.Status)
		assert.True(t, resp.RemainingAmount.Equal(decimal.NewFromInt(700)))
	})

	t.Run("unknown bond keeps the stored status", func(t *testing.T) {
		svc := newService(newFakeBondRepo())
		batchID := makeBatch(t, svc, uuid.New())

		resp, err := svc.GetBatch(context.Background(), batchID)
		require.NoError(t, err)
		assert.Equal(t, finance.BatchStatusCompletedPendingCNAM.String(), resp.Status)
	})
}

func TestGetBatchNotFound(t *testing.T) {
	svc := NewPaymentService(newFakeBatchRepo(), nil)

	_, err := svc.GetBatch(context.Background(), uuid.New())
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
