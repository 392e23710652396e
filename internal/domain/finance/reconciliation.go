package finance

import (
	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Totals is the aggregation of a record list against a target total
type Totals struct {
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsComplete      bool            `json:"is_complete"`
}

// ComputeTotals sums payment records against the target total.
// paid = sum of record amounts; remaining floors at zero (overpayment is
// accepted and reported as remaining = 0, "complete with credit").
func ComputeTotals(records PaymentRecords, total decimal.Decimal) Totals {
	paid := decimal.Zero
	for i := range records {
		paid = paid.Add(records[i].Amount)
	}

	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Totals{
		PaidAmount:      paid,
		RemainingAmount: remaining,
		IsComplete:      paid.GreaterThanOrEqual(total),
	}
}

// GroupByMethod groups records by payment method, preserving insertion order
// within each group. Presentation only, no business rule attached.
func GroupByMethod(records PaymentRecords) map[PaymentMethod][]PaymentRecord {
	grouped := make(map[PaymentMethod][]PaymentRecord)
	for i := range records {
		grouped[records[i].Method] = append(grouped[records[i].Method], records[i])
	}
	return grouped
}

// Classify derives the batch status from its records and target total:
//  1. not complete, nothing paid  -> PENDING
//  2. not complete, partly paid   -> PARTIAL
//  3. complete, no pending CNAM   -> COMPLETED
//  4. complete, pending CNAM left -> COMPLETED_WITH_PENDING_CNAM
func Classify(records PaymentRecords, total decimal.Decimal) BatchStatus {
	totals := ComputeTotals(records, total)

	if !totals.IsComplete {
		if totals.PaidAmount.IsPositive() {
			return BatchStatusPartial
		}
		return BatchStatusPending
	}

	for i := range records {
		if records[i].IsPendingCNAM() {
			return BatchStatusCompletedPendingCNAM
		}
	}

	return BatchStatusCompleted
}

// ReconciliationService combines batch totals with CNAM bond state. The
// cross-aggregate policy lives here; the pure arithmetic lives in the
// package-level functions above, which the aggregate also uses.
type ReconciliationService struct {
	clock shared.Clock
}

// NewReconciliationService creates a reconciliation service
func NewReconciliationService(clock shared.Clock) *ReconciliationService {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	return &ReconciliationService{clock: clock}
}

// ApplyBondApproval confirms pending CNAM records of the batch that reference
// the approved bond, then reconciles. A bond read as expired is stale: its
// records no longer count as funding and the batch falls back to
// PARTIAL/PENDING until a replacement bond is approved (a status outcome,
// not an error).
func (s *ReconciliationService) ApplyBondApproval(batch *PaymentBatch, bond *insurance.CNAMBond) (BatchStatus, error) {
	if batch == nil || bond == nil {
		return "", shared.NewDomainError("INVALID_INPUT", "Paiement ou prise en charge manquant")
	}
	return s.Evaluate(batch, []*insurance.CNAMBond{bond}), nil
}

// Evaluate re-derives the classification of a batch taking its linked bonds
// into account. A CNAM record whose bond reads APPROUVE is confirmed and no
// longer gates completion. A record whose bond reads EXPIRE is stale: the
// insurer will not honour it, so its amount is excluded from the funding
// computation and the batch reports the uncovered balance. An unknown or
// still-pending bond conservatively keeps the batch out of COMPLETED.
func (s *ReconciliationService) Evaluate(batch *PaymentBatch, bonds []*insurance.CNAMBond) BatchStatus {
	now := s.clock.Now()

	byID := make(map[string]*insurance.CNAMBond, len(bonds))
	for _, b := range bonds {
		if b != nil {
			byID[b.ID.String()] = b
		}
	}

	stale := make(map[int]bool)
	for i := range batch.Records {
		rec := &batch.Records[i]
		if !rec.IsPendingCNAM() || rec.BondID == nil {
			continue
		}
		bond, ok := byID[rec.BondID.String()]
		if !ok {
			continue // unknown bond: stays pending
		}
		switch bond.EffectiveStatus(now) {
		case insurance.BondStatusApprouve:
			rec.ConfirmCNAM()
		case insurance.BondStatusExpire:
			stale[i] = true
		}
	}

	batch.Reconcile()

	if len(stale) > 0 {
		funded := make(PaymentRecords, 0, len(batch.Records)-len(stale))
		for i := range batch.Records {
			if !stale[i] {
				funded = append(funded, batch.Records[i])
			}
		}
		totals := ComputeTotals(funded, batch.TotalAmount)
		batch.PaidAmount = totals.PaidAmount
		batch.RemainingAmount = totals.RemainingAmount
		batch.Status = Classify(funded, batch.TotalAmount)
	}

	return batch.Status
}
