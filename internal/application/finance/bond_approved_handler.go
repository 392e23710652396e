package finance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/insurance"
	"github.com/medirent/backend/internal/domain/shared"
)

// BondApprovedHandler re-evaluates payment batches gated on a CNAM bond when
// the insurer approves it: pending CNAM records referencing the bond settle
// and COMPLETED_WITH_PENDING_CNAM batches move to COMPLETED.
type BondApprovedHandler struct {
	batchRepo         finance.PaymentBatchRepository
	bondRepo          insurance.BondRepository
	reconciliationSvc *finance.ReconciliationService
	logger            *zap.Logger
}

// NewBondApprovedHandler creates a handler for bond approved events
func NewBondApprovedHandler(
	batchRepo finance.PaymentBatchRepository,
	bondRepo insurance.BondRepository,
	reconciliationSvc *finance.ReconciliationService,
	logger *zap.Logger,
) *BondApprovedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BondApprovedHandler{
		batchRepo:         batchRepo,
		bondRepo:          bondRepo,
		reconciliationSvc: reconciliationSvc,
		logger:            logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BondApprovedHandler) EventTypes() []string {
	return []string{insurance.EventTypeBondApproved}
}

// Handle settles the pending CNAM records of every open batch referencing the
// approved bond. Confirming an already-settled record is a no-op, so redelivery
// is harmless.
func (h *BondApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approved, ok := event.(*insurance.BondApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			insurance.EventTypeBondApproved, event.EventType())
	}

	bond, err := h.bondRepo.FindByID(ctx, approved.BondID)
	if err != nil {
		return fmt.Errorf("failed to load bond %s: %w", approved.BondID, err)
	}
	if bond == nil {
		h.logger.Warn("bond approved event for unknown bond",
			zap.String("bond_id", approved.BondID.String()))
		return nil
	}

	batches, err := h.batchRepo.FindPendingCNAMByBond(ctx, bond.ID)
	if err != nil {
		return fmt.Errorf("failed to find batches pending on bond %s: %w", bond.ID, err)
	}

	for i := range batches {
		batch := &batches[i]
		before := batch.Status

		status, err := h.reconciliationSvc.ApplyBondApproval(batch, bond)
		if err != nil {
			return err
		}
		if status == before {
			continue
		}

		if err := h.batchRepo.Save(ctx, batch); err != nil {
			return fmt.Errorf("failed to save batch %s: %w", batch.ID, err)
		}
		batch.ClearDomainEvents()

		h.logger.Info("payment batch settled on bond approval",
			zap.String("batch_id", batch.ID.String()),
			zap.String("bond_id", bond.ID.String()),
			zap.String("from", before.String()),
			zap.String("to", status.String()))
	}

	return nil
}
