package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appfinance "github.com/medirent/backend/internal/application/finance"
	"github.com/medirent/backend/internal/domain/shared"
)

// Step identifies where a wizard session stands
type Step string

const (
	StepClient   Step = "CLIENT"
	StepProducts Step = "PRODUCTS"
	StepPayment  Step = "PAYMENT"
	StepDone     Step = "DONE"
)

// SessionTTL is how long an untouched session survives before Purge drops it
const SessionTTL = 2 * time.Hour

// ClientStep is the buyer selection of a session
type ClientStep struct {
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
}

// ProductLine is one selected device in the products step
type ProductLine struct {
	DeviceID  uuid.UUID `json:"device_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	UnitPrice float64   `json:"unit_price"`
}

// ProductsStep is the selection and the transaction it will fund
type ProductsStep struct {
	RentalID     *uuid.UUID    `json:"rental_id,omitempty"`
	SaleID       *uuid.UUID    `json:"sale_id,omitempty"`
	DiagnosticID *uuid.UUID    `json:"diagnostic_id,omitempty"`
	Lines        []ProductLine `json:"lines,omitempty"`
	TotalAmount  float64       `json:"total_amount"`
}

// Session is the in-memory state of one wizard run. Nothing is persisted
// until the final complete or save-partial action; abandoning the wizard
// leaves no trace in the store.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	Step      Step          `json:"step"`
	Client    *ClientStep   `json:"client,omitempty"`
	Products  *ProductsStep `json:"products,omitempty"`
	BatchID   *uuid.UUID    `json:"batch_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Coordinator sequences client -> products -> payment. Sessions live in
// process memory only; a restart loses open wizards, which matches the "no
// backend round-trip before the final step" contract.
type Coordinator struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*Session
	paymentSvc *appfinance.PaymentService
	clock      shared.Clock
	logger     *zap.Logger
}

// NewCoordinator creates a wizard coordinator
func NewCoordinator(paymentSvc *appfinance.PaymentService, clock shared.Clock, logger *zap.Logger) *Coordinator {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		sessions:   make(map[uuid.UUID]*Session),
		paymentSvc: paymentSvc,
		clock:      clock,
		logger:     logger,
	}
}

// Start opens a new session at the client step
func (c *Coordinator) Start() *Session {
	now := c.clock.Now()
	session := &Session{
		ID:        uuid.New(),
		Step:      StepClient,
		CreatedAt: now,
		UpdatedAt: now,
	}

	c.mu.Lock()
	c.sessions[session.ID] = session
	c.mu.Unlock()

	return session
}

// Get returns a session by id
func (c *Coordinator) Get(sessionID uuid.UUID) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, shared.NewDomainError("SESSION_NOT_FOUND", "Session d'assistant introuvable ou expirée")
	}
	return session.clone(), nil
}

// SubmitClient records the buyer and advances to the products step
func (c *Coordinator) SubmitClient(sessionID uuid.UUID, client ClientStep) (*Session, error) {
	if (client.PatientID == nil) == (client.CompanyID == nil) {
		return nil, shared.NewDomainError("INVALID_PAYER", "Le paiement doit référencer soit un patient soit une société")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, shared.NewDomainError("SESSION_NOT_FOUND", "Session d'assistant introuvable ou expirée")
	}
	if session.Step == StepDone {
		return nil, shared.NewDomainError("SESSION_CLOSED", "La session d'assistant est déjà terminée")
	}

	session.Client = &client
	// re-submitting the client step resets any later state
	if session.Step == StepClient {
		session.Step = StepProducts
	}
	session.UpdatedAt = c.clock.Now()

	return session.clone(), nil
}

// SubmitProducts records the selection and advances to the payment step
func (c *Coordinator) SubmitProducts(sessionID uuid.UUID, products ProductsStep) (*Session, error) {
	refs := 0
	for _, ref := range []*uuid.UUID{products.RentalID, products.SaleID, products.DiagnosticID} {
		if ref != nil {
			refs++
		}
	}
	if refs != 1 {
		return nil, shared.NewDomainError("INVALID_TARGET", "Le paiement doit référencer exactement une location, une vente ou un diagnostic")
	}
	if products.TotalAmount <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Le montant total doit être strictement positif")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, shared.NewDomainError("SESSION_NOT_FOUND", "Session d'assistant introuvable ou expirée")
	}
	if session.Client == nil {
		return nil, shared.NewDomainError("STEP_ORDER", "L'étape client doit être renseignée d'abord")
	}
	if session.Step == StepDone {
		return nil, shared.NewDomainError("SESSION_CLOSED", "La session d'assistant est déjà terminée")
	}

	session.Products = &products
	session.Step = StepPayment
	session.UpdatedAt = c.clock.Now()

	return session.clone(), nil
}

// Complete runs the final step: the payment batch is created (or resumed) and
// the submitted records reconciled in one shot. On persistence failure the
// session is left intact so the user can resubmit without re-entering data.
func (c *Coordinator) Complete(ctx context.Context, sessionID uuid.UUID, records []appfinance.PaymentRecordRequest, finalize bool) (*Session, *appfinance.BatchResponse, error) {
	session, err := c.paymentReady(sessionID)
	if err != nil {
		return nil, nil, err
	}

	batch, err := c.paymentSvc.CreateBatch(ctx, appfinance.CreateBatchRequest{
		RentalID:     session.Products.RentalID,
		SaleID:       session.Products.SaleID,
		DiagnosticID: session.Products.DiagnosticID,
		PatientID:    session.Client.PatientID,
		CompanyID:    session.Client.CompanyID,
		TotalAmount:  session.Products.TotalAmount,
		Records:      records,
	})
	if err != nil {
		return nil, nil, err
	}

	if finalize {
		batch, err = c.paymentSvc.Finalize(ctx, batch.ID)
		if err != nil {
			return nil, nil, err
		}
	} else if _, err := c.paymentSvc.SavePartial(ctx, batch.ID); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	if current, ok := c.sessions[sessionID]; ok {
		current.Step = StepDone
		current.BatchID = &batch.ID
		current.UpdatedAt = c.clock.Now()
		session = current.clone()
	}
	c.mu.Unlock()

	c.logger.Info("wizard session completed",
		zap.String("session_id", sessionID.String()),
		zap.String("batch_id", batch.ID.String()),
		zap.Bool("finalized", finalize))

	return session, batch, nil
}

// Cancel drops a session without persisting anything
func (c *Coordinator) Cancel(sessionID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[sessionID]; !ok {
		return shared.NewDomainError("SESSION_NOT_FOUND", "Session d'assistant introuvable ou expirée")
	}
	delete(c.sessions, sessionID)
	return nil
}

// Purge drops sessions untouched for longer than SessionTTL, completed ones
// included. The server runs it on a ticker.
func (c *Coordinator) Purge() int {
	cutoff := c.clock.Now().Add(-SessionTTL)

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for id, session := range c.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(c.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (c *Coordinator) paymentReady(sessionID uuid.UUID) (*Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, shared.NewDomainError("SESSION_NOT_FOUND", "Session d'assistant introuvable ou expirée")
	}
	if session.Step == StepDone {
		return nil, shared.NewDomainError("SESSION_CLOSED", "La session d'assistant est déjà terminée")
	}
	if session.Client == nil || session.Products == nil {
		return nil, shared.NewDomainError("STEP_ORDER", "Les étapes client et produits doivent être renseignées d'abord")
	}
	return session.clone(), nil
}

func (s *Session) clone() *Session {
	copied := *s
	if s.Client != nil {
		client := *s.Client
		copied.Client = &client
	}
	if s.Products != nil {
		products := *s.Products
		copied.Products = &products
	}
	return &copied
}
