package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func newEvent(eventType string) shared.DomainEvent {
	ev := shared.NewBaseDomainEvent(eventType, "PaymentBatch", uuid.New())
	return &ev
}

func TestPublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{types: []string{"PaymentBatchCompleted"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newEvent("PaymentBatchCompleted")))
	require.NoError(t, bus.Publish(context.Background(), newEvent("CNAMBondApproved")))

	require.Len(t, handler.received, 1)
	assert.Equal(t, "PaymentBatchCompleted", handler.received[0].EventType())
}

func TestWildcardHandlerReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newEvent("PaymentBatchCompleted"), newEvent("CNAMBondApproved")))

	assert.Len(t, handler.received, 2)
}

func TestHandlerErrorDoesNotStopDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := &recordingHandler{types: []string{"CNAMBondApproved"}, err: errors.New("boom")}
	ok := &recordingHandler{types: []string{"CNAMBondApproved"}}
	bus.Subscribe(failing)
	bus.Subscribe(ok)

	require.NoError(t, bus.Publish(context.Background(), newEvent("CNAMBondApproved")))

	assert.Len(t, failing.received, 1)
	assert.Len(t, ok.received, 1)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := &recordingHandler{types: []string{"PaymentBatchCompleted"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newEvent("PaymentBatchCompleted")))
	assert.Empty(t, handler.received)
}
