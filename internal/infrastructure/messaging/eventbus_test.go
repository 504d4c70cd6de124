package messaging

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestPublish_RoutesByEventType(t *testing.T) {
	bus := syncBus()

	var xpEvents, voteEvents int
	err := bus.Subscribe(shared.EventXPAwarded, func(event shared.Event) error {
		xpEvents++
		return nil
	})
	assert.NoError(t, err)
	err = bus.Subscribe(shared.EventVoteApplied, func(event shared.Event) error {
		voteEvents++
		return nil
	})
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewXPAwardedEvent("u1", 10, 10, "test")))
	assert.NoError(t, bus.Publish(shared.NewXPAwardedEvent("u1", 5, 15, "test")))

	assert.Equal(t, 2, xpEvents)
	assert.Equal(t, 0, voteEvents)
}

func TestPublish_SubscribeAllSeesEverything(t *testing.T) {
	bus := syncBus()

	var seen []shared.EventType
	err := bus.SubscribeAll(func(event shared.Event) error {
		seen = append(seen, event.EventType())
		return nil
	})
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent("u1", 1, 2)))
	assert.NoError(t, bus.Publish(shared.NewBadgeAwardedEvent("u1", "civic-duty", "silver")))

	assert.Equal(t, []shared.EventType{shared.EventLevelUp, shared.EventBadgeAwarded}, seen)
}

func TestPublish_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := syncBus()

	var second int
	assert.NoError(t, bus.Subscribe(shared.EventXPAwarded, func(event shared.Event) error {
		return errors.New("boom")
	}))
	assert.NoError(t, bus.Subscribe(shared.EventXPAwarded, func(event shared.Event) error {
		second++
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewXPAwardedEvent("u1", 10, 10, "test")))
	assert.Equal(t, 1, second)
}

func TestPublish_NoHandlersIsFine(t *testing.T) {
	bus := syncBus()
	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent("u1", 1, 2)))
}

func TestClosedBusRejectsOperations(t *testing.T) {
	bus := syncBus()
	assert.NoError(t, bus.Close())

	err := bus.Publish(shared.NewLevelUpEvent("u1", 1, 2))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventLevelUp, func(event shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Closing twice is a no-op.
	assert.NoError(t, bus.Close())
}

func TestNilHandlerRejected(t *testing.T) {
	bus := syncBus()
	assert.Error(t, bus.Subscribe(shared.EventLevelUp, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}

func TestMetricsSnapshot(t *testing.T) {
	bus := syncBus()

	assert.NoError(t, bus.Subscribe(shared.EventXPAwarded, func(event shared.Event) error {
		return nil
	}))
	assert.NoError(t, bus.Subscribe(shared.EventXPAwarded, func(event shared.Event) error {
		return errors.New("boom")
	}))

	assert.NoError(t, bus.Publish(shared.NewXPAwardedEvent("u1", 10, 10, "test")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalHandlerExecs)
	assert.InDelta(t, 0.5, snap.HandlerSuccessRate, 0.001)
}
