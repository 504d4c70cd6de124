// Package messaging implements the in-process event bus that connects the
// engine's write paths to its reactive side. A committed write publishes;
// handlers fan the effect out to tasks, achievements, badges, the board,
// and notifications. Single-instance by design: ordering within one
// process is enough for the engine's guarantees.
package messaging

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// ErrEventBusClosed is returned when operations are attempted on a closed bus.
var ErrEventBusClosed = errors.New("event bus is closed")

// InMemoryEventBus implements shared.EventBus. In async mode each handler
// invocation runs in its own goroutine, bounded by a semaphore; in sync mode
// handlers run inline on the publisher's goroutine, which is what the tests
// use. Handler errors are logged, never returned to the publisher: a
// committed write must not fail because a follow-up did.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[shared.EventType][]shared.EventHandler
	global   []shared.EventHandler
	async    bool
	sem      chan struct{}
	logger   *slog.Logger
	metrics  *EventBusMetrics
	closed   bool
	draining chan struct{}
	inflight sync.WaitGroup
}

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode enables asynchronous event processing.
	AsyncMode bool

	// WorkerPoolSize is the number of concurrent workers for async processing.
	WorkerPoolSize int

	// Logger for structured logging.
	Logger *slog.Logger

	// EnableMetrics enables metrics collection.
	EnableMetrics bool
}

// DefaultInMemoryEventBusConfig returns sensible defaults.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		EnableMetrics:  true,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	bus := &InMemoryEventBus{
		byType:   make(map[shared.EventType][]shared.EventHandler),
		async:    config.AsyncMode,
		sem:      make(chan struct{}, config.WorkerPoolSize),
		logger:   config.Logger,
		draining: make(chan struct{}),
	}
	if config.EnableMetrics {
		bus.metrics = NewEventBusMetrics()
	}
	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.byType[eventType] = append(b.byType[eventType], handler)
	return nil
}

// SubscribeAll registers a handler that receives every event.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.global = append(b.global, handler)
	return nil
}

// Publish delivers an event to every matching handler.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	typed := b.byType[event.EventType()]
	handlers := make([]shared.EventHandler, 0, len(typed)+len(b.global))
	handlers = append(handlers, typed...)
	handlers = append(handlers, b.global...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	if b.metrics != nil {
		b.metrics.RecordPublish(event.EventType())
	}

	for _, handler := range handlers {
		if b.async {
			b.spawn(event, handler)
		} else {
			b.invoke(event, handler)
		}
	}
	return nil
}

// spawn runs a handler on its own goroutine once a semaphore slot frees up.
// Closing the bus unblocks waiters; their events are dropped.
func (b *InMemoryEventBus) spawn(event shared.Event, handler shared.EventHandler) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		select {
		case b.sem <- struct{}{}:
			defer func() { <-b.sem }()
		case <-b.draining:
			return
		}

		b.invoke(event, handler)
	}()
}

func (b *InMemoryEventBus) invoke(event shared.Event, handler shared.EventHandler) {
	start := time.Now()
	err := handler(event)
	elapsed := time.Since(start)

	if b.metrics != nil {
		b.metrics.RecordHandlerExecution(event.EventType(), elapsed, err == nil)
	}
	if err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"duration", elapsed,
			"error", err,
		)
	}
}

// Close stops accepting events and waits for in-flight handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.draining)
	b.mu.Unlock()

	b.inflight.Wait()
	b.logger.Info("event bus closed")
	return nil
}

// Metrics returns the bus metrics, nil when collection is disabled.
func (b *InMemoryEventBus) Metrics() *EventBusMetrics {
	return b.metrics
}

// EventBusMetrics counts publishes and handler executions.
type EventBusMetrics struct {
	mu        sync.Mutex
	published map[shared.EventType]int64
	execs     int64
	succeeded int64
	elapsed   time.Duration
}

// NewEventBusMetrics creates new metrics tracker.
func NewEventBusMetrics() *EventBusMetrics {
	return &EventBusMetrics{published: make(map[shared.EventType]int64)}
}

// RecordPublish records a publish event.
func (m *EventBusMetrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	m.published[eventType]++
	m.mu.Unlock()
}

// RecordHandlerExecution records one handler run.
func (m *EventBusMetrics) RecordHandlerExecution(eventType shared.EventType, d time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.execs++
	m.elapsed += d
	if success {
		m.succeeded++
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var published int64
	for _, n := range m.published {
		published += n
	}

	snap := EventBusMetricsSnapshot{
		TotalPublished:     published,
		TotalHandlerExecs:  m.execs,
		HandlerSuccessRate: 1.0,
	}
	if m.execs > 0 {
		snap.HandlerSuccessRate = float64(m.succeeded) / float64(m.execs)
		snap.AverageHandlerDuration = m.elapsed / time.Duration(m.execs)
	}
	return snap
}

// EventBusMetricsSnapshot is a point-in-time snapshot of metrics.
type EventBusMetricsSnapshot struct {
	TotalPublished         int64
	TotalHandlerExecs      int64
	HandlerSuccessRate     float64
	AverageHandlerDuration time.Duration
}
