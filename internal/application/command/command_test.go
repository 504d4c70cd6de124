package command

import (
	"io"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// Fixed UUIDs shared by the handler tests.
const (
	testUserID   shared.UserID   = "8d3f0c2a-41b7-4e6f-9a15-6d2c7e8b9f01"
	testVoterID  shared.UserID   = "1b9e6f4d-2c3a-48e5-b7d0-5a1f2e3c4d5e"
	testAuthorID shared.UserID   = "7c2d1e0f-9a8b-4c5d-8e7f-6a5b4c3d2e1f"
	testTargetID shared.TargetID = "3e5f7a9b-1c2d-4e6f-8a0b-2c4d6e8f0a1b"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

// capturePublisher records published events in order.
type capturePublisher struct {
	events []shared.Event
	err    error
}

func (p *capturePublisher) Publish(event shared.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []shared.EventType {
	types := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}
