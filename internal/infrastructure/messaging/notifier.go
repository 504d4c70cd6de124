package messaging

import (
	"context"
	"log/slog"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/notification"
)

// LogNotifier implements notification.Sender by logging the outbound
// message. Rendering and delivery belong to the notification collaborator;
// in deployments without one this keeps the engine observable.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send implements notification.Sender.
func (n *LogNotifier) Send(ctx context.Context, msg notification.Notification) error {
	n.logger.Info("notification",
		"user_id", msg.UserID,
		"kind", string(msg.Kind),
		"data", msg.Data,
	)
	return nil
}
