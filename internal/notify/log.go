package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger, or the
// default logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the notification at warn level.
func (n *LogNotifier) Send(ctx context.Context, notification Notification) error {
	n.logger.WarnContext(ctx, "notification",
		"subject", notification.Subject,
		"body", notification.Body,
	)
	return nil
}
