package notifier

import (
	"context"
	"log/slog"

	"github.com/testaro/testaro_backend/internal/core/ports"
)

// LogNotifier writes notifications to the log instead of sending email.
// Used in development when Postmark is not configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

var _ ports.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Send(ctx context.Context, address string, kind ports.NotificationKind, data map[string]string) error {
	n.logger.InfoContext(ctx, "notification (log sink)",
		slog.String("to", address),
		slog.String("kind", string(kind)),
		slog.Any("data", data),
	)
	return nil
}
