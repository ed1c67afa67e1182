package ports

import (
	"context"

	"tradebridge/internal/domain"
)

// Notifier delivers human-readable status messages to the chat channel.
// Delivery is best-effort: callers log a returned error and move on, it
// never changes the HTTP response already being built.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}
