package secondary

import "context"

// Notifier defines the interface for transient user notifications.
type Notifier interface {
	// Notify shows message at level ("success", "error" or "info").
	Notify(ctx context.Context, level, message string)
}
