// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// CommandKey is the context key for the invoking command name.
type CommandKey struct{}

// WithCommand returns a context with the command name embedded.
func WithCommand(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, CommandKey{}, name)
}

// CommandFromContext returns the command name from context, or empty string if not set.
func CommandFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CommandKey{}).(string); ok {
		return v
	}
	return ""
}
