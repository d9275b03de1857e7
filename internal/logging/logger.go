// Package logging defines the structured-logging interface the bot's
// packages log through. The server wires in the slog implementation; tests
// swap in a discard logger.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "wallet linked", "user_id", userID, "wallet", addr)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)

	// Warn is for unusual but non-fatal conditions, such as a balance read
	// falling back to zero.
	Warn(ctx context.Context, msg string, args ...any)

	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs.
	With(args ...any) Logger
}
