// Package logging provides types.Logger implementations: a log/slog adapter,
// a no-op logger, and a logger writing through testing.T.
package logging
