// Package logging assembles the structured slog loggers used across the repo.
//
// It owns the console/JSON handler selection (a TTY gets the compact console
// format, everything else gets JSON), typed attribute helpers, and a no-op
// logger for tests and wiring code that cannot fail. Prefer these
// constructors over hand-rolled slog setup so every component emits the same
// field shapes.
package logging
