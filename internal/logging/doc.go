// Package logging assembles structured slog loggers and formatting helpers used
// across jtools.
//
// It owns the console and JSON handlers, optional rotating file output, and
// context-aware helpers that tag log lines with the running operation, the
// acting user, and correlation IDs. A sink handler forwards records to
// in-process consumers (the session event stream), and a no-op logger serves
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
