// Package logging builds the slog loggers used across marquee.
//
// It provides console and JSON handler construction from config, typed
// attribute helpers, standardized field keys (component, session, item,
// chat), and context-derived enrichment so digest runs and navigation
// requests carry consistent identifiers through every log line.
package logging
