// Package delivery sends enriched items to chat destinations through an
// escalating fallback chain: cached handle, raw media URL with handle
// capture, static placeholder, plain text. Every stage failure is a named
// branch in the outcome, never an exception-style bailout, so callers can
// log and continue per destination.
package delivery
