// Package daemon runs the long-lived marquee process: it enforces
// single-instance execution with a file lock, fires the daily digest on
// schedule, and dispatches polled commands and navigation callbacks.
package daemon
