// Package monitor implements the compliance health-monitoring scheduler.
//
// A Monitor owns a registry of named periodic checks, each driven by its
// own ticker goroutine, plus bounded FIFO history buffers for generated
// metrics (cap 100) and alerts (cap 50). Check failures are logged,
// counted, and surfaced through CheckInfo; they never stop a ticker, so a
// failing check simply retries on its next tick with no backoff.
//
// The Monitor is constructed explicitly with an injected clock, sink, and
// logger. Tests drive a mock clock to advance virtual time instead of
// sleeping.
package monitor
