// Package secwatch provides the compliance health-monitoring backbone of
// a security-operations console.
//
// # Architecture
//
// SecWatch evaluates in-memory compliance framework data on a schedule and
// derives health metrics and alerts from it. The system is composed of
// small, independently testable layers:
//
//   - compliance: the framework/control domain model plus mock-data
//     constructors used by demos and tests
//   - health: pure, clock-injected generator functions that fold framework
//     data into metric and alert records
//   - monitor: the scheduler service owning a registry of named periodic
//     checks, bounded metric/alert history, and listener notification
//   - sink: the outbound telemetry boundary (NATS in production, a
//     slog-backed sink for development, a capture sink for tests)
//   - gateway: the console-facing HTTP JSON API, WebSocket stream, and
//     Prometheus exposition endpoint
//
// Data flows in one direction: framework snapshot -> generators ->
// scheduler history + sink + listener -> console.
//
// # Design principles
//
// Generators are total functions of (now, frameworks); they never touch
// the wall clock or any global state, so every threshold and vacuous case
// is directly testable. The monitor is an explicitly constructed service
// with injected clock, sink, and logger rather than a process-wide
// singleton. Check failures are observable through per-check results and
// Prometheus counters while remaining non-fatal: a failing check simply
// tries again on its next tick.
package secwatch
