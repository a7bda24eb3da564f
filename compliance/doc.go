// Package compliance defines the framework and control domain model that
// health monitoring evaluates.
//
// A Framework is an immutable snapshot of one compliance standard (SOC 2,
// ISO 27001, ...) with an aggregate score and a list of Controls.
// Holders of framework data own it wholesale: a refresh replaces the
// entire slice rather than mutating entries in place.
//
// The package also provides mock-data constructors used by the demo mode
// of cmd/secwatch and by tests; production deployments feed real
// framework snapshots through the same types.
package compliance
