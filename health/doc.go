// Package health derives health metrics and alerts from compliance
// framework snapshots.
//
// GenerateMetrics and GenerateAlerts are pure functions of an explicit
// reference time and the framework data: they perform no I/O, read no
// globals, and are total over their inputs (empty input yields empty
// output, vacuous percentages resolve to 100). All threshold bucketing
// lives here so the scheduler and the console agree on what "critical"
// means.
package health
