// Package gateway exposes the monitor to security-operations consoles:
// a JSON API for health state, histories, and manual refresh, a
// WebSocket stream pushing each check result to connected consoles, and
// Prometheus exposition.
package gateway
