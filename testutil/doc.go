// Package testutil provides test support shared across packages: a
// capturing sink, a recording listener, and compliance fixtures with
// exact scores and control states.
package testutil
