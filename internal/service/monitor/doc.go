// Package monitor polls the facility server and reports the breach, the
// escape countdown and grid state changes.
package monitor
