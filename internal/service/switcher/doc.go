// Package switcher implements the remote power switch. It toggles whole
// grids or single subsystems addressed as "<grid>" or "<grid>_<subsystem>".
package switcher
