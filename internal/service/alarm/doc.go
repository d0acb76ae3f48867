// Package alarm implements the remote alarm panel: it asks the facility
// server to latch the breach and keeps retrying until the server confirms it.
package alarm
