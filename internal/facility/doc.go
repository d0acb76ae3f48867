// Package facility assembles the power network, the breach latch and every
// device from the settings file, and exposes them behind a single lock.
//
// All mutation of the simulation goes through Facility: the gRPC transport,
// the tick loop and tests call its methods, never the underlying objects.
package facility
