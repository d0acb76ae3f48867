// Package power models the facility power distribution graph.
//
// A Network owns Grids, a Grid owns an ordered list of Subsystems, and a
// Subsystem allocates a fixed capacity to the Entities connected to it in
// roster order. Entities receive power only in whole quanta equal to their
// required power.
//
// Lookup and state-transition failures are reported as boolean results.
// Overload is never returned to the caller: the affected subsystem shuts
// itself down and the event is logged (and forwarded to the Observer).
//
// The types are not safe for concurrent use; callers serialize mutation.
package power
