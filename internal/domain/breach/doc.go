// Package breach implements the facility-wide breach alarm.
//
// A Latch is a one-shot state machine (armed -> triggered). Breach sources
// own a Signal and forward it into Latch.Trigger; the first trigger flips the
// latch and notifies every registered Listener exactly once, in registration
// order. Listeners usually drop their source's forwarding subscription after
// reacting, which is cleanup only: the latch ignores repeated triggers anyway.
package breach
