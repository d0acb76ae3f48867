package device

import (
	"context"

	"github.com/oshokin/facility-breach/internal/domain/breach"
	"github.com/oshokin/facility-breach/internal/domain/power"
	"github.com/oshokin/facility-breach/internal/logger"
)

// DefaultMaxLockedInteractions is how many times a locked door may be forced
// before it requests a breach.
const DefaultMaxLockedInteractions = 3

// DoorOptions configures a door.
type DoorOptions struct {
	// RequiredPower is the power quantum the door motor needs.
	RequiredPower float64
	// OpenOnStart opens the door at start-up.
	OpenOnStart bool
	// LockedOnStart locks the door (and its lock group) at start-up.
	LockedOnStart bool
	// LockedOnBreach locks the door when the breach fires.
	LockedOnBreach bool
	// MaxLockedInteractions overrides DefaultMaxLockedInteractions when positive.
	MaxLockedInteractions int
}

// Door is a powered door that requests a breach when forced while locked.
type Door struct {
	power.Supply
	breachLink

	opts DoorOptions
	// open and locked are the door's physical state.
	open   bool
	locked bool
	// lockedInteractions counts attempts to open the door while locked.
	lockedInteractions int
	// lockGroup are doors that lock and unlock together with this one.
	lockGroup []*Door
}

// NewDoor creates a closed, unlocked door.
func NewDoor(id string, latch *breach.Latch, opts DoorOptions) *Door {
	if opts.MaxLockedInteractions <= 0 {
		opts.MaxLockedInteractions = DefaultMaxLockedInteractions
	}

	return &Door{
		Supply:     power.NewSupply(opts.RequiredPower),
		breachLink: newBreachLink(id, latch),
		opts:       opts,
	}
}

// ID returns the door identifier.
func (d *Door) ID() string { return d.id }

// Kind returns KindDoor.
func (d *Door) Kind() Kind { return KindDoor }

// Open reports whether the door is open.
func (d *Door) Open() bool { return d.open }

// Locked reports whether the door is locked.
func (d *Door) Locked() bool { return d.locked }

// JoinLockGroup links doors so that locking any of them locks all.
func (d *Door) JoinLockGroup(doors ...*Door) {
	for _, other := range doors {
		if other == nil || other == d {
			continue
		}

		d.lockGroup = append(d.lockGroup, other)
	}
}

// Start applies start-up state and joins the breach protocol. A door already
// locked by a lock-group peer stays closed regardless of OpenOnStart.
func (d *Door) Start(ctx context.Context) {
	if d.opts.LockedOnStart {
		d.SetLocked(ctx, true)
	}

	if !d.locked {
		d.open = d.opts.OpenOnStart
	}

	d.register(true, func(ctx context.Context) {
		if d.opts.LockedOnBreach {
			d.SetLocked(ctx, true)
		}
	})
}

// Interact is called when someone operates the door. An unpowered door does
// nothing. An unlocked door toggles open/closed; a locked one counts the
// attempt and requests a breach once the limit is reached.
func (d *Door) Interact(ctx context.Context) bool {
	if !d.HasPower() {
		logger.DebugKV(ctx, "Door has no power", "device", d.id)

		return false
	}

	if !d.locked {
		d.open = !d.open
		logger.DebugKV(ctx, "Door toggled", "device", d.id, "open", d.open)

		return true
	}

	d.lockedInteractions++
	logger.InfoKV(ctx, "Locked door forced", "device", d.id, "attempts", d.lockedInteractions)

	if d.lockedInteractions >= d.opts.MaxLockedInteractions {
		d.request(ctx)
	}

	return true
}

// SetLocked locks or unlocks the door and its lock group. Locking closes the door.
func (d *Door) SetLocked(ctx context.Context, locked bool) {
	d.locked = locked
	if locked {
		d.open = false
	}

	for _, other := range d.lockGroup {
		if other.locked != locked {
			other.SetLocked(ctx, locked)
		}
	}

	logger.DebugKV(ctx, "Door lock state set", "device", d.id, "locked", d.locked)
}

// State reports the door state.
func (d *Door) State() map[string]any {
	state := poweredState(d)
	state["open"] = d.open
	state["locked"] = d.locked
	state["locked_interactions"] = d.lockedInteractions
	state["forwarding"] = d.Forwarding()

	return state
}
