package power

import (
	"context"
	"fmt"
	"slices"

	"github.com/oshokin/facility-breach/internal/logger"
)

// Subsystem distributes a fixed capacity between the entities connected to it.
// Roster order is allocation priority.
type Subsystem struct {
	// id is unique within the parent grid.
	id string
	// gridID names the parent grid in logs and observer events.
	gridID string
	// capacity is the maximum power the subsystem can grant.
	capacity float64
	// usage is the sum of required power of granted entities.
	usage float64
	// active is false until the parent grid (or a direct toggle) activates it.
	active bool
	// roster holds connected entities in arrival order.
	roster []Entity
	// granted holds the entities this subsystem currently powers.
	granted map[Entity]struct{}
	// observer receives toggle and overload events.
	observer Observer
}

// NewSubsystem creates an inactive subsystem with no connections.
func NewSubsystem(gridID, id string, capacity float64, observer Observer) *Subsystem {
	return &Subsystem{
		id:       id,
		gridID:   gridID,
		capacity: max(capacity, 0),
		granted:  make(map[Entity]struct{}),
		observer: observerOrNop(observer),
	}
}

// ID returns the subsystem identifier.
func (s *Subsystem) ID() string { return s.id }

// GridID returns the identifier of the owning grid.
func (s *Subsystem) GridID() string { return s.gridID }

// Capacity returns the constant capacity.
func (s *Subsystem) Capacity() float64 { return s.capacity }

// Usage returns the power currently granted.
func (s *Subsystem) Usage() float64 { return s.usage }

// Available returns the capacity not yet granted.
func (s *Subsystem) Available() float64 { return s.capacity - s.usage }

// Active reports whether the subsystem is supplying power.
func (s *Subsystem) Active() bool { return s.active }

// Entities returns a copy of the roster in allocation order.
func (s *Subsystem) Entities() []Entity {
	return slices.Clone(s.roster)
}

// Connected reports whether e is on the roster.
func (s *Subsystem) Connected(e Entity) bool {
	return slices.Contains(s.roster, e)
}

// Powered reports whether this subsystem currently grants power to e.
func (s *Subsystem) Powered(e Entity) bool {
	_, ok := s.granted[e]

	return ok
}

// CanGrant reports whether granting e now would keep usage within capacity.
func (s *Subsystem) CanGrant(e Entity) bool {
	return s.usage+e.RequiredPower() <= s.capacity
}

// Connect appends e to the roster. If the subsystem is active, e is powered
// immediately; when that would exceed capacity the whole subsystem shuts down
// instead. Connect fails only when e is already connected.
func (s *Subsystem) Connect(ctx context.Context, e Entity) bool {
	if e == nil || s.Connected(e) {
		return false
	}

	s.roster = append(s.roster, e)

	if !s.active {
		logger.DebugKV(ctx, "Entity registered on inactive subsystem", s.kv("entity", describe(e))...)

		return true
	}

	if !s.CanGrant(e) {
		logger.WarnKV(ctx, "Subsystem overloaded, shutting down",
			s.kv("entity", describe(e), "required", e.RequiredPower(), "available", s.Available())...)
		s.observer.SubsystemOverloaded(s.gridID, s.id)
		s.Toggle(ctx, false)

		return true
	}

	s.grant(e)
	s.observer.SubsystemUsageChanged(s.gridID, s.id, s.usage, s.capacity)
	logger.DebugKV(ctx, "Entity connected", s.kv("entity", describe(e), "usage", s.usage)...)

	return true
}

// Disconnect removes e from the roster and revokes any power this subsystem granted it.
func (s *Subsystem) Disconnect(ctx context.Context, e Entity) bool {
	idx := slices.Index(s.roster, e)
	if idx < 0 {
		return false
	}

	s.roster = slices.Delete(s.roster, idx, idx+1)

	if s.Powered(e) {
		s.revoke(e)
		s.observer.SubsystemUsageChanged(s.gridID, s.id, s.usage, s.capacity)
	}

	logger.DebugKV(ctx, "Entity disconnected", s.kv("entity", describe(e), "usage", s.usage)...)

	return true
}

// Toggle switches the subsystem on or off. It returns false when the
// subsystem is already in the target state.
//
// Activation powers entities in roster order and stops at the first one that
// would exceed capacity; that entity and every later one stay unpowered.
// Deactivation revokes every grant.
func (s *Subsystem) Toggle(ctx context.Context, target bool) bool {
	if s.active == target {
		return false
	}

	if target {
		s.activate(ctx)
	} else {
		s.deactivate()
	}

	s.active = target

	logger.InfoKV(ctx, "Subsystem state changed",
		s.kv("active", s.active, "usage", s.usage, "capacity", s.capacity)...)
	s.observer.SubsystemToggled(s.gridID, s.id, s.active, s.usage, s.capacity)

	return true
}

// ToggleEntityPower grants or revokes power for a single connected entity.
// It fails when the subsystem is inactive, e is not connected, e is already
// in the target state, or a grant would exceed capacity.
func (s *Subsystem) ToggleEntityPower(ctx context.Context, e Entity, target bool) bool {
	if !s.active || !s.Connected(e) || s.Powered(e) == target {
		return false
	}

	if !target {
		s.revoke(e)
		s.observer.SubsystemUsageChanged(s.gridID, s.id, s.usage, s.capacity)
		logger.DebugKV(ctx, "Entity power revoked", s.kv("entity", describe(e), "usage", s.usage)...)

		return true
	}

	if !s.CanGrant(e) {
		logger.WarnKV(ctx, "Entity grant refused, capacity exceeded",
			s.kv("entity", describe(e), "required", e.RequiredPower(), "available", s.Available())...)

		return false
	}

	s.grant(e)
	s.observer.SubsystemUsageChanged(s.gridID, s.id, s.usage, s.capacity)
	logger.DebugKV(ctx, "Entity power granted", s.kv("entity", describe(e), "usage", s.usage)...)

	return true
}

func (s *Subsystem) activate(ctx context.Context) {
	for i, e := range s.roster {
		if s.Powered(e) {
			continue
		}

		if !s.CanGrant(e) {
			logger.WarnKV(ctx, "Capacity reached during activation, remaining entities unpowered",
				s.kv("skipped", len(s.roster)-i, "usage", s.usage)...)

			return
		}

		s.grant(e)
	}
}

func (s *Subsystem) deactivate() {
	for _, e := range s.roster {
		if s.Powered(e) {
			s.revoke(e)
		}
	}

	// Granted quanta are whole, but float subtraction may leave dust.
	s.usage = 0
}

func (s *Subsystem) grant(e Entity) {
	e.PowerConnect(e.RequiredPower())
	s.granted[e] = struct{}{}
	s.usage += e.RequiredPower()
}

func (s *Subsystem) revoke(e Entity) {
	e.PowerDisconnect(e.RequiredPower())
	delete(s.granted, e)
	s.usage = max(s.usage-e.RequiredPower(), 0)
}

// kv prefixes log fields with the subsystem identity.
func (s *Subsystem) kv(kvs ...any) []any {
	return append([]any{"grid", s.gridID, "subsystem", s.id}, kvs...)
}

// describe renders an entity for logs, preferring its own identifier.
func describe(e Entity) string {
	if named, ok := e.(interface{ ID() string }); ok {
		return named.ID()
	}

	return fmt.Sprintf("%T", e)
}
