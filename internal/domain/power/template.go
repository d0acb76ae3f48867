package power

import (
	"context"
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/oshokin/facility-breach/internal/logger"
)

// SubsystemTemplate is the read-only definition of a subsystem.
type SubsystemTemplate struct {
	// ID is unique within the grid.
	ID string
	// Capacity is the power budget of the subsystem.
	Capacity float64
	// Connections lists entity identifiers connected at instantiation, in priority order.
	Connections []string
}

// GridTemplate is the read-only definition of a grid.
type GridTemplate struct {
	ID         string
	Subsystems []SubsystemTemplate
}

// Clone returns a deep copy of the template.
func (t *GridTemplate) Clone() (*GridTemplate, error) {
	var clone GridTemplate
	if err := deepcopy.Copy(&clone, t); err != nil {
		return nil, fmt.Errorf("clone grid template %q: %w", t.ID, err)
	}

	return &clone, nil
}

// Instantiate builds a fresh, inactive runtime grid from a clone of the
// template. Connection ids the resolver does not know are logged and skipped.
func (t *GridTemplate) Instantiate(ctx context.Context, resolve Resolver, observer Observer) (*Grid, error) {
	def, err := t.Clone()
	if err != nil {
		return nil, err
	}

	subsystems := make([]*Subsystem, 0, len(def.Subsystems))

	for _, subDef := range def.Subsystems {
		sub := NewSubsystem(def.ID, subDef.ID, subDef.Capacity, observer)

		for _, entityID := range subDef.Connections {
			entity, ok := lookup(resolve, entityID)
			if !ok {
				logger.WarnKV(ctx, "Unknown connection skipped",
					"grid", def.ID, "subsystem", subDef.ID, "entity", entityID)

				continue
			}

			sub.Connect(ctx, entity)
		}

		subsystems = append(subsystems, sub)
	}

	return NewGrid(def.ID, subsystems, observer), nil
}

func lookup(resolve Resolver, id string) (Entity, bool) {
	if resolve == nil {
		return nil, false
	}

	return resolve(id)
}
