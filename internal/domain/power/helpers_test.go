package power

import "fmt"

// namedEntity is a Supply with an identifier, like the real devices.
type namedEntity struct {
	Supply

	id string
}

func newEntity(id string, required float64) *namedEntity {
	return &namedEntity{Supply: NewSupply(required), id: id}
}

func (e *namedEntity) ID() string { return e.id }

// recordingObserver collects observer events as strings.
type recordingObserver struct {
	events []string
}

func (r *recordingObserver) GridToggled(grid string, active bool) {
	r.events = append(r.events, fmt.Sprintf("grid %s %t", grid, active))
}

func (r *recordingObserver) SubsystemToggled(grid, sub string, active bool, usage, capacity float64) {
	r.events = append(r.events, fmt.Sprintf("subsystem %s/%s %t %.0f/%.0f", grid, sub, active, usage, capacity))
}

func (r *recordingObserver) SubsystemOverloaded(grid, sub string) {
	r.events = append(r.events, fmt.Sprintf("overload %s/%s", grid, sub))
}

func (r *recordingObserver) SubsystemUsageChanged(grid, sub string, usage, capacity float64) {
	r.events = append(r.events, fmt.Sprintf("usage %s/%s %.0f/%.0f", grid, sub, usage, capacity))
}

// resolverOf indexes entities by id.
func resolverOf(entities ...*namedEntity) Resolver {
	byID := make(map[string]Entity, len(entities))
	for _, e := range entities {
		byID[e.id] = e
	}

	return func(id string) (Entity, bool) {
		e, ok := byID[id]

		return e, ok
	}
}
