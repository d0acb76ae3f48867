package power

import (
	"errors"
	"fmt"
	"strings"
)

// TargetSeparator splits the grid and subsystem parts of a switch target.
const TargetSeparator = "_"

// ErrInvalidTarget is returned for targets without a grid part.
var ErrInvalidTarget = errors.New("invalid power target")

// Target addresses a whole grid or one subsystem within it.
type Target struct {
	Grid      string
	Subsystem string
}

// ParseTarget parses "<grid>" or "<grid>_<subsystem>".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)

	gridID, subID, hasSub := strings.Cut(s, TargetSeparator)
	if gridID == "" || (hasSub && (subID == "" || strings.Contains(subID, TargetSeparator))) {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}

	return Target{Grid: gridID, Subsystem: subID}, nil
}

// HasSubsystem reports whether the target names a subsystem.
func (t Target) HasSubsystem() bool {
	return t.Subsystem != ""
}

// String renders the target in its compound form.
func (t Target) String() string {
	if !t.HasSubsystem() {
		return t.Grid
	}

	return t.Grid + TargetSeparator + t.Subsystem
}
