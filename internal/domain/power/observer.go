package power

// Observer receives power events for metrics or auditing. All methods are
// called synchronously on the mutating goroutine.
type Observer interface {
	GridToggled(grid string, active bool)
	SubsystemToggled(grid, subsystem string, active bool, usage, capacity float64)
	SubsystemOverloaded(grid, subsystem string)
	// SubsystemUsageChanged follows a single grant or revoke outside a toggle.
	SubsystemUsageChanged(grid, subsystem string, usage, capacity float64)
}

// nopObserver discards every event.
type nopObserver struct{}

func (nopObserver) GridToggled(string, bool)                                {}
func (nopObserver) SubsystemToggled(string, string, bool, float64, float64) {}
func (nopObserver) SubsystemOverloaded(string, string)                      {}
func (nopObserver) SubsystemUsageChanged(string, string, float64, float64)  {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}

	return o
}
