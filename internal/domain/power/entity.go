package power

// Entity is implemented by every device that consumes power.
type Entity interface {
	// RequiredPower is the constant quantum the entity needs to operate.
	RequiredPower() float64
	// ProvidedPower is the power currently supplied to the entity.
	ProvidedPower() float64
	// HasPower reports whether the provided power covers the requirement.
	HasPower() bool
	// PowerConnect increases the provided power by amount.
	PowerConnect(amount float64)
	// PowerDisconnect decreases the provided power by amount.
	PowerDisconnect(amount float64)
}

// Resolver looks up an entity by identifier.
type Resolver func(id string) (Entity, bool)

// HasPower derives the powered state from the two accessors of the contract.
func HasPower(e Entity) bool {
	return e.ProvidedPower() >= e.RequiredPower()
}

// Supply is an embeddable Entity implementation.
type Supply struct {
	// required is fixed at construction.
	required float64
	// provided changes only through PowerConnect and PowerDisconnect.
	provided float64
}

// NewSupply creates a supply with the given requirement. Negative values are clamped to zero.
func NewSupply(required float64) Supply {
	return Supply{required: max(required, 0)}
}

// RequiredPower returns the constant power requirement.
func (s *Supply) RequiredPower() float64 {
	return s.required
}

// ProvidedPower returns the power currently supplied.
func (s *Supply) ProvidedPower() float64 {
	return s.provided
}

// HasPower reports whether the supplied power covers the requirement.
func (s *Supply) HasPower() bool {
	return HasPower(s)
}

// PowerConnect adds amount to the supplied power.
func (s *Supply) PowerConnect(amount float64) {
	s.provided += amount
}

// PowerDisconnect removes amount from the supplied power.
func (s *Supply) PowerDisconnect(amount float64) {
	s.provided -= amount
}
