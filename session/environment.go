package session

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/datemath/value"
)

// Environment maps identifiers to their last assigned value. Bindings
// live as long as the session that owns them.
type Environment struct {
	bindings map[string]value.Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]value.Value)}
}

// Lookup returns the value bound to name.
func (e *Environment) Lookup(name string) (value.Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// Assign binds name to v, replacing any previous binding.
func (e *Environment) Assign(name string, v value.Value) {
	e.bindings[name] = v
}

// Names returns the bound identifiers in sorted order.
func (e *Environment) Names() []string {
	names := maps.Keys(e.bindings)
	slices.Sort(names)
	return names
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	return len(e.bindings)
}

// Reset removes every binding.
func (e *Environment) Reset() {
	maps.Clear(e.bindings)
}
