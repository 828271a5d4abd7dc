package dispatch

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownSystem is returned when switching a system nobody defined.
	ErrUnknownSystem = errors.New("unknown system")
	// ErrMissingDependency is returned when an enabled system needs a
	// disabled or undefined one.
	ErrMissingDependency = errors.New("missing system dependency")
)

// Registry records which systems are switched on and which others each
// one needs. Names nobody defined always count as enabled, so callers
// outside the registry (the engine's own bus traffic) are never muted.
type Registry struct {
	order    []string
	requires map[string][]string
	disabled map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		requires: map[string][]string{},
		disabled: map[string]bool{},
	}
}

// Define adds a system, enabled, along with the systems it requires.
// Defining a name again replaces its requirements.
func (r *Registry) Define(name string, requires ...string) {
	if _, ok := r.requires[name]; !ok {
		r.order = append(r.order, name)
	}
	r.requires[name] = requires
}

// Names returns the defined systems in definition order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Enabled reports whether name should run.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return true
	}
	return !r.disabled[name]
}

// Enable switches a defined system on.
func (r *Registry) Enable(name string) error {
	if _, ok := r.requires[name]; !ok {
		return errors.Wrapf(ErrUnknownSystem, "%q", name)
	}
	delete(r.disabled, name)
	return nil
}

// Disable switches a defined system off.
func (r *Registry) Disable(name string) error {
	if _, ok := r.requires[name]; !ok {
		return errors.Wrapf(ErrUnknownSystem, "%q", name)
	}
	r.disabled[name] = true
	return nil
}

// Validate checks that every enabled system's requirements are defined
// and enabled. The first broken one is reported, in definition order.
func (r *Registry) Validate() error {
	for _, name := range r.order {
		if r.disabled[name] {
			continue
		}
		for _, dep := range r.requires[name] {
			if _, ok := r.requires[dep]; !ok || r.disabled[dep] {
				return errors.Wrapf(ErrMissingDependency, "%s requires %s", name, dep)
			}
		}
	}
	return nil
}
