// Package systems contains the built-in command systems: world navigation,
// inventory, combat, quests, scripted effects, and ambience.
//
// Systems never hold the World; it is handed to them per command. Shared
// services (event bus, RNG, clock) live in an Env that the engine owns.
package systems

import (
	"log/slog"
	"time"

	"github.com/nathoo/sagacore/engine/dice"
	"github.com/nathoo/sagacore/engine/events"
	"github.com/nathoo/sagacore/types"
)

// Env carries the services systems share during a step.
type Env struct {
	Bus *events.Bus
	RNG *dice.RNG
	Now func() time.Time
	Log *slog.Logger

	pending   []string // lines emitted by event handlers
	published []string // event names published this step
}

// NewEnv creates an Env with a wall clock.
func NewEnv(bus *events.Bus, rng *dice.RNG, log *slog.Logger) *Env {
	if log == nil {
		log = slog.Default()
	}
	return &Env{Bus: bus, RNG: rng, Now: time.Now, Log: log}
}

// Emit queues narrative lines from an event handler. They are returned by
// the Publish call that triggered the handler.
func (e *Env) Emit(lines ...string) {
	e.pending = append(e.pending, lines...)
}

// Publish publishes an event and returns it together with every line the
// handlers emitted while it was being dispatched.
func (e *Env) Publish(w *types.World, name string, data map[string]any, cancellable bool, source string) (*events.Event, []string) {
	start := len(e.pending)
	e.published = append(e.published, name)
	ev := e.Bus.Publish(w, name, data, source, cancellable)
	lines := append([]string(nil), e.pending[start:]...)
	e.pending = e.pending[:start]
	return ev, lines
}

// TakePublished returns and clears the names of events published since
// the last call.
func (e *Env) TakePublished() []string {
	names := e.published
	e.published = nil
	return names
}

// TakePending returns and clears lines emitted outside any Publish call.
func (e *Env) TakePending() []string {
	lines := e.pending
	e.pending = nil
	return lines
}
