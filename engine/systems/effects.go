package systems

import (
	"context"

	"github.com/nathoo/sagacore/engine/events"
	"github.com/nathoo/sagacore/engine/script"
	"github.com/nathoo/sagacore/types"
)

// Effects runs the adventure's scripted effects. It has no commands of its
// own; it listens to every event and fires the effects bound to it.
type Effects struct {
	env    *Env
	quests *Quests
}

// NewEffects creates the effects system. quests receives progress and
// failures requested by scripts and may be nil.
func NewEffects(env *Env, quests *Quests) *Effects {
	return &Effects{env: env, quests: quests}
}

func (s *Effects) Name() string { return "effects" }

// Attach subscribes the effects system to every event.
func (s *Effects) Attach(bus *events.Bus) {
	bus.Subscribe(events.Wildcard, events.HandlerFunc(s.onEvent), events.Normal, s.Name())
}

func (s *Effects) hooks() script.Hooks {
	if s.quests == nil {
		return script.Hooks{}
	}
	return script.Hooks{Progress: s.quests.Advance, FailQuest: s.quests.Fail}
}

func (s *Effects) onEvent(w *types.World, ev *events.Event) {
	target := ev.String("target")
	for i := 0; i < len(w.Effects); i++ {
		eff := w.Effects[i]
		if eff.Event != ev.Name || (eff.Target != "" && eff.Target != target) {
			continue
		}
		if eff.Once && eff.Fired {
			continue
		}
		// Marked before running so a script that re-triggers its own
		// event cannot fire twice.
		w.Effects[i].Fired = true

		lines, err := script.Run(context.Background(), w, eff.Script, ev, s.hooks())
		s.env.Emit(lines...)
		if err != nil {
			s.env.Log.Warn("effect failed", "effect", eff.ID, "event", ev.Name, "err", err)
		}
		if ev.Cancelled {
			return
		}
	}
}
