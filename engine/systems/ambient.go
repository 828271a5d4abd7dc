package systems

import (
	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// Ambient adds atmosphere to dark rooms. It takes part only in broadcast
// dispatch, alongside the world system, for look and move.
type Ambient struct {
	env *Env
}

// NewAmbient creates the ambient system.
func NewAmbient(env *Env) *Ambient {
	return &Ambient{env: env}
}

func (s *Ambient) Name() string { return "ambient" }

// Verbs lists the commands this system reacts to.
func (s *Ambient) Verbs() []types.Verb {
	return []types.Verb{types.VerbLook, types.VerbMove}
}

var darkSounds = []struct {
	line   string
	weight int
}{
	{"Water drips somewhere in the dark.", 4},
	{"Something skitters away from you.", 3},
	{"You hear slow breathing nearby.", 2},
	{"A cold draught brushes your face.", 1},
}

func (s *Ambient) Handle(w *types.World, cmd types.Command) []string {
	if w.GameOver || !state.CurrentRoom(w).Dark {
		return nil
	}
	weights := make([]int, len(darkSounds))
	for i, snd := range darkSounds {
		weights[i] = snd.weight
	}
	return []string{darkSounds[s.env.RNG.WeightedSelect(weights)].line}
}
