// Package engine provides the Step() orchestrator that wires together
// parsing, dispatch, systems, and the event bus into a single turn.
package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/engine/dice"
	"github.com/nathoo/sagacore/engine/dispatch"
	"github.com/nathoo/sagacore/engine/events"
	"github.com/nathoo/sagacore/engine/parser"
	"github.com/nathoo/sagacore/engine/systems"
	"github.com/nathoo/sagacore/types"
)

// Mode selects the dispatch discipline.
type Mode string

const (
	// ModeBroadcast runs every system registered for a verb.
	ModeBroadcast Mode = "broadcast"
	// ModeChain offers the command to systems until one answers.
	ModeChain Mode = "chain"
)

// ErrUnknownMode is returned by New for an unrecognised Mode.
var ErrUnknownMode = errors.New("unknown dispatch mode")

// Options configures a new Engine. The zero value is usable.
type Options struct {
	Mode    Mode  // default ModeBroadcast
	Seed    int64 // 0 keeps the world's saved seed and position
	History bool  // record event history on the bus
	Logger  *slog.Logger
	Now     func() time.Time // clock for quest timestamps, default time.Now

	// Disabled names systems that start switched off. A disabled system
	// answers no commands and receives no events.
	Disabled []string
}

// Engine holds the world, the systems, and the event bus.
type Engine struct {
	World *types.World
	Bus   *events.Bus
	RNG   *dice.RNG

	env         *systems.Env
	mode        Mode
	broadcaster *dispatch.Broadcaster
	chain       *dispatch.Chain
	registry    *dispatch.Registry
	log         *slog.Logger
}

// New creates an engine around a validated world.
func New(w *types.World, opts Options) (*Engine, error) {
	if opts.Mode == "" {
		opts.Mode = ModeBroadcast
	}
	if opts.Mode != ModeBroadcast && opts.Mode != ModeChain {
		return nil, errors.Wrapf(ErrUnknownMode, "%q", opts.Mode)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		World: w,
		Bus:   events.NewBus(log, opts.History),
		mode:  opts.Mode,
		log:   log,
	}
	if opts.Seed != 0 {
		w.RNGSeed, w.RNGPosition = opts.Seed, 0
	}
	e.RNG = dice.Restore(w.RNGSeed, w.RNGPosition)

	e.env = systems.NewEnv(e.Bus, e.RNG, log)
	if opts.Now != nil {
		e.env.Now = opts.Now
	}

	world := systems.NewWorld(e.env)
	inventory := systems.NewInventory(e.env)
	combat := systems.NewCombat(e.env)
	quests := systems.NewQuests(e.env)
	effects := systems.NewEffects(e.env, quests)
	ambient := systems.NewAmbient(e.env)

	e.registry = dispatch.NewRegistry()
	e.registry.Define(world.Name())
	e.registry.Define(ambient.Name(), world.Name())
	e.registry.Define(inventory.Name(), world.Name())
	e.registry.Define(combat.Name(), world.Name())
	e.registry.Define(quests.Name(), world.Name())
	e.registry.Define(effects.Name(), quests.Name())
	for _, name := range opts.Disabled {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if err := e.registry.Disable(name); err != nil {
			return nil, err
		}
	}
	if err := e.registry.Validate(); err != nil {
		return nil, err
	}
	e.Bus.SetActive(e.registry.Enabled)

	quests.Attach(e.Bus)
	effects.Attach(e.Bus)

	e.broadcaster = dispatch.NewBroadcaster(log)
	e.broadcaster.Register(world, world.Verbs()...)
	e.broadcaster.Register(ambient, ambient.Verbs()...)
	e.broadcaster.Register(inventory, inventory.Verbs()...)
	e.broadcaster.Register(combat, combat.Verbs()...)
	e.broadcaster.Register(quests, quests.Verbs()...)
	e.broadcaster.Use(e.registry)

	e.chain = dispatch.NewChain(log,
		dispatch.Adapt(inventory),
		dispatch.Adapt(combat),
		dispatch.Adapt(quests),
		dispatch.Adapt(world),
	)
	e.chain.Use(e.registry)

	log.Debug("engine ready", "mode", string(e.mode), "seed", w.RNGSeed, "position", w.RNGPosition,
		"disabled", opts.Disabled)
	return e, nil
}

// Mode returns the dispatch discipline in use.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Systems returns every system name in start-up order.
func (e *Engine) Systems() []string {
	return e.registry.Names()
}

// SystemEnabled reports whether the named system is switched on.
func (e *Engine) SystemEnabled(name string) bool {
	return e.registry.Enabled(name)
}

// EnableSystem switches a system on. It fails if the system needs one
// that is still off.
func (e *Engine) EnableSystem(name string) error {
	return e.toggle(name, e.registry.Enable)
}

// DisableSystem switches a system off. It fails if an enabled system
// still needs it.
func (e *Engine) DisableSystem(name string) error {
	return e.toggle(name, e.registry.Disable)
}

func (e *Engine) toggle(name string, apply func(string) error) error {
	was := e.registry.Enabled(name)
	if err := apply(name); err != nil {
		return err
	}
	if err := e.registry.Validate(); err != nil {
		if was {
			_ = e.registry.Enable(name)
		} else {
			_ = e.registry.Disable(name)
		}
		return err
	}
	e.log.Info("system switched", "system", name, "enabled", e.registry.Enabled(name))
	return nil
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed, position int64) {
	e.RNG = dice.Restore(seed, position)
	e.env.RNG = e.RNG
	e.World.RNGSeed, e.World.RNGPosition = seed, position
}

// SetWorld swaps in a different world, typically a loaded save, and
// restores its RNG.
func (e *Engine) SetWorld(w *types.World) {
	e.World = w
	e.RestoreRNG(w.RNGSeed, w.RNGPosition)
}

// Intro returns the adventure title, its intro text, and the starting room.
func (e *Engine) Intro() []string {
	var out []string
	if e.World.Title != "" {
		out = append(out, e.World.Title)
	}
	if e.World.Intro != "" {
		out = append(out, e.World.Intro)
	}
	if len(out) > 0 {
		out = append(out, "")
	}
	return append(out, systems.DescribeRoom(e.World, e.World.Player.Room)...)
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result
	w := e.World

	// 1. Parse input. Empty input costs no turn.
	cmd, err := parser.Parse(input)
	if errors.Is(err, parser.ErrEmptyInput) {
		result.Output = []string{"What do you want to do?"}
		return result
	}

	// 2. Game over blocks everything but quitting.
	if w.GameOver && cmd.Verb != types.VerbQuit {
		result.Output = []string{"Game over. Use /load to restore a save or /quit to exit."}
		return result
	}

	// 3. Log the command.
	w.CommandLog = append(w.CommandLog, strings.TrimSpace(input))

	// 4. Give handlers a chance to veto the whole command.
	ev, lines := e.env.Publish(w, "command.received", map[string]any{
		"verb": string(cmd.Verb), "raw": cmd.Raw, "target": strings.ToLower(cmd.Arg),
	}, true, "engine")
	result.Output = append(result.Output, lines...)

	// 5. Dispatch.
	if !ev.Cancelled {
		switch e.mode {
		case ModeChain:
			result.Output = append(result.Output, e.chain.Dispatch(w, input)...)
		default:
			if len(e.broadcaster.Systems(cmd.Verb)) == 0 {
				cmd.Verb = types.VerbUnknown
			}
			result.Output = append(result.Output, e.broadcaster.Dispatch(w, cmd)...)
		}
		result.Quit = cmd.Verb == types.VerbQuit
	}
	result.Output = append(result.Output, e.env.TakePending()...)
	result.Events = e.env.TakePublished()

	// 6. Track RNG position for save/load.
	w.RNGSeed = e.RNG.Seed()
	w.RNGPosition = e.RNG.Position()

	// 7. Increment turn count.
	w.Turn++
	return result
}
