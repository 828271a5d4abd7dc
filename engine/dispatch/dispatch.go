// Package dispatch routes commands to systems. Chain offers a command to
// responders in order until one answers; Broadcaster runs every system
// registered for the command and concatenates their output.
//
// Systems run strictly one after another and receive the World explicitly.
// Neither dispatcher owns the World.
package dispatch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/sagacore/engine/parser"
	"github.com/nathoo/sagacore/types"
)

// FailureLine is shown when a system panics mid-command.
const FailureLine = "Something went wrong. Nothing happens."

// System handles parsed commands. A nil or empty result means the system
// had nothing to say.
type System interface {
	Name() string
	Handle(w *types.World, cmd types.Command) []string
}

// Responder is offered a tokenized command. ok is false when it passes.
type Responder interface {
	Name() string
	Respond(w *types.World, verb string, args []string) (lines []string, ok bool)
}

// Adapt lets a System take part in a Chain. The tokens are re-parsed into
// a Command; a system producing no output passes.
func Adapt(s System) Responder {
	return adapted{s}
}

type adapted struct{ sys System }

func (a adapted) Name() string { return a.sys.Name() }

func (a adapted) Respond(w *types.World, verb string, args []string) ([]string, bool) {
	line := strings.TrimSpace(verb + " " + strings.Join(args, " "))
	cmd, err := parser.Parse(line)
	if err != nil {
		return nil, false
	}
	out := a.sys.Handle(w, cmd)
	return out, len(out) > 0
}

// Chain is a first-responder dispatcher.
type Chain struct {
	responders []Responder
	registry   *Registry
	log        *slog.Logger
}

// NewChain creates a chain trying responders in the given order.
func NewChain(log *slog.Logger, responders ...Responder) *Chain {
	if log == nil {
		log = slog.Default()
	}
	return &Chain{responders: responders, log: log}
}

// Add appends a responder to the end of the chain.
func (c *Chain) Add(r Responder) {
	c.responders = append(c.responders, r)
}

// Use makes the chain skip responders the registry has disabled.
func (c *Chain) Use(r *Registry) {
	c.registry = r
}

// Dispatch offers raw to each enabled responder until one produces output.
func (c *Chain) Dispatch(w *types.World, raw string) []string {
	raw = strings.TrimSpace(raw)
	tokens := parser.Tokenize(raw)
	if len(tokens) == 0 {
		return nil
	}
	verb := strings.ToLower(tokens[0])
	args := tokens[1:]

	for _, r := range c.responders {
		if !c.registry.Enabled(r.Name()) {
			continue
		}
		out, ok, failed := c.try(w, r, verb, args)
		if failed {
			return []string{FailureLine}
		}
		if ok {
			return out
		}
	}
	return []string{fmt.Sprintf("Unknown command: %s", raw)}
}

func (c *Chain) try(w *types.World, r Responder, verb string, args []string) (out []string, ok, failed bool) {
	defer func() {
		if p := recover(); p != nil {
			c.log.Error("responder panicked", "responder", r.Name(), "verb", verb, "panic", p)
			out, ok, failed = nil, false, true
		}
	}()
	out, ok = r.Respond(w, verb, args)
	return out, ok, false
}

// AnyVerb registers a system for every command.
const AnyVerb types.Verb = "*"

type registration struct {
	verb types.Verb
	sys  System
}

// Broadcaster runs every system registered for a command's verb, in
// registration order, and concatenates their output.
type Broadcaster struct {
	regs     []registration
	registry *Registry
	log      *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &Broadcaster{log: log}
}

// Register adds a system for the given verbs. AnyVerb matches all.
func (b *Broadcaster) Register(s System, verbs ...types.Verb) {
	for _, v := range verbs {
		b.regs = append(b.regs, registration{verb: v, sys: s})
	}
}

// Use makes the broadcaster skip systems the registry has disabled.
func (b *Broadcaster) Use(r *Registry) {
	b.registry = r
}

func (b *Broadcaster) matches(r registration, verb types.Verb) bool {
	return (r.verb == verb || r.verb == AnyVerb) && b.registry.Enabled(r.sys.Name())
}

// Systems returns the names of enabled systems that would run for verb,
// in order.
func (b *Broadcaster) Systems(verb types.Verb) []string {
	var names []string
	for _, r := range b.regs {
		if b.matches(r, verb) {
			names = append(names, r.sys.Name())
		}
	}
	return names
}

// Dispatch runs the matching systems and returns their combined output.
func (b *Broadcaster) Dispatch(w *types.World, cmd types.Command) []string {
	var out []string
	for _, r := range b.regs {
		if !b.matches(r, cmd.Verb) {
			continue
		}
		lines, failed := b.run(w, r.sys, cmd)
		if failed {
			return append(out, FailureLine)
		}
		out = append(out, lines...)
	}
	return out
}

func (b *Broadcaster) run(w *types.World, s System, cmd types.Command) (lines []string, failed bool) {
	defer func() {
		if p := recover(); p != nil {
			b.log.Error("system panicked", "system", s.Name(), "verb", string(cmd.Verb), "panic", p)
			lines, failed = nil, true
		}
	}()
	return s.Handle(w, cmd), false
}
