// Package events implements a synchronous, priority-ordered event bus.
// Handlers run one at a time in a fixed order; a cancellable event stops
// at the first handler that cancels it.
package events

import (
	"log/slog"
	"maps"
	"sort"

	"github.com/nathoo/sagacore/types"
)

// Priority orders handlers. Lower values run first.
type Priority int

const (
	Critical Priority = 0
	High     Priority = 10
	Normal   Priority = 50
	Low      Priority = 100
)

// Wildcard subscribes to every event name.
const Wildcard = "*"

// Event is a single published event.
type Event struct {
	Seq         int
	Name        string
	Source      string
	Data        map[string]any
	Cancellable bool
	Cancelled   bool
}

// Cancel stops further handlers from running. It returns false and does
// nothing when the event is not cancellable.
func (e *Event) Cancel() bool {
	if !e.Cancellable {
		return false
	}
	e.Cancelled = true
	return true
}

// String returns a string datum, or "" if absent or not a string.
func (e *Event) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Int returns an int datum, or 0 if absent or not an int.
func (e *Event) Int(key string) int {
	n, _ := e.Data[key].(int)
	return n
}

// Handler reacts to an event. The world is passed at publish time so
// handlers need not capture it.
type Handler interface {
	HandleEvent(w *types.World, ev *Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(w *types.World, ev *Event)

func (f HandlerFunc) HandleEvent(w *types.World, ev *Event) { f(w, ev) }

type subscription struct {
	id       string
	priority Priority
	handler  Handler
	order    int
}

// Bus dispatches events to subscribed handlers.
type Bus struct {
	subs          map[string][]subscription
	history       []Event
	recordHistory bool
	seq           int
	order         int
	active        func(subscriberID string) bool
	log           *slog.Logger
}

// NewBus creates a bus. History is kept only when recordHistory is set.
func NewBus(log *slog.Logger, recordHistory bool) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		subs:          map[string][]subscription{},
		recordHistory: recordHistory,
		log:           log,
	}
}

// Subscribe registers a handler for an event name, or for Wildcard.
// A subscriber re-registering under the same name replaces its old entry.
func (b *Bus) Subscribe(name string, h Handler, p Priority, subscriberID string) {
	b.Unsubscribe(name, subscriberID)
	b.order++
	b.subs[name] = append(b.subs[name], subscription{
		id:       subscriberID,
		priority: p,
		handler:  h,
		order:    b.order,
	})
	b.log.Debug("event subscribed", "event", name, "subscriber", subscriberID, "priority", int(p))
}

// Unsubscribe removes a subscriber from an event name. Returns false if
// it was not subscribed.
func (b *Bus) Unsubscribe(name, subscriberID string) bool {
	list := b.subs[name]
	for i, s := range list {
		if s.id == subscriberID {
			b.subs[name] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// SetActive installs a check consulted on every publish. Subscribers for
// which it returns false keep their subscriptions but are skipped. A nil
// check lets every subscriber run.
func (b *Bus) SetActive(active func(subscriberID string) bool) {
	b.active = active
}

// ClearSubscriptions drops every subscription.
func (b *Bus) ClearSubscriptions() {
	b.subs = map[string][]subscription{}
}

// plan returns the handlers for an event name merged with the wildcard
// handlers, in execution order.
func (b *Bus) plan(name string) []subscription {
	var plan []subscription
	all := b.subs[name]
	if name != Wildcard {
		all = append(all[:len(all):len(all)], b.subs[Wildcard]...)
	}
	for _, s := range all {
		if b.active == nil || b.active(s.id) {
			plan = append(plan, s)
		}
	}
	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].priority != plan[j].priority {
			return plan[i].priority < plan[j].priority
		}
		if plan[i].id != plan[j].id {
			return plan[i].id < plan[j].id
		}
		return plan[i].order < plan[j].order
	})
	return plan
}

// Subscribers returns the subscriber ids that would handle name, in order.
func (b *Bus) Subscribers(name string) []string {
	var ids []string
	for _, s := range b.plan(name) {
		ids = append(ids, s.id)
	}
	return ids
}

// Publish dispatches an event synchronously and returns it after all
// handlers ran or one cancelled it.
func (b *Bus) Publish(w *types.World, name string, data map[string]any, source string, cancellable bool) *Event {
	b.seq++
	ev := &Event{
		Seq:         b.seq,
		Name:        name,
		Source:      source,
		Data:        data,
		Cancellable: cancellable,
	}
	if ev.Data == nil {
		ev.Data = map[string]any{}
	}

	for _, s := range b.plan(name) {
		b.invoke(w, s, ev)
		if ev.Cancelled {
			b.log.Debug("event cancelled", "event", name, "by", s.id)
			break
		}
	}

	if b.recordHistory {
		snap := *ev
		snap.Data = maps.Clone(ev.Data)
		b.history = append(b.history, snap)
	}
	return ev
}

func (b *Bus) invoke(w *types.World, s subscription, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", "event", ev.Name, "subscriber", s.id, "panic", r)
		}
	}()
	s.handler.HandleEvent(w, ev)
}

// AllHistory as a History limit returns every matching event.
const AllHistory = -1

// History returns up to limit of the most recent recorded events whose
// name matches filter, oldest first. An empty filter matches everything.
// A limit of 0 returns nothing; AllHistory (or any negative limit) lifts
// the limit. Always empty
// when history is disabled.
func (b *Bus) History(filter string, limit int) []Event {
	if !b.recordHistory || limit == 0 {
		return nil
	}
	var matched []Event
	for _, ev := range b.history {
		if filter == "" || ev.Name == filter {
			matched = append(matched, ev)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched
}

// ClearHistory forgets every recorded event.
func (b *Bus) ClearHistory() {
	b.history = nil
}
