// Package script runs adventure effect scripts in a sandboxed Lua VM.
// A fresh VM is created per run and discarded afterwards.
package script

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/sagacore/engine/events"
	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// Hooks connect scripts to engine services outside the World. Nil hooks
// make the matching functions no-ops.
type Hooks struct {
	Progress  func(w *types.World, kind types.ObjectiveKind, target string, amount int)
	FailQuest func(w *types.World, id string) bool
}

// Run executes src with the world and triggering event exposed through a
// small API:
//
//	say(text)            append a narrative line
//	get_var(name)        read a world variable ("" if unset)
//	set_var(name, value) write a world variable
//	give_gold(n)         add gold to the player (negative takes)
//	give_item(id)        move an item into the inventory
//	has_item(id)         whether the player carries an item
//	player_room()        the player's room id
//	cancel()             cancel the triggering event if it allows it
//	progress(kind, target[, n])  credit quest objectives
//	fail_quest(id)       fail an active quest
//	event                table of the event's data, plus event.name
//
// Writes are staged while the script runs and applied in order only when
// it finishes without error; reads see the staged writes. A failed run
// changes nothing and produces no lines. There is no time limit; only
// cancelling ctx stops a running script.
func Run(ctx context.Context, w *types.World, src string, ev *events.Event, hooks Hooks) ([]string, error) {
	L := NewState()
	defer L.Close()
	L.SetContext(ctx)

	tx := newTxn(w)
	register(L, tx, ev, hooks)

	if err := L.DoString(src); err != nil {
		return nil, errors.Wrap(err, "running effect script")
	}
	tx.commit()
	return tx.out, nil
}

// txn stages a script's writes against w.
type txn struct {
	w     *types.World
	vars  map[string]string
	gold  int
	given map[string]bool
	ops   []func()
	out   []string
}

func newTxn(w *types.World) *txn {
	return &txn{w: w, vars: map[string]string{}, gold: w.Player.Gold, given: map[string]bool{}}
}

func (t *txn) getVar(name string) string {
	if v, ok := t.vars[name]; ok {
		return v
	}
	return state.GetVar(t.w, name)
}

func (t *txn) hasItem(id string) bool {
	return t.given[id] || state.HasItem(t.w, id)
}

func (t *txn) commit() {
	for _, op := range t.ops {
		op()
	}
}

func register(L *lua.LState, tx *txn, ev *events.Event, hooks Hooks) {
	w := tx.w
	L.SetGlobal("say", L.NewFunction(func(L *lua.LState) int {
		tx.out = append(tx.out, L.CheckString(1))
		return 0
	}))
	L.SetGlobal("get_var", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(tx.getVar(L.CheckString(1))))
		return 1
	}))
	L.SetGlobal("set_var", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		value := L.ToStringMeta(L.CheckAny(2)).String()
		tx.vars[name] = value
		tx.ops = append(tx.ops, func() { state.SetVar(w, name, value) })
		return 0
	}))
	L.SetGlobal("give_gold", L.NewFunction(func(L *lua.LState) int {
		tx.gold = max(tx.gold+L.CheckInt(1), 0)
		gold := tx.gold
		tx.ops = append(tx.ops, func() { w.Player.Gold = gold })
		return 0
	}))
	L.SetGlobal("give_item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if _, ok := w.Items[id]; !ok {
			L.RaiseError("%s", errors.Wrapf(state.ErrUnknownItem, "give %q", id).Error())
		}
		tx.given[id] = true
		// The item's existence was checked above, so this cannot fail.
		tx.ops = append(tx.ops, func() { _ = state.GiveItem(w, id) })
		return 0
	}))
	L.SetGlobal("has_item", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(tx.hasItem(L.CheckString(1))))
		return 1
	}))
	L.SetGlobal("player_room", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(w.Player.Room))
		return 1
	}))
	L.SetGlobal("cancel", L.NewFunction(func(L *lua.LState) int {
		ok := ev != nil && ev.Cancellable
		if ok {
			tx.ops = append(tx.ops, func() { ev.Cancel() })
		}
		L.Push(lua.LBool(ok))
		return 1
	}))

	L.SetGlobal("progress", L.NewFunction(func(L *lua.LState) int {
		kind := types.ObjectiveKind(L.CheckString(1))
		target := L.CheckString(2)
		amount := L.OptInt(3, 1)
		if hooks.Progress != nil {
			tx.ops = append(tx.ops, func() { hooks.Progress(w, kind, target, amount) })
		}
		return 0
	}))
	L.SetGlobal("fail_quest", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		_, active := w.Quests.Active[id]
		ok := hooks.FailQuest != nil && active
		if ok {
			tx.ops = append(tx.ops, func() { hooks.FailQuest(w, id) })
		}
		L.Push(lua.LBool(ok))
		return 1
	}))

	tbl := L.NewTable()
	if ev != nil {
		tbl.RawSetString("name", lua.LString(ev.Name))
		for k, v := range ev.Data {
			tbl.RawSetString(k, toLua(v))
		}
	}
	L.SetGlobal("event", tbl)
}

func toLua(v any) lua.LValue {
	switch x := v.(type) {
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case bool:
		return lua.LBool(x)
	case nil:
		return lua.LNil
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// NewState returns a Lua VM with only the safe libraries open and the
// sandbox applied. The caller closes it.
func NewState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	return L
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "print",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
