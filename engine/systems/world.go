package systems

import (
	"fmt"
	"strings"

	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// World handles looking around, moving, help, quitting, and commands no
// other system understands.
type World struct {
	env *Env
}

// NewWorld creates the world system.
func NewWorld(env *Env) *World {
	return &World{env: env}
}

func (s *World) Name() string { return "world" }

// Verbs lists the commands this system handles.
func (s *World) Verbs() []types.Verb {
	return []types.Verb{types.VerbHelp, types.VerbLook, types.VerbMove, types.VerbQuit, types.VerbUnknown}
}

func (s *World) Handle(w *types.World, cmd types.Command) []string {
	switch cmd.Verb {
	case types.VerbHelp:
		return helpLines
	case types.VerbLook:
		return DescribeRoom(w, w.Player.Room)
	case types.VerbMove:
		return s.move(w, cmd.Direction)
	case types.VerbQuit:
		return []string{"Goodbye."}
	case types.VerbUnknown:
		return []string{fmt.Sprintf("Unknown command: %s", cmd.Raw)}
	}
	return nil
}

var helpLines = []string{
	"Commands:",
	"  look (l)                 Describe the room",
	"  examine <thing> (x)      Look closely at something",
	"  n/s/e/w, go <dir>        Move",
	"  take/get <item>          Pick something up",
	"  drop <item>              Put something down",
	"  use <item>               Eat, drink, read or use an item",
	"  wear/wield <item>        Equip armor or a weapon",
	"  say <text>               Speak aloud",
	"  attack <monster>         Fight",
	"  inventory (i)            Check what you're carrying",
	"  status                   Show your condition",
	"  quests                   Show your quest journal",
	"  accept/complete <quest>  Manage quests",
	"  quit (q)                 Leave the game",
}

func (s *World) move(w *types.World, dir string) []string {
	from := state.CurrentRoom(w)
	to, ok := from.Exits[dir]
	if !ok {
		return []string{"You can't go that way."}
	}

	data := map[string]any{"from": from.ID, "to": to, "direction": dir, "target": to}
	ev, lines := s.env.Publish(w, "player.moving", data, true, s.Name())
	if ev.Cancelled {
		if len(lines) == 0 {
			lines = []string{"Something stops you."}
		}
		return lines
	}

	if _, ok := state.MovePlayer(w, dir); !ok {
		return []string{"You can't go that way."}
	}

	out := append(lines, DescribeRoom(w, to)...)
	out = append(out, s.springTrap(w)...)
	_, after := s.env.Publish(w, "player.moved", data, false, s.Name())
	return append(out, after...)
}

// springTrap fires a trap in the player's room once.
func (s *World) springTrap(w *types.World) []string {
	room := state.CurrentRoom(w)
	if !room.Trap || w.GameOver {
		return nil
	}
	room.Trap = false
	w.Rooms[room.ID] = room

	dmg := s.env.RNG.Roll(6)
	out := []string{fmt.Sprintf("A trap springs! You take %d damage.", dmg)}
	if state.DamagePlayer(w, dmg) {
		w.GameOver = true
		out = append(out, "You have died.")
		_, lines := s.env.Publish(w, "player.died", map[string]any{"cause": "trap", "target": room.ID}, false, s.Name())
		out = append(out, lines...)
	}
	return out
}

// DescribeRoom produces the standard room description.
func DescribeRoom(w *types.World, roomID string) []string {
	room, ok := w.Rooms[roomID]
	if !ok {
		return []string{"You are somewhere unknown."}
	}

	out := []string{room.Title}
	if room.Dark {
		out = append(out, "It is too dark to see much.")
	} else {
		if room.Description != "" {
			out = append(out, room.Description)
		}
		if items := state.ItemsInRoom(w, roomID); len(items) > 0 {
			names := make([]string, 0, len(items))
			for _, it := range items {
				names = append(names, it.Name)
			}
			out = append(out, "You see: "+strings.Join(names, ", ")+".")
		}
	}

	for _, m := range state.MonstersInRoom(w, roomID) {
		out = append(out, fmt.Sprintf("%s is here (%s).", m.Name, m.Disposition))
	}

	if dirs := state.SortedExits(room); len(dirs) > 0 {
		out = append(out, "Exits: "+strings.Join(dirs, ", ")+".")
	} else {
		out = append(out, "There are no obvious exits.")
	}
	return out
}
