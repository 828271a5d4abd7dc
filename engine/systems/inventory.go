package systems

import (
	"fmt"
	"strings"

	"github.com/gertd/go-pluralize"

	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// Inventory handles carrying, examining, using, and equipping items, and
// speaking aloud.
type Inventory struct {
	env    *Env
	plural *pluralize.Client
}

// NewInventory creates the inventory system.
func NewInventory(env *Env) *Inventory {
	return &Inventory{env: env, plural: pluralize.NewClient()}
}

func (s *Inventory) Name() string { return "inventory" }

// Verbs lists the commands this system handles.
func (s *Inventory) Verbs() []types.Verb {
	return []types.Verb{
		types.VerbInventory, types.VerbTake, types.VerbDrop, types.VerbExamine,
		types.VerbUse, types.VerbWear, types.VerbWield, types.VerbSay,
	}
}

func (s *Inventory) Handle(w *types.World, cmd types.Command) []string {
	switch cmd.Verb {
	case types.VerbInventory:
		return s.list(w)
	case types.VerbTake:
		return s.take(w, cmd.Arg)
	case types.VerbDrop:
		return s.drop(w, cmd.Arg)
	case types.VerbExamine:
		return s.examine(w, cmd.Arg)
	case types.VerbUse:
		return s.use(w, cmd.Arg)
	case types.VerbWear:
		return s.wear(w, cmd.Arg)
	case types.VerbWield:
		return s.wield(w, cmd.Arg)
	case types.VerbSay:
		return s.say(w, cmd.Arg)
	}
	return nil
}

func (s *Inventory) list(w *types.World) []string {
	gold := fmt.Sprintf("Gold: %d.", w.Player.Gold)
	if len(w.Player.Inventory) == 0 {
		return []string{"You are carrying nothing.", gold}
	}

	counts := map[string]int{}
	var order []string
	for _, id := range w.Player.Inventory {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	names := make([]string, 0, len(order))
	for _, id := range order {
		it := w.Items[id]
		name := it.Name
		if counts[id] > 1 {
			name = s.plural.Pluralize(it.Name, counts[id], true)
		}
		switch id {
		case w.Player.EquippedArmor:
			name += " (worn)"
		case w.Player.EquippedWeapon:
			name += " (wielded)"
		}
		names = append(names, name)
	}
	return []string{"You are carrying: " + strings.Join(names, ", ") + ".", gold}
}

func (s *Inventory) take(w *types.World, name string) []string {
	if state.CurrentRoom(w).Dark {
		return []string{"It is too dark to find anything."}
	}
	item, ok := state.FindRoomItem(w, name)
	if !ok {
		return []string{"You don't see that here."}
	}
	if !item.Takeable {
		return []string{"You can't take that."}
	}

	data := map[string]any{"item": item.ID, "name": item.Name, "room": w.Player.Room, "target": item.ID}
	ev, lines := s.env.Publish(w, "item.taking", data, true, s.Name())
	if ev.Cancelled {
		if len(lines) == 0 {
			lines = []string{"You can't take that right now."}
		}
		return lines
	}

	if err := state.TakeItem(w, item.ID); err != nil {
		s.env.Log.Warn("take failed after checks", "item", item.ID, "err", err)
		return []string{"You can't take that."}
	}
	out := append(lines, fmt.Sprintf("You take the %s.", item.Name))
	_, after := s.env.Publish(w, "item.taken", data, false, s.Name())
	return append(out, after...)
}

func (s *Inventory) drop(w *types.World, name string) []string {
	item, ok := state.FindInventoryItem(w, name)
	if !ok {
		return []string{"You don't have that."}
	}

	data := map[string]any{"item": item.ID, "name": item.Name, "room": w.Player.Room, "target": item.ID}
	ev, lines := s.env.Publish(w, "item.dropping", data, true, s.Name())
	if ev.Cancelled {
		if len(lines) == 0 {
			lines = []string{"You can't drop that right now."}
		}
		return lines
	}

	if err := state.DropItem(w, item.ID); err != nil {
		s.env.Log.Warn("drop failed after checks", "item", item.ID, "err", err)
		return []string{"You don't have that."}
	}
	out := append(lines, fmt.Sprintf("You drop the %s.", item.Name))
	_, after := s.env.Publish(w, "item.dropped", data, false, s.Name())
	return append(out, after...)
}

func (s *Inventory) examine(w *types.World, name string) []string {
	item, ok := state.FindInventoryItem(w, name)
	if !ok && !state.CurrentRoom(w).Dark {
		item, ok = state.FindRoomItem(w, name)
	}
	if ok {
		desc := item.Description
		if desc == "" {
			desc = fmt.Sprintf("You see nothing special about the %s.", item.Name)
		}
		out := []string{desc}
		if item.IsWeapon {
			out = append(out, fmt.Sprintf("It deals %dd%d damage.", item.WeaponDice, item.WeaponSides))
		}
		if item.IsArmor {
			out = append(out, fmt.Sprintf("It absorbs %d damage.", item.ArmorValue))
		}
		_, lines := s.env.Publish(w, "item.examined", map[string]any{"item": item.ID, "target": item.ID}, false, s.Name())
		return append(out, lines...)
	}

	if m, ok := state.FindMonster(w, name); ok {
		desc := m.Description
		if desc == "" {
			desc = fmt.Sprintf("You see nothing special about the %s.", m.Name)
		}
		return []string{desc, fmt.Sprintf("It looks %s. Health: %d/%d.", m.Disposition, m.Health, m.Hardiness)}
	}
	return []string{"You don't see that here."}
}

func (s *Inventory) use(w *types.World, name string) []string {
	item, ok := state.FindInventoryItem(w, name)
	if !ok {
		return []string{"You don't have that."}
	}

	var out []string
	switch item.Category {
	case types.CategoryEdible, types.CategoryDrinkable:
		verb := "eat"
		if item.Category == types.CategoryDrinkable {
			verb = "drink"
		}
		if err := state.ConsumeItem(w, item.ID); err != nil {
			return []string{"You don't have that."}
		}
		out = append(out, fmt.Sprintf("You %s the %s.", verb, item.Name))
		if healed := state.HealPlayer(w, item.Value); healed > 0 {
			out = append(out, fmt.Sprintf("You feel better. (+%d health)", healed))
		}
	case types.CategoryReadable:
		out = append(out, fmt.Sprintf("You read the %s.", item.Name))
		if item.Description != "" {
			out = append(out, item.Description)
		}
	}

	_, lines := s.env.Publish(w, "item.used", map[string]any{"item": item.ID, "room": w.Player.Room, "target": item.ID}, false, s.Name())
	out = append(out, lines...)
	if len(out) == 0 {
		out = []string{fmt.Sprintf("You use the %s. Nothing happens.", item.Name)}
	}
	return out
}

func (s *Inventory) wear(w *types.World, name string) []string {
	item, ok := state.FindInventoryItem(w, name)
	if !ok {
		return []string{"You don't have that."}
	}
	if err := state.Wear(w, item.ID); err != nil {
		return []string{fmt.Sprintf("You can't wear the %s.", item.Name)}
	}
	return []string{fmt.Sprintf("You wear the %s.", item.Name)}
}

func (s *Inventory) wield(w *types.World, name string) []string {
	item, ok := state.FindInventoryItem(w, name)
	if !ok {
		return []string{"You don't have that."}
	}
	if err := state.Wield(w, item.ID); err != nil {
		return []string{fmt.Sprintf("The %s is not a weapon.", item.Name)}
	}
	return []string{fmt.Sprintf("You wield the %s.", item.Name)}
}

func (s *Inventory) say(w *types.World, text string) []string {
	out := []string{fmt.Sprintf("You say, \"%s\"", text)}
	_, lines := s.env.Publish(w, "player.said", map[string]any{
		"text": text, "room": w.Player.Room, "target": strings.ToLower(text),
	}, false, s.Name())
	return append(out, lines...)
}
