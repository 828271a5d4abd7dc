package systems

import (
	"fmt"

	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// Combat handles attacking monsters and the status display.
type Combat struct {
	env *Env
}

// NewCombat creates the combat system.
func NewCombat(env *Env) *Combat {
	return &Combat{env: env}
}

func (s *Combat) Name() string { return "combat" }

// Verbs lists the commands this system handles.
func (s *Combat) Verbs() []types.Verb {
	return []types.Verb{types.VerbAttack, types.VerbStatus}
}

func (s *Combat) Handle(w *types.World, cmd types.Command) []string {
	switch cmd.Verb {
	case types.VerbAttack:
		return s.attack(w, cmd.Arg)
	case types.VerbStatus:
		return Status(w)
	}
	return nil
}

// pickTarget resolves the attack target. With no name, the first hostile
// monster in the room is chosen.
func pickTarget(w *types.World, name string) (types.Monster, string) {
	if name != "" {
		m, ok := state.FindMonster(w, name)
		if !ok {
			return types.Monster{}, "You don't see that here."
		}
		return m, ""
	}
	for _, m := range state.MonstersInRoom(w, w.Player.Room) {
		if m.Disposition == types.Hostile {
			return m, ""
		}
	}
	return types.Monster{}, "Attack what?"
}

func (s *Combat) attack(w *types.World, name string) []string {
	target, msg := pickTarget(w, name)
	if msg != "" {
		return []string{msg}
	}
	if state.CurrentRoom(w).SafeZone {
		return []string{"This is a place of peace. You cannot fight here."}
	}

	var out []string
	if target.Disposition != types.Hostile {
		state.SetMonsterDisposition(w, target.ID, types.Hostile)
		out = append(out, fmt.Sprintf("The %s turns on you!", target.Name))
	}

	dmg := s.playerDamage(w) - target.ArmorWorn
	if dmg < 1 {
		dmg = 1
	}
	killed, err := state.DamageMonster(w, target.ID, dmg)
	if err != nil {
		return []string{"You don't see that here."}
	}
	out = append(out, fmt.Sprintf("You strike the %s for %d damage.", target.Name, dmg))
	_, lines := s.env.Publish(w, "monster.attacked", map[string]any{
		"monster": target.ID, "damage": dmg, "target": target.ID,
	}, false, s.Name())
	out = append(out, lines...)

	if killed {
		out = append(out, fmt.Sprintf("The %s dies!", target.Name))
		if target.Gold > 0 {
			w.Player.Gold += target.Gold
			m := w.Monsters[target.ID]
			m.Gold = 0
			w.Monsters[target.ID] = m
			out = append(out, fmt.Sprintf("You find %d gold.", target.Gold))
		}
		_, lines := s.env.Publish(w, "monster.killed", map[string]any{
			"monster": target.ID, "room": w.Player.Room, "target": target.ID,
		}, false, s.Name())
		return append(out, lines...)
	}

	return append(out, s.counterattack(w, w.Monsters[target.ID])...)
}

// playerDamage rolls the wielded weapon's dice, or 1d3 bare-handed.
func (s *Combat) playerDamage(w *types.World) int {
	if id := w.Player.EquippedWeapon; id != "" {
		if wpn, ok := w.Items[id]; ok {
			return s.env.RNG.RollDice(wpn.WeaponDice, wpn.WeaponSides)
		}
	}
	return s.env.RNG.Roll(3)
}

func (s *Combat) counterattack(w *types.World, m types.Monster) []string {
	raw := s.env.RNG.Roll(6)
	if wpn, ok := w.Items[m.WeaponID]; ok && m.WeaponID != "" {
		raw = s.env.RNG.RollDice(wpn.WeaponDice, wpn.WeaponSides)
	}
	dmg := raw - state.PlayerArmor(w)
	if dmg <= 0 {
		return []string{fmt.Sprintf("The %s attacks, but your armor absorbs the blow.", m.Name)}
	}

	out := []string{fmt.Sprintf("The %s hits you for %d damage.", m.Name, dmg)}
	if state.DamagePlayer(w, dmg) {
		w.GameOver = true
		out = append(out, "You have died.")
		_, lines := s.env.Publish(w, "player.died", map[string]any{"cause": m.ID, "target": m.ID}, false, s.Name())
		out = append(out, lines...)
	}
	return out
}

// Status describes the player's condition.
func Status(w *types.World) []string {
	p := w.Player
	weapon, armor := "none", "none"
	if it, ok := w.Items[p.EquippedWeapon]; ok {
		weapon = it.Name
	}
	if it, ok := w.Items[p.EquippedArmor]; ok {
		armor = it.Name
	}
	return []string{
		p.Name,
		fmt.Sprintf("Health: %d/%d", p.Health, p.Hardiness),
		fmt.Sprintf("Hardiness: %d  Agility: %d  Charisma: %d", p.Hardiness, p.Agility, p.Charisma),
		fmt.Sprintf("Level: %d  Experience: %d", p.Level, p.Experience),
		fmt.Sprintf("Gold: %d", p.Gold),
		fmt.Sprintf("Weapon: %s", weapon),
		fmt.Sprintf("Armor: %s", armor),
	}
}
