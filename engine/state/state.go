// Package state provides lookups and atomic mutations over the World.
// Every mutation validates its preconditions before touching anything, so a
// failed call leaves the World unchanged.
package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/types"
)

var (
	ErrNotHere      = errors.New("not here")
	ErrNotCarried   = errors.New("not carried")
	ErrNotTakeable  = errors.New("not takeable")
	ErrNotWearable  = errors.New("not wearable")
	ErrNotWeapon    = errors.New("not a weapon")
	ErrUnknownItem  = errors.New("unknown item")
	ErrUnknownActor = errors.New("unknown monster")
)

// NewWorld returns an empty world with every map allocated.
func NewWorld() *types.World {
	return &types.World{
		Rooms:    map[string]types.Room{},
		Items:    map[string]types.Item{},
		Monsters: map[string]types.Monster{},
		Player: types.Player{
			Inventory:     []string{},
			WeaponAbility: map[string]int{},
			Reputation:    map[string]int{},
		},
		Quests:     NewTracker(),
		Variables:  map[string]string{},
		CommandLog: []string{},
	}
}

// NewTracker returns an empty quest tracker.
func NewTracker() types.QuestTracker {
	return types.QuestTracker{
		Available: map[string]types.Quest{},
		Active:    map[string]types.Quest{},
		Completed: map[string]bool{},
		Failed:    map[string]bool{},
		Abandoned: map[string]bool{},
		Finished:  map[string]types.Quest{},
		History:   []types.QuestRecord{},
	}
}

// CurrentRoom returns the player's room. A missing room means the world
// was never validated, so this panics rather than returning an error.
func CurrentRoom(w *types.World) types.Room {
	room, ok := w.Rooms[w.Player.Room]
	if !ok {
		panic(fmt.Sprintf("state: player room %q does not exist", w.Player.Room))
	}
	return room
}

// SortedExits returns the exit directions of a room in alphabetical order.
func SortedExits(room types.Room) []string {
	dirs := make([]string, 0, len(room.Exits))
	for dir := range room.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// MovePlayer moves the player through an exit of the current room.
// Returns the destination and false when there is no such exit.
func MovePlayer(w *types.World, dir string) (string, bool) {
	room := CurrentRoom(w)
	dest, ok := room.Exits[dir]
	if !ok {
		return "", false
	}
	if _, ok := w.Rooms[dest]; !ok {
		return "", false
	}
	w.Player.Room = dest
	return dest, true
}

// ItemsInRoom returns the items lying in a room, in placement order.
func ItemsInRoom(w *types.World, roomID string) []types.Item {
	room, ok := w.Rooms[roomID]
	if !ok {
		return nil
	}
	var result []types.Item
	for _, id := range room.Items {
		if item, ok := w.Items[id]; ok {
			result = append(result, item)
		}
	}
	return result
}

// MonstersInRoom returns the living monsters in a room, sorted by id.
func MonstersInRoom(w *types.World, roomID string) []types.Monster {
	var result []types.Monster
	for _, m := range w.Monsters {
		if m.RoomID == roomID && !m.Dead {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// HasItem reports whether the player carries the item.
func HasItem(w *types.World, itemID string) bool {
	for _, id := range w.Player.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// matchItem resolves a player-typed name against candidates. Exact id or
// name matches win over substring matches.
func matchItem(items []types.Item, name string) (types.Item, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return types.Item{}, false
	}
	for _, it := range items {
		if strings.ToLower(it.ID) == q || strings.ToLower(it.Name) == q {
			return it, true
		}
	}
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			return it, true
		}
	}
	return types.Item{}, false
}

// FindRoomItem finds an item by name in the player's current room.
func FindRoomItem(w *types.World, name string) (types.Item, bool) {
	return matchItem(ItemsInRoom(w, w.Player.Room), name)
}

// FindInventoryItem finds a carried item by name.
func FindInventoryItem(w *types.World, name string) (types.Item, bool) {
	var carried []types.Item
	for _, id := range w.Player.Inventory {
		if it, ok := w.Items[id]; ok {
			carried = append(carried, it)
		}
	}
	return matchItem(carried, name)
}

// FindMonster finds a living monster by name or id in the current room.
func FindMonster(w *types.World, name string) (types.Monster, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	monsters := MonstersInRoom(w, w.Player.Room)
	for _, m := range monsters {
		if strings.ToLower(m.ID) == q || strings.ToLower(m.Name) == q {
			return m, true
		}
	}
	for _, m := range monsters {
		if q != "" && strings.Contains(strings.ToLower(m.Name), q) {
			return m, true
		}
	}
	return types.Monster{}, false
}

// TakeItem moves an item from the current room into the inventory.
func TakeItem(w *types.World, itemID string) error {
	item, ok := w.Items[itemID]
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "take %q", itemID)
	}
	room := CurrentRoom(w)
	idx := indexOf(room.Items, itemID)
	if idx < 0 {
		return errors.Wrapf(ErrNotHere, "take %q", itemID)
	}
	if !item.Takeable {
		return errors.Wrapf(ErrNotTakeable, "take %q", itemID)
	}

	room.Items = removeAt(room.Items, idx)
	w.Rooms[room.ID] = room
	item.Location = types.Location{Kind: types.LocInventory}
	w.Items[itemID] = item
	w.Player.Inventory = append(w.Player.Inventory, itemID)
	return nil
}

// DropItem moves a carried item into the current room, unequipping it first.
func DropItem(w *types.World, itemID string) error {
	item, ok := w.Items[itemID]
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "drop %q", itemID)
	}
	idx := indexOf(w.Player.Inventory, itemID)
	if idx < 0 {
		return errors.Wrapf(ErrNotCarried, "drop %q", itemID)
	}
	room := CurrentRoom(w)

	w.Player.Inventory = removeAt(w.Player.Inventory, idx)
	unequip(w, itemID)
	room.Items = append(room.Items, itemID)
	w.Rooms[room.ID] = room
	item.Location = types.Location{Kind: types.LocRoom, ID: room.ID}
	w.Items[itemID] = item
	return nil
}

// ConsumeItem removes a carried item from the world entirely.
func ConsumeItem(w *types.World, itemID string) error {
	item, ok := w.Items[itemID]
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "consume %q", itemID)
	}
	idx := indexOf(w.Player.Inventory, itemID)
	if idx < 0 {
		return errors.Wrapf(ErrNotCarried, "consume %q", itemID)
	}
	w.Player.Inventory = removeAt(w.Player.Inventory, idx)
	if HasItem(w, itemID) {
		return nil
	}
	unequip(w, itemID)
	item.Location = types.Location{Kind: types.LocNowhere}
	w.Items[itemID] = item
	return nil
}

// GiveItem puts an item straight into the inventory, wherever it was.
func GiveItem(w *types.World, itemID string) error {
	item, ok := w.Items[itemID]
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "give %q", itemID)
	}
	if item.Location.Kind == types.LocRoom {
		if room, ok := w.Rooms[item.Location.ID]; ok {
			if idx := indexOf(room.Items, itemID); idx >= 0 {
				room.Items = removeAt(room.Items, idx)
				w.Rooms[room.ID] = room
			}
		}
	}
	item.Location = types.Location{Kind: types.LocInventory}
	w.Items[itemID] = item
	if !HasItem(w, itemID) {
		w.Player.Inventory = append(w.Player.Inventory, itemID)
	}
	return nil
}

// Wear equips a carried wearable item as armor.
func Wear(w *types.World, itemID string) error {
	item, ok := w.Items[itemID]
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "wear %q", itemID)
	}
	if !HasItem(w, itemID) {
		return errors.Wrapf(ErrNotCarried, "wear %q", itemID)
	}
	if !item.Wearable && !item.IsArmor {
		return errors.Wrapf(ErrNotWearable, "wear %q", itemID)
	}
	if prev := w.Player.EquippedArmor; prev != "" && prev != itemID {
		unequip(w, prev)
	}
	item.Location = types.Location{Kind: types.LocWorn}
	w.Items[itemID] = item
	w.Player.EquippedArmor = itemID
	return nil
}

// Wield readies a carried weapon.
func Wield(w *types.World, itemID string) error {
	item, ok := w.Items[itemID]
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "wield %q", itemID)
	}
	if !HasItem(w, itemID) {
		return errors.Wrapf(ErrNotCarried, "wield %q", itemID)
	}
	if !item.IsWeapon && item.Category != types.CategoryWeapon {
		return errors.Wrapf(ErrNotWeapon, "wield %q", itemID)
	}
	w.Player.EquippedWeapon = itemID
	return nil
}

// unequip clears equipment slots holding the item and returns worn items
// to the plain inventory location.
func unequip(w *types.World, itemID string) {
	if w.Player.EquippedWeapon == itemID {
		w.Player.EquippedWeapon = ""
	}
	if w.Player.EquippedArmor == itemID {
		w.Player.EquippedArmor = ""
		if item, ok := w.Items[itemID]; ok && item.Location.Kind == types.LocWorn {
			item.Location = types.Location{Kind: types.LocInventory}
			w.Items[itemID] = item
		}
	}
}

// PlayerArmor returns the absorption of the player's worn armor.
func PlayerArmor(w *types.World) int {
	if w.Player.EquippedArmor == "" {
		return 0
	}
	return w.Items[w.Player.EquippedArmor].ArmorValue
}

// DamagePlayer lowers player health, clamped at zero. Returns true if the
// player died.
func DamagePlayer(w *types.World, amount int) bool {
	w.Player.Health -= amount
	if w.Player.Health < 0 {
		w.Player.Health = 0
	}
	return w.Player.Health == 0
}

// HealPlayer raises player health up to hardiness.
func HealPlayer(w *types.World, amount int) int {
	before := w.Player.Health
	w.Player.Health += amount
	if w.Player.Health > w.Player.Hardiness {
		w.Player.Health = w.Player.Hardiness
	}
	return w.Player.Health - before
}

// DamageMonster lowers a monster's health. A monster reaching zero dies,
// drops what it carries into its room, and never comes back.
func DamageMonster(w *types.World, monsterID string, amount int) (killed bool, err error) {
	m, ok := w.Monsters[monsterID]
	if !ok {
		return false, errors.Wrapf(ErrUnknownActor, "damage %q", monsterID)
	}
	if m.Dead {
		return false, nil
	}
	m.Health -= amount
	if m.Health < 0 {
		m.Health = 0
	}
	if m.Health == 0 {
		m.Dead = true
		killed = true
	}
	w.Monsters[monsterID] = m
	if killed {
		dropMonsterItems(w, m)
	}
	return killed, nil
}

func dropMonsterItems(w *types.World, m types.Monster) {
	room, ok := w.Rooms[m.RoomID]
	if !ok {
		return
	}
	ids := make([]string, 0)
	for id, it := range w.Items {
		if it.Location.Kind == types.LocMonster && it.Location.ID == m.ID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		it := w.Items[id]
		it.Location = types.Location{Kind: types.LocRoom, ID: room.ID}
		w.Items[id] = it
		room.Items = append(room.Items, id)
	}
	w.Rooms[room.ID] = room
}

// SetMonsterDisposition updates a monster's attitude.
func SetMonsterDisposition(w *types.World, monsterID string, d types.Disposition) {
	if m, ok := w.Monsters[monsterID]; ok {
		m.Disposition = d
		w.Monsters[monsterID] = m
	}
}

// GetVar returns a script variable. Unset variables return "".
func GetVar(w *types.World, name string) string {
	return w.Variables[name]
}

// SetVar stores a script variable.
func SetVar(w *types.World, name, value string) {
	if w.Variables == nil {
		w.Variables = map[string]string{}
	}
	w.Variables[name] = value
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(list []string, i int) []string {
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
