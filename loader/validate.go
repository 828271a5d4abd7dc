package loader

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies a kind of validation problem.
type Code string

const (
	CodeMissingID            Code = "missing_id"
	CodeMissingTitle         Code = "missing_title"
	CodeMissingStartRoom     Code = "missing_start_room"
	CodeNoRooms              Code = "no_rooms"
	CodeEmptyRoomID          Code = "empty_room_id"
	CodeDuplicateRoom        Code = "duplicate_room"
	CodeReservedRoomID       Code = "reserved_room_id"
	CodeEmptyExitDirection   Code = "empty_exit_direction"
	CodeEmptyExitDestination Code = "empty_exit_destination"
	CodeUnknownExit          Code = "unknown_exit_destination"
	CodeUnknownStartRoom     Code = "unknown_start_room"
	CodeEmptyItemID          Code = "empty_item_id"
	CodeDuplicateItem        Code = "duplicate_item"
	CodeUnknownItemLocation  Code = "unknown_item_location"
	CodeEmptyMonsterID       Code = "empty_monster_id"
	CodeDuplicateMonster     Code = "duplicate_monster"
	CodeUnknownMonsterRoom   Code = "unknown_monster_room"
	CodeUnknownItem          Code = "unknown_item"
	CodeEmptyQuestID         Code = "empty_quest_id"
	CodeDuplicateQuest       Code = "duplicate_quest"
	CodeUnknownQuest         Code = "unknown_quest"
	CodeEmptyEffectEvent     Code = "empty_effect_event"
)

// Problem is one validation failure.
type Problem struct {
	Code    Code
	Field   string
	Message string
}

func (p Problem) String() string {
	return p.Field + ": " + p.Message
}

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []Problem
	Warnings []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, p := range e.Errors {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(msgs, "\n  "))
}

// Has reports whether any error carries code.
func (e *ValidationError) Has(code Code) bool {
	for _, p := range e.Errors {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(code Code, field, format string, args ...any) {
	e.Errors = append(e.Errors, Problem{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate checks a document for structural and referential integrity.
// Every problem is collected; the error is a *ValidationError. Warnings
// are returned whether or not the document is valid.
func Validate(doc *Document) (warnings []string, err error) {
	ve := &ValidationError{}

	if blank(doc.ID) {
		ve.add(CodeMissingID, "id", "adventure.id is required")
	}
	if blank(doc.Title) {
		ve.add(CodeMissingTitle, "title", "adventure.title is required")
	}
	if blank(doc.StartRoom) {
		ve.add(CodeMissingStartRoom, "start_room", "adventure.start_room is required")
	}
	if len(doc.Rooms) == 0 {
		ve.add(CodeNoRooms, "rooms", "adventure.rooms must not be empty")
	}

	// Rooms.
	rooms := map[string]bool{}
	for i, room := range doc.Rooms {
		field := fmt.Sprintf("rooms[%d].id", i)
		switch {
		case blank(room.ID):
			ve.add(CodeEmptyRoomID, field, "room.id is required")
			continue
		case rooms[room.ID]:
			ve.add(CodeDuplicateRoom, field, "duplicate room id: %s", room.ID)
		case isReservedLocation(room.ID):
			ve.add(CodeReservedRoomID, field, "room id %q is reserved", room.ID)
		}
		rooms[room.ID] = true
	}
	if !blank(doc.StartRoom) && len(doc.Rooms) > 0 && !rooms[doc.StartRoom] {
		ve.add(CodeUnknownStartRoom, "start_room", "start_room does not exist: %s", doc.StartRoom)
	}
	for _, room := range doc.Rooms {
		for _, dir := range sortedKeys(room.Exits) {
			dest := room.Exits[dir]
			field := fmt.Sprintf("rooms[%s].exits[%s]", room.ID, dir)
			switch {
			case blank(dir):
				ve.add(CodeEmptyExitDirection, field, "room '%s' has an empty exit direction", room.ID)
			case blank(dest):
				ve.add(CodeEmptyExitDestination, field, "room '%s' exit '%s' has empty destination", room.ID, dir)
			case !rooms[dest]:
				ve.add(CodeUnknownExit, field, "room '%s' exit '%s' points to unknown room '%s'", room.ID, dir, dest)
			}
		}
	}

	// Monsters come before items so items can be held by them.
	monsters := map[string]bool{}
	for i, m := range doc.Monsters {
		field := fmt.Sprintf("monsters[%d]", i)
		switch {
		case blank(m.ID):
			ve.add(CodeEmptyMonsterID, field+".id", "monster.id is required")
			continue
		case monsters[m.ID]:
			ve.add(CodeDuplicateMonster, field+".id", "duplicate monster id: %s", m.ID)
		}
		monsters[m.ID] = true
		if !rooms[m.RoomID] {
			ve.add(CodeUnknownMonsterRoom, field+".room_id", "monster '%s' is in unknown room '%s'", m.ID, m.RoomID)
		}
	}

	// Items, wherever they are declared.
	items := map[string]bool{}
	for _, it := range allItems(doc) {
		switch {
		case blank(it.doc.ID):
			ve.add(CodeEmptyItemID, it.field+".id", "item.id is required")
			continue
		case items[it.doc.ID]:
			ve.add(CodeDuplicateItem, it.field+".id", "duplicate item id: %s", it.doc.ID)
		}
		items[it.doc.ID] = true
		if loc := it.location(); !isReservedLocation(loc) && !rooms[loc] && !monsters[loc] {
			ve.add(CodeUnknownItemLocation, it.field+".location", "item '%s' location '%s' is not a room or monster", it.doc.ID, loc)
		}
	}
	for i, m := range doc.Monsters {
		if m.WeaponID != "" && !items[m.WeaponID] {
			ve.add(CodeUnknownItem, fmt.Sprintf("monsters[%d].weapon_id", i), "monster '%s' wields unknown item '%s'", m.ID, m.WeaponID)
		}
	}
	if p := doc.Player; p != nil {
		for i, id := range p.Inventory {
			if !items[id] {
				ve.add(CodeUnknownItem, fmt.Sprintf("player.inventory[%d]", i), "player carries unknown item '%s'", id)
			}
		}
		if p.EquippedWeapon != "" && !items[p.EquippedWeapon] {
			ve.add(CodeUnknownItem, "player.equipped_weapon", "player equips unknown item '%s'", p.EquippedWeapon)
		}
		if p.EquippedArmor != "" && !items[p.EquippedArmor] {
			ve.add(CodeUnknownItem, "player.equipped_armor", "player equips unknown item '%s'", p.EquippedArmor)
		}
	}

	// Quests.
	quests := map[string]bool{}
	for i, q := range doc.Quests {
		field := fmt.Sprintf("quests[%d].id", i)
		switch {
		case blank(q.ID):
			ve.add(CodeEmptyQuestID, field, "quest.id is required")
			continue
		case quests[q.ID]:
			ve.add(CodeDuplicateQuest, field, "duplicate quest id: %s", q.ID)
		}
		quests[q.ID] = true
	}
	for _, q := range doc.Quests {
		for _, ref := range q.Prerequisites {
			if !quests[ref] {
				ve.add(CodeUnknownQuest, fmt.Sprintf("quests[%s].prerequisites", q.ID), "quest '%s' requires unknown quest '%s'", q.ID, ref)
			}
		}
		for _, ref := range q.Blocks {
			if !quests[ref] {
				ve.add(CodeUnknownQuest, fmt.Sprintf("quests[%s].blocks", q.ID), "quest '%s' blocks unknown quest '%s'", q.ID, ref)
			}
		}
		if len(q.Stages) == 0 {
			warnings = append(warnings, fmt.Sprintf("quest %q has no stages", q.ID))
		}
	}

	for i, eff := range doc.Effects {
		if blank(eff.Event) {
			ve.add(CodeEmptyEffectEvent, fmt.Sprintf("effects[%d].event", i), "effect '%s' has no event", eff.ID)
		}
	}

	if rooms[doc.StartRoom] {
		warnings = append(warnings, unreachable(doc)...)
	}
	ve.Warnings = warnings

	if len(ve.Errors) > 0 {
		return warnings, ve
	}
	return warnings, nil
}

// unreachable warns about rooms no path of exits leads to from the start.
func unreachable(doc *Document) []string {
	exits := map[string]map[string]string{}
	for _, room := range doc.Rooms {
		exits[room.ID] = room.Exits
	}
	seen := map[string]bool{doc.StartRoom: true}
	queue := []string{doc.StartRoom}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dest := range exits[id] {
			if _, ok := exits[dest]; ok && !seen[dest] {
				seen[dest] = true
				queue = append(queue, dest)
			}
		}
	}

	var warnings []string
	for _, room := range doc.Rooms {
		if !seen[room.ID] && !blank(room.ID) {
			warnings = append(warnings, fmt.Sprintf("room %q is unreachable from %q", room.ID, doc.StartRoom))
		}
	}
	return warnings
}

func isReservedLocation(loc string) bool {
	return loc == LocationInventory || loc == LocationWorn || loc == LocationNowhere
}

// declaredItem is an item together with where in the document it was
// declared, which decides its default location.
type declaredItem struct {
	doc         ItemDoc
	field       string
	defaultRoom string // set for items listed inside a room
	carried     bool   // set for player_start_inventory items
}

func (d declaredItem) location() string {
	switch {
	case d.carried:
		return LocationInventory
	case d.doc.Location != "":
		return d.doc.Location
	case d.defaultRoom != "":
		return d.defaultRoom
	default:
		return LocationInventory
	}
}

// allItems lists every item in declaration order: room items first, then
// top-level items, then the starting inventory.
func allItems(doc *Document) []declaredItem {
	var out []declaredItem
	for _, room := range doc.Rooms {
		for i, it := range room.Items {
			out = append(out, declaredItem{doc: it, field: fmt.Sprintf("rooms[%s].items[%d]", room.ID, i), defaultRoom: room.ID})
		}
	}
	for i, it := range doc.Items {
		out = append(out, declaredItem{doc: it, field: fmt.Sprintf("items[%d]", i)})
	}
	for i, it := range doc.PlayerStartInventory {
		out = append(out, declaredItem{doc: it, field: fmt.Sprintf("player_start_inventory[%d]", i), carried: true})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
