package loader

import "github.com/nathoo/sagacore/types"

// Document is an adventure as written on disk. It accepts both the
// minimal form (rooms with inline items, player_start_inventory) and the
// full form (top-level items, monsters, quests, effects, player).
type Document struct {
	ID                   string            `json:"id"`
	Title                string            `json:"title"`
	Intro                string            `json:"intro,omitempty"`
	StartRoom            string            `json:"start_room"`
	Rooms                []RoomDoc         `json:"rooms"`
	Items                []ItemDoc         `json:"items,omitempty"`
	Monsters             []MonsterDoc      `json:"monsters,omitempty"`
	Quests               []QuestDoc        `json:"quests,omitempty"`
	Effects              []EffectDoc       `json:"effects,omitempty"`
	Player               *PlayerDoc        `json:"player,omitempty"`
	PlayerStartInventory []ItemDoc         `json:"player_start_inventory,omitempty"`
	Variables            map[string]string `json:"variables,omitempty"`
}

// RoomDoc is a room. Name is accepted as an alias for Title.
type RoomDoc struct {
	ID          string            `json:"id"`
	Title       string            `json:"title,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits,omitempty"`
	Items       []ItemDoc         `json:"items,omitempty"`
	IsDark      bool              `json:"is_dark,omitempty"`
	IsSafe      bool              `json:"is_safe,omitempty"`
	HasTrap     bool              `json:"has_trap,omitempty"`
}

// Item locations with a special meaning. Anything else names a room or
// a monster.
const (
	LocationInventory = "inventory"
	LocationWorn      = "worn"
	LocationNowhere   = "nowhere"
)

// ItemDoc is an item. Pointer fields distinguish "absent" from zero so
// their documented defaults apply.
type ItemDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type,omitempty"`
	Weight      *int   `json:"weight,omitempty"`
	Value       int    `json:"value,omitempty"`
	IsWeapon    bool   `json:"is_weapon,omitempty"`
	WeaponType  string `json:"weapon_type,omitempty"`
	WeaponDice  *int   `json:"weapon_dice,omitempty"`
	WeaponSides *int   `json:"weapon_sides,omitempty"`
	IsArmor     bool   `json:"is_armor,omitempty"`
	ArmorValue  int    `json:"armor_value,omitempty"`
	IsTakeable  *bool  `json:"is_takeable,omitempty"`
	IsWearable  bool   `json:"is_wearable,omitempty"`
	Location    string `json:"location,omitempty"`
}

// MonsterDoc is a monster or NPC.
type MonsterDoc struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RoomID        string `json:"room_id"`
	Hardiness     *int   `json:"hardiness,omitempty"`
	Agility       *int   `json:"agility,omitempty"`
	Friendliness  string `json:"friendliness,omitempty"`
	Courage       *int   `json:"courage,omitempty"`
	WeaponID      string `json:"weapon_id,omitempty"`
	ArmorWorn     int    `json:"armor_worn,omitempty"`
	Gold          int    `json:"gold,omitempty"`
	IsDead        bool   `json:"is_dead,omitempty"`
	CurrentHealth *int   `json:"current_health,omitempty"`
}

// PlayerDoc overrides the default player. Inventory, when present, is the
// exact carried list; otherwise it is derived from item locations.
type PlayerDoc struct {
	Name           string         `json:"name,omitempty"`
	Hardiness      *int           `json:"hardiness,omitempty"`
	Agility        *int           `json:"agility,omitempty"`
	Charisma       *int           `json:"charisma,omitempty"`
	WeaponAbility  map[string]int `json:"weapon_ability,omitempty"`
	ArmorExpertise int            `json:"armor_expertise,omitempty"`
	Gold           *int           `json:"gold,omitempty"`
	CurrentHealth  *int           `json:"current_health,omitempty"`
	Inventory      []string       `json:"inventory,omitempty"`
	EquippedWeapon string         `json:"equipped_weapon,omitempty"`
	EquippedArmor  string         `json:"equipped_armor,omitempty"`
	Level          int            `json:"level,omitempty"`
	Experience     int            `json:"experience,omitempty"`
	Reputation     map[string]int `json:"reputation,omitempty"`
}

// QuestDoc is a quest definition.
type QuestDoc struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Giver          string             `json:"giver,omitempty"`
	GiverLevel     int                `json:"giver_level,omitempty"`
	Difficulty     types.Difficulty   `json:"difficulty,omitempty"`
	Stages         []types.QuestStage `json:"stages"`
	Reward         types.QuestReward  `json:"reward"`
	Prerequisites  []string           `json:"prerequisites,omitempty"`
	Blocks         []string           `json:"blocks,omitempty"`
	TimeLimitHours int                `json:"time_limit_hours,omitempty"`
}

// EffectDoc is a scripted effect bound to an event.
type EffectDoc struct {
	ID     string `json:"id"`
	Event  string `json:"event"`
	Target string `json:"target,omitempty"`
	Script string `json:"script"`
	Once   bool   `json:"once,omitempty"`
}
