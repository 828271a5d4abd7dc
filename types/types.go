// Package types defines the shared data structures for the SagaCore engine.
// This package contains only type definitions, no logic.
package types

// Canonical directions. Exits may use any string, but the parser only
// produces these four.
const (
	North = "north"
	South = "south"
	East  = "east"
	West  = "west"
)

// Verb identifies the kind of a parsed command.
type Verb string

const (
	VerbHelp      Verb = "help"
	VerbLook      Verb = "look"
	VerbInventory Verb = "inventory"
	VerbMove      Verb = "move"
	VerbTake      Verb = "take"
	VerbDrop      Verb = "drop"
	VerbUse       Verb = "use"
	VerbSay       Verb = "say"
	VerbQuit      Verb = "quit"
	VerbExamine   Verb = "examine"
	VerbAttack    Verb = "attack"
	VerbStatus    Verb = "status"
	VerbWear      Verb = "wear"
	VerbWield     Verb = "wield"
	VerbQuests    Verb = "quests"
	VerbAccept    Verb = "accept"
	VerbComplete  Verb = "complete"
	VerbUnknown   Verb = "unknown"
)

// Command is the parsed representation of one input line.
type Command struct {
	Verb      Verb
	Direction string // set for VerbMove
	Arg       string // original casing preserved
	Raw       string // trimmed input line
}

// ItemCategory classifies items for use and combat.
type ItemCategory string

const (
	CategoryWeapon    ItemCategory = "weapon"
	CategoryArmor     ItemCategory = "armor"
	CategoryTreasure  ItemCategory = "treasure"
	CategoryReadable  ItemCategory = "readable"
	CategoryEdible    ItemCategory = "edible"
	CategoryDrinkable ItemCategory = "drinkable"
	CategoryContainer ItemCategory = "container"
	CategoryNormal    ItemCategory = "normal"
)

// LocationKind names the holder an item currently sits in.
type LocationKind string

const (
	LocInventory LocationKind = "inventory"
	LocWorn      LocationKind = "worn"
	LocRoom      LocationKind = "room"
	LocMonster   LocationKind = "monster"
	LocNowhere   LocationKind = "nowhere" // consumed or destroyed
)

// Location is where an item is. ID is the room or monster id for those kinds.
type Location struct {
	Kind LocationKind `json:"kind"`
	ID   string       `json:"id,omitempty"`
}

// Disposition is a monster's attitude toward the player.
type Disposition string

const (
	Friendly Disposition = "friendly"
	Neutral  Disposition = "neutral"
	Hostile  Disposition = "hostile"
)

// Room is a location in the world.
type Room struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits"`
	Dark        bool              `json:"dark,omitempty"`
	SafeZone    bool              `json:"safe_zone,omitempty"`
	Trap        bool              `json:"trap,omitempty"`
	Items       []string          `json:"items"`
}

// Item is any object that can be carried, worn, or lie in a room.
type Item struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    ItemCategory `json:"category"`
	Weight      int          `json:"weight"`
	Value       int          `json:"value"`
	IsWeapon    bool         `json:"is_weapon,omitempty"`
	WeaponType  string       `json:"weapon_type,omitempty"`
	WeaponDice  int          `json:"weapon_dice,omitempty"`
	WeaponSides int          `json:"weapon_sides,omitempty"`
	IsArmor     bool         `json:"is_armor,omitempty"`
	ArmorValue  int          `json:"armor_value,omitempty"`
	Takeable    bool         `json:"takeable"`
	Wearable    bool         `json:"wearable,omitempty"`
	Location    Location     `json:"location"`
}

// Monster is a creature or NPC placed in a room.
type Monster struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	RoomID      string      `json:"room_id"`
	Hardiness   int         `json:"hardiness"`
	Agility     int         `json:"agility"`
	Courage     int         `json:"courage"`
	Disposition Disposition `json:"disposition"`
	WeaponID    string      `json:"weapon_id,omitempty"`
	ArmorWorn   int         `json:"armor_worn,omitempty"`
	Gold        int         `json:"gold"`
	Dead        bool        `json:"dead,omitempty"`
	Health      int         `json:"health"`
}

// Player is the single player character.
type Player struct {
	Name           string         `json:"name"`
	Hardiness      int            `json:"hardiness"`
	Agility        int            `json:"agility"`
	Charisma       int            `json:"charisma"`
	WeaponAbility  map[string]int `json:"weapon_ability"`
	ArmorExpertise int            `json:"armor_expertise"`
	Gold           int            `json:"gold"`
	Room           string         `json:"room"`
	Health         int            `json:"health"`
	Inventory      []string       `json:"inventory"`
	EquippedWeapon string         `json:"equipped_weapon,omitempty"`
	EquippedArmor  string         `json:"equipped_armor,omitempty"`
	Level          int            `json:"level"`
	Experience     int            `json:"experience"`
	Reputation     map[string]int `json:"reputation"`
}

// Effect is a scripted reaction bound to an event.
type Effect struct {
	ID     string `json:"id"`
	Event  string `json:"event"`
	Target string `json:"target,omitempty"` // matches the event's "target" datum when set
	Script string `json:"script"`
	Once   bool   `json:"once,omitempty"`
	Fired  bool   `json:"fired,omitempty"`
}

// World is the full mutable game state. It owns every entity by value;
// everything else refers to entities by id.
type World struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Intro       string             `json:"intro,omitempty"`
	StartRoom   string             `json:"start_room"`
	Rooms       map[string]Room    `json:"rooms"`
	Items       map[string]Item    `json:"items"`
	Monsters    map[string]Monster `json:"monsters"`
	Player      Player             `json:"player"`
	Quests      QuestTracker       `json:"quests"`
	Effects     []Effect           `json:"effects"`
	Variables   map[string]string  `json:"variables"`
	Turn        int                `json:"turn"`
	CommandLog  []string           `json:"command_log"`
	GameOver    bool               `json:"game_over"`
	RNGSeed     int64              `json:"rng_seed"`
	RNGPosition int64              `json:"rng_position"`
}

// Result is the output of a single game step.
type Result struct {
	Output []string
	Events []string // names of events published during the step
	Quit   bool
}
