package state

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/types"
)

// testWorld returns a village/forest world with a key, a sword and a wolf.
func testWorld() *types.World {
	w := NewWorld()
	w.Rooms["village"] = types.Room{
		ID:    "village",
		Title: "Quiet Village",
		Exits: map[string]string{"north": "forest"},
		Items: []string{"key", "statue"},
	}
	w.Rooms["forest"] = types.Room{
		ID:    "forest",
		Title: "Whispering Forest",
		Exits: map[string]string{"south": "village"},
		Items: []string{},
	}
	w.Items["key"] = types.Item{
		ID: "key", Name: "Ancient Key", Takeable: true,
		Location: types.Location{Kind: types.LocRoom, ID: "village"},
	}
	w.Items["statue"] = types.Item{
		ID: "statue", Name: "Stone Statue",
		Location: types.Location{Kind: types.LocRoom, ID: "village"},
	}
	w.Items["fang"] = types.Item{
		ID: "fang", Name: "Wolf Fang", Takeable: true,
		Location: types.Location{Kind: types.LocMonster, ID: "wolf"},
	}
	w.Items["mail"] = types.Item{
		ID: "mail", Name: "Chain Mail", Takeable: true, IsArmor: true, Wearable: true, ArmorValue: 2,
		Location: types.Location{Kind: types.LocInventory},
	}
	w.Monsters["wolf"] = types.Monster{
		ID: "wolf", Name: "Grey Wolf", RoomID: "forest", Hardiness: 5, Health: 5, Gold: 3,
	}
	w.Player.Room = "village"
	w.Player.Hardiness = 12
	w.Player.Health = 12
	w.Player.Inventory = []string{"mail"}
	return w
}

func TestMovePlayer(t *testing.T) {
	w := testWorld()

	dest, ok := MovePlayer(w, "north")
	if !ok || dest != "forest" {
		t.Fatalf("MovePlayer(north) = %q, %v; want forest, true", dest, ok)
	}
	if w.Player.Room != "forest" {
		t.Errorf("room = %q, want forest", w.Player.Room)
	}

	if _, ok := MovePlayer(w, "east"); ok {
		t.Error("MovePlayer(east) should fail")
	}
	if w.Player.Room != "forest" {
		t.Errorf("room after failed move = %q, want forest", w.Player.Room)
	}
}

func TestMovePlayerEveryExit(t *testing.T) {
	w := testWorld()
	for roomID, room := range w.Rooms {
		for dir, dest := range room.Exits {
			w.Player.Room = roomID
			got, ok := MovePlayer(w, dir)
			if !ok || got != dest || w.Player.Room != dest {
				t.Errorf("%s -%s-> got %q (%v), want %q", roomID, dir, got, ok, dest)
			}
		}
	}
}

func TestCurrentRoomPanicsOnBrokenWorld(t *testing.T) {
	w := testWorld()
	w.Player.Room = "void"
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing room")
		}
	}()
	CurrentRoom(w)
}

func TestTakeAndDrop(t *testing.T) {
	w := testWorld()

	if err := TakeItem(w, "key"); err != nil {
		t.Fatalf("TakeItem: %v", err)
	}
	if !HasItem(w, "key") {
		t.Error("key should be in inventory")
	}
	if got := w.Items["key"].Location; got.Kind != types.LocInventory {
		t.Errorf("key location = %+v, want inventory", got)
	}
	for _, id := range w.Rooms["village"].Items {
		if id == "key" {
			t.Error("village still lists key")
		}
	}

	MovePlayer(w, "north")
	if err := DropItem(w, "key"); err != nil {
		t.Fatalf("DropItem: %v", err)
	}
	forest := w.Rooms["forest"]
	if len(forest.Items) != 1 || forest.Items[0] != "key" {
		t.Errorf("forest items = %v, want [key]", forest.Items)
	}
	if got := w.Items["key"].Location; got != (types.Location{Kind: types.LocRoom, ID: "forest"}) {
		t.Errorf("key location = %+v, want room forest", got)
	}
	if len(w.Rooms["village"].Items) != 1 {
		t.Errorf("village items = %v, want only statue", w.Rooms["village"].Items)
	}
}

func TestTakeItemErrors(t *testing.T) {
	tests := []struct {
		name string
		item string
		want error
	}{
		{"not takeable", "statue", ErrNotTakeable},
		{"not in room", "fang", ErrNotHere},
		{"unknown", "ghost", ErrUnknownItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testWorld()
			before := len(w.Player.Inventory)
			err := TakeItem(w, tt.item)
			if !errors.Is(err, tt.want) {
				t.Fatalf("TakeItem(%q) = %v, want %v", tt.item, err, tt.want)
			}
			if len(w.Player.Inventory) != before {
				t.Error("failed take changed inventory")
			}
		})
	}
}

func TestDropNotCarried(t *testing.T) {
	w := testWorld()
	if err := DropItem(w, "key"); !errors.Is(err, ErrNotCarried) {
		t.Errorf("DropItem = %v, want ErrNotCarried", err)
	}
}

func TestFindItems(t *testing.T) {
	w := testWorld()
	tests := []struct {
		query  string
		wantID string
		found  bool
	}{
		{"Ancient Key", "key", true},
		{"ancient key", "key", true},
		{"key", "key", true},
		{"statue", "statue", true},
		{"sword", "", false},
	}
	for _, tt := range tests {
		got, ok := FindRoomItem(w, tt.query)
		if ok != tt.found || got.ID != tt.wantID {
			t.Errorf("FindRoomItem(%q) = %q, %v; want %q, %v", tt.query, got.ID, ok, tt.wantID, tt.found)
		}
	}

	if got, ok := FindInventoryItem(w, "mail"); !ok || got.ID != "mail" {
		t.Errorf("FindInventoryItem(mail) = %q, %v", got.ID, ok)
	}
}

func TestWearAndDropUnequips(t *testing.T) {
	w := testWorld()
	if err := Wear(w, "mail"); err != nil {
		t.Fatalf("Wear: %v", err)
	}
	if PlayerArmor(w) != 2 {
		t.Errorf("PlayerArmor = %d, want 2", PlayerArmor(w))
	}
	if w.Items["mail"].Location.Kind != types.LocWorn {
		t.Errorf("mail location = %v, want worn", w.Items["mail"].Location)
	}
	if err := DropItem(w, "mail"); err != nil {
		t.Fatalf("DropItem: %v", err)
	}
	if w.Player.EquippedArmor != "" || PlayerArmor(w) != 0 {
		t.Error("dropping worn armor should unequip it")
	}
}

func TestWieldRequiresWeapon(t *testing.T) {
	w := testWorld()
	if err := Wield(w, "mail"); !errors.Is(err, ErrNotWeapon) {
		t.Errorf("Wield(mail) = %v, want ErrNotWeapon", err)
	}
}

func TestDamageMonster(t *testing.T) {
	w := testWorld()

	killed, err := DamageMonster(w, "wolf", 2)
	if err != nil || killed {
		t.Fatalf("first hit: killed=%v err=%v", killed, err)
	}
	if w.Monsters["wolf"].Health != 3 {
		t.Errorf("health = %d, want 3", w.Monsters["wolf"].Health)
	}

	killed, _ = DamageMonster(w, "wolf", 10)
	if !killed {
		t.Fatal("wolf should die")
	}
	wolf := w.Monsters["wolf"]
	if wolf.Health != 0 || !wolf.Dead {
		t.Errorf("wolf = %+v, want dead with 0 health", wolf)
	}
	if got := w.Items["fang"].Location; got != (types.Location{Kind: types.LocRoom, ID: "forest"}) {
		t.Errorf("fang location = %+v, want forest", got)
	}

	// Dead monsters stay dead.
	killed, _ = DamageMonster(w, "wolf", 1)
	if killed {
		t.Error("dead wolf killed twice")
	}
	if len(MonstersInRoom(w, "forest")) != 0 {
		t.Error("dead monster still listed")
	}
}

func TestDamageAndHealPlayer(t *testing.T) {
	w := testWorld()
	if DamagePlayer(w, 5) {
		t.Error("player should survive 5 damage")
	}
	if got := HealPlayer(w, 100); got != 5 {
		t.Errorf("HealPlayer = %d, want 5", got)
	}
	if !DamagePlayer(w, 50) {
		t.Error("player should die")
	}
	if w.Player.Health != 0 {
		t.Errorf("health = %d, want clamped 0", w.Player.Health)
	}
}
