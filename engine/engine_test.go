package engine

import (
	"io"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/engine/dispatch"
	"github.com/nathoo/sagacore/engine/events"
	"github.com/nathoo/sagacore/engine/quest"
	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedNow() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
}

// testWorld builds the village/forest adventure: a key in the village, a
// wolf and a sword in the forest, and a quest to kill the wolf.
func testWorld() *types.World {
	w := state.NewWorld()
	w.ID = "test"
	w.Title = "Test Adventure"
	w.StartRoom = "village"
	w.Rooms["village"] = types.Room{
		ID: "village", Title: "Village", Description: "A quiet village.",
		Exits: map[string]string{"north": "forest"},
		Items: []string{"key"},
	}
	w.Rooms["forest"] = types.Room{
		ID: "forest", Title: "Forest", Description: "Tall trees.",
		Exits: map[string]string{"south": "village"},
		Items: []string{"sword"},
	}
	w.Items["key"] = types.Item{
		ID: "key", Name: "Ancient Key", Takeable: true,
		Location: types.Location{Kind: types.LocRoom, ID: "village"},
	}
	w.Items["sword"] = types.Item{
		ID: "sword", Name: "Sword", Takeable: true, IsWeapon: true, WeaponDice: 1, WeaponSides: 8,
		Category: types.CategoryWeapon,
		Location: types.Location{Kind: types.LocRoom, ID: "forest"},
	}
	w.Monsters["wolf"] = types.Monster{
		ID: "wolf", Name: "Wolf", RoomID: "forest", Hardiness: 6, Health: 6, Gold: 4,
		Disposition: types.Hostile,
	}
	w.Player.Name = "Hero"
	w.Player.Room = "village"
	w.Player.Hardiness = 40
	w.Player.Health = 40
	w.Player.Level = 1
	quest.Offer(&w.Quests, types.Quest{
		ID: "wolf", Title: "Wolf Hunt", GiverLevel: 1,
		Stages: []types.QuestStage{{ID: "hunt", Objectives: []types.QuestObjective{
			{ID: "kill", Kind: types.ObjectiveKill, Target: "wolf", Required: 1},
		}}},
		Reward: types.QuestReward{XP: 40, Gold: 5},
	})
	return w
}

func newEngine(t *testing.T, w *types.World, mode Mode) *Engine {
	t.Helper()
	e, err := New(w, Options{Mode: mode, Seed: 7, History: true, Logger: quiet, Now: fixedNow})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func hasLine(out []string, want string) bool {
	return slices.Contains(out, want)
}

func TestVillageScenario(t *testing.T) {
	for _, mode := range []Mode{ModeBroadcast, ModeChain} {
		t.Run(string(mode), func(t *testing.T) {
			e := newEngine(t, testWorld(), mode)

			out := e.Step("look").Output
			if !hasLine(out, "You see: Ancient Key.") || !hasLine(out, "Exits: north.") {
				t.Errorf("look = %q", out)
			}

			out = e.Step("take Ancient Key").Output
			if !reflect.DeepEqual(out, []string{"You take the Ancient Key."}) {
				t.Errorf("take = %q", out)
			}
			if out := e.Step("look").Output; hasLine(out, "You see: Ancient Key.") {
				t.Errorf("village still lists key: %q", out)
			}

			e.Step("n")
			if e.World.Player.Room != "forest" {
				t.Fatalf("room = %q, want forest", e.World.Player.Room)
			}
			e.Step("drop key")
			if !slices.Contains(e.World.Rooms["forest"].Items, "key") {
				t.Error("key not in forest")
			}
			if slices.Contains(e.World.Rooms["village"].Items, "key") {
				t.Error("key went back to the village")
			}
		})
	}
}

func TestEmptyInputCostsNoTurn(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	res := e.Step("   ")
	if !reflect.DeepEqual(res.Output, []string{"What do you want to do?"}) {
		t.Errorf("output = %q", res.Output)
	}
	if e.World.Turn != 0 || len(res.Events) != 0 {
		t.Errorf("turn = %d, events = %v", e.World.Turn, res.Events)
	}
}

func TestUnknownCommand(t *testing.T) {
	for _, mode := range []Mode{ModeBroadcast, ModeChain} {
		e := newEngine(t, testWorld(), mode)
		out := e.Step("xyzzy").Output
		if !reflect.DeepEqual(out, []string{"Unknown command: xyzzy"}) {
			t.Errorf("%s: output = %q", mode, out)
		}
		if e.World.Turn != 1 {
			t.Errorf("%s: turn = %d, want 1", mode, e.World.Turn)
		}
	}
}

func TestUnknownMode(t *testing.T) {
	if _, err := New(testWorld(), Options{Mode: "parallel"}); err == nil {
		t.Error("New should reject an unknown mode")
	}
}

func TestEventsReported(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	res := e.Step("take key")
	want := []string{"command.received", "item.taking", "item.taken"}
	if !reflect.DeepEqual(res.Events, want) {
		t.Errorf("events = %v, want %v", res.Events, want)
	}
	if got := e.Bus.History("item.taken", events.AllHistory); len(got) != 1 || got[0].Data["item"] != "key" {
		t.Errorf("history = %+v", got)
	}
}

func TestCommandVeto(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	e.Bus.Subscribe("command.received", events.HandlerFunc(func(_ *types.World, ev *events.Event) {
		if ev.String("verb") == string(types.VerbTake) {
			ev.Cancel()
		}
	}), events.Critical, "pacifist")

	res := e.Step("take key")
	if len(res.Output) != 0 {
		t.Errorf("vetoed command output = %q", res.Output)
	}
	if state.HasItem(e.World, "key") {
		t.Error("vetoed take still ran")
	}
	if out := e.Step("look").Output; len(out) == 0 {
		t.Error("look was vetoed too")
	}
}

func TestQuestThroughCombat(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	e.Step("accept wolf")
	e.Step("n")
	e.Step("take sword")
	e.Step("wield sword")

	var out []string
	for i := 0; i < 20 && !e.World.Monsters["wolf"].Dead; i++ {
		out = e.Step("attack wolf").Output
	}
	if !e.World.Monsters["wolf"].Dead {
		t.Fatal("wolf survived twenty rounds")
	}
	if !hasLine(out, "Quest complete: Wolf Hunt!") {
		t.Errorf("final attack = %q", out)
	}
	if !e.World.Quests.Completed["wolf"] || e.World.Player.Experience != 40 {
		t.Errorf("completed %v, xp %d", e.World.Quests.Completed["wolf"], e.World.Player.Experience)
	}
	if e.World.Player.Gold != 9 {
		t.Errorf("gold = %d, want 9", e.World.Player.Gold)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	script := []string{"accept wolf", "take key", "n", "take sword", "wield sword",
		"attack wolf", "attack wolf", "attack wolf", "s", "inventory", "quests"}

	run := func() (*types.World, [][]string) {
		e := newEngine(t, testWorld(), ModeBroadcast)
		var outs [][]string
		for _, cmd := range script {
			outs = append(outs, e.Step(cmd).Output)
		}
		return e.World, outs
	}

	w1, out1 := run()
	w2, out2 := run()
	if diff := cmp.Diff(out1, out2); diff != "" {
		t.Errorf("output differs between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(w1, w2); diff != "" {
		t.Errorf("world differs between runs (-first +second):\n%s", diff)
	}
	if w1.Turn != len(script) || len(w1.CommandLog) != len(script) {
		t.Errorf("turn = %d, log = %d, want %d", w1.Turn, len(w1.CommandLog), len(script))
	}
}

func TestRestoredWorldContinuesRolls(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	for _, cmd := range []string{"n", "attack wolf"} {
		e.Step(cmd)
	}
	if e.World.RNGPosition == 0 {
		t.Fatal("combat drew nothing from the RNG")
	}

	clone, err := New(cloneWorld(t, e.World), Options{Logger: quiet, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := clone.RNG.Position(), e.RNG.Position(); got != want {
		t.Fatalf("restored position = %d, want %d", got, want)
	}
	for i := 0; i < 5; i++ {
		if a, b := e.RNG.Roll(100), clone.RNG.Roll(100); a != b {
			t.Fatalf("roll %d: %d != %d", i, a, b)
		}
	}
}

// cloneWorld deep-copies a world through cmp-friendly reconstruction.
func cloneWorld(t *testing.T, w *types.World) *types.World {
	t.Helper()
	c := *w
	c.Rooms = map[string]types.Room{}
	for k, v := range w.Rooms {
		v.Items = slices.Clone(v.Items)
		c.Rooms[k] = v
	}
	c.Items = map[string]types.Item{}
	for k, v := range w.Items {
		c.Items[k] = v
	}
	c.Monsters = map[string]types.Monster{}
	for k, v := range w.Monsters {
		c.Monsters[k] = v
	}
	c.Player.Inventory = slices.Clone(w.Player.Inventory)
	if diff := cmp.Diff(w, &c); diff != "" {
		t.Fatalf("clone differs:\n%s", diff)
	}
	return &c
}

func TestGameOverBlocksCommands(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	e.World.GameOver = true

	out := e.Step("look").Output
	if len(out) != 1 || !strings.HasPrefix(out[0], "Game over.") {
		t.Errorf("look after death = %q", out)
	}
	if res := e.Step("quit"); !res.Quit {
		t.Error("quit should still work after game over")
	}
}

func TestQuit(t *testing.T) {
	for _, mode := range []Mode{ModeBroadcast, ModeChain} {
		e := newEngine(t, testWorld(), mode)
		res := e.Step("q")
		if !res.Quit || !reflect.DeepEqual(res.Output, []string{"Goodbye."}) {
			t.Errorf("%s: quit = %+v", mode, res)
		}
	}
}

func TestIntro(t *testing.T) {
	w := testWorld()
	w.Intro = "Adventure awaits."
	e := newEngine(t, w, ModeBroadcast)
	out := e.Intro()
	if out[0] != "Test Adventure" || out[1] != "Adventure awaits." || out[3] != "Village" {
		t.Errorf("intro = %q", out)
	}
}

func TestModesAgreeOnQuotedArguments(t *testing.T) {
	script := []string{`take "Ancient Key"`, `drop 'Ancient Key'`, `take "ancient key"`,
		`say "hello there"`, "look at", "n", `take "Sword"`, "inventory"}

	run := func(mode Mode) (*types.World, [][]string) {
		e := newEngine(t, testWorld(), mode)
		var outs [][]string
		for _, cmd := range script {
			outs = append(outs, e.Step(cmd).Output)
		}
		return e.World, outs
	}

	wb, broadcast := run(ModeBroadcast)
	wc, chain := run(ModeChain)
	if diff := cmp.Diff(broadcast, chain); diff != "" {
		t.Errorf("output differs between modes (-broadcast +chain):\n%s", diff)
	}
	if diff := cmp.Diff(wb, wc); diff != "" {
		t.Errorf("world differs between modes (-broadcast +chain):\n%s", diff)
	}
	if !hasLine(broadcast[0], "You take the Ancient Key.") {
		t.Errorf("quoted take = %q", broadcast[0])
	}
	if !state.HasItem(wb, "key") || !state.HasItem(wb, "sword") {
		t.Errorf("inventory = %v, want key and sword", wb.Player.Inventory)
	}
}

func TestDisabledSystemAtStart(t *testing.T) {
	for _, mode := range []Mode{ModeBroadcast, ModeChain} {
		t.Run(string(mode), func(t *testing.T) {
			e, err := New(testWorld(), Options{Mode: mode, Seed: 7, Logger: quiet, Disabled: []string{"combat"}})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if e.SystemEnabled("combat") || !e.SystemEnabled("inventory") {
				t.Errorf("combat %v, inventory %v", e.SystemEnabled("combat"), e.SystemEnabled("inventory"))
			}
			e.Step("n")
			out := e.Step("attack wolf").Output
			if !reflect.DeepEqual(out, []string{"Unknown command: attack wolf"}) {
				t.Errorf("attack = %q", out)
			}
			if e.World.Monsters["wolf"].Health != 6 {
				t.Errorf("wolf health = %d, want 6", e.World.Monsters["wolf"].Health)
			}
			if out := e.Step("take sword").Output; !reflect.DeepEqual(out, []string{"You take the Sword."}) {
				t.Errorf("take = %q", out)
			}
		})
	}
}

func TestDisabledSystemsRejected(t *testing.T) {
	tests := []struct {
		name     string
		disabled []string
		wantErr  error
	}{
		{"unknown", []string{"weather"}, dispatch.ErrUnknownSystem},
		{"needed by effects", []string{"quests"}, dispatch.ErrMissingDependency},
		{"needed by everything", []string{"world"}, dispatch.ErrMissingDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testWorld(), Options{Logger: quiet, Disabled: tt.disabled})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDisabledQuestsReceiveNoEvents(t *testing.T) {
	e := newEngine(t, testWorld(), ModeBroadcast)
	e.Step("accept wolf")
	if _, ok := e.World.Quests.Active["wolf"]; !ok {
		t.Fatal("quest not accepted")
	}

	if err := e.DisableSystem("quests"); !errors.Is(err, dispatch.ErrMissingDependency) {
		t.Fatalf("DisableSystem(quests) = %v, want missing dependency", err)
	}
	if !e.SystemEnabled("quests") {
		t.Fatal("failed disable left quests off")
	}
	for _, name := range []string{"effects", "quests"} {
		if err := e.DisableSystem(name); err != nil {
			t.Fatalf("DisableSystem(%s): %v", name, err)
		}
	}

	e.Step("n")
	e.Step("take sword")
	e.Step("wield sword")
	for i := 0; i < 20 && !e.World.Monsters["wolf"].Dead; i++ {
		if out := e.Step("attack wolf").Output; hasLine(out, "Quest complete: Wolf Hunt!") {
			t.Fatalf("disabled quests completed: %q", out)
		}
	}
	if !e.World.Monsters["wolf"].Dead {
		t.Fatal("wolf survived twenty rounds")
	}
	if e.World.Quests.Completed["wolf"] || e.World.Player.Gold != 4 {
		t.Errorf("completed %v, gold %d", e.World.Quests.Completed["wolf"], e.World.Player.Gold)
	}
	if out := e.Step("quests").Output; !reflect.DeepEqual(out, []string{"Unknown command: quests"}) {
		t.Errorf("quests = %q", out)
	}

	if err := e.EnableSystem("effects"); !errors.Is(err, dispatch.ErrMissingDependency) {
		t.Errorf("EnableSystem(effects) = %v, want missing dependency", err)
	}
	if err := e.EnableSystem("quests"); err != nil {
		t.Fatalf("EnableSystem(quests): %v", err)
	}
	if out := e.Step("quests").Output; hasLine(out, "Unknown command: quests") {
		t.Errorf("quests after enable = %q", out)
	}
	if got := e.Systems(); !reflect.DeepEqual(got, []string{"world", "ambient", "inventory", "combat", "quests", "effects"}) {
		t.Errorf("Systems = %v", got)
	}
}
