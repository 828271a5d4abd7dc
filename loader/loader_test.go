package loader

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/types"
)

func TestLoad_JSON(t *testing.T) {
	w, err := Load("testdata/keep.json", quietLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Title != "The Old Keep" || w.StartRoom != "gate" {
		t.Errorf("title/start = %q/%q", w.Title, w.StartRoom)
	}
	if w.Rooms["gate"].Exits["north"] != "hall" {
		t.Errorf("gate exits = %v", w.Rooms["gate"].Exits)
	}
	if diff := cmp.Diff([]string{"torch"}, w.Rooms["gate"].Items); diff != "" {
		t.Errorf("gate items (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bread"}, w.Player.Inventory); diff != "" {
		t.Errorf("inventory (-want +got):\n%s", diff)
	}
	if w.Player.Room != "gate" {
		t.Errorf("player room = %q", w.Player.Room)
	}
}

func TestLoad_YAML(t *testing.T) {
	w, err := Load("testdata/cellar.yaml", quietLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.Intro != "The stairs creak as you descend." {
		t.Errorf("intro = %q", w.Intro)
	}
	if got := w.Rooms["stairs"].Title; got != "Cellar Stairs" {
		t.Errorf("stairs title = %q", got)
	}
	vault := w.Rooms["vault"]
	if !vault.Dark || !vault.Trap || vault.SafeZone {
		t.Errorf("vault flags = dark %v trap %v safe %v", vault.Dark, vault.Trap, vault.SafeZone)
	}

	if got := w.Items["bottle"]; got.Category != types.CategoryDrinkable || got.Value != 5 {
		t.Errorf("bottle = %+v", got)
	}
	if got := w.Items["dagger"].Location; got != (types.Location{Kind: types.LocMonster, ID: "rat"}) {
		t.Errorf("dagger location = %+v", got)
	}
	if got := w.Items["dagger"].WeaponSides; got != 4 {
		t.Errorf("dagger sides = %d", got)
	}
	if w.Items["ledger"].Takeable {
		t.Error("ledger should not be takeable")
	}
	if w.Player.EquippedArmor != "cloak" {
		t.Errorf("equipped armor = %q, want cloak", w.Player.EquippedArmor)
	}

	rat := w.Monsters["rat"]
	if rat.Disposition != types.Hostile || rat.Health != 4 || rat.WeaponID != "dagger" {
		t.Errorf("rat = %+v", rat)
	}
	if w.Player.Name != "Mara" || w.Player.Gold != 15 || w.Player.Health != 14 {
		t.Errorf("player = %+v", w.Player)
	}
	q, ok := w.Quests.Available["pest"]
	if !ok || q.Stages[0].Objectives[0].Kind != types.ObjectiveKill || q.Reward.XP != 20 {
		t.Errorf("quest pest = %+v", q)
	}
}

func TestLoad_LuaDirectory(t *testing.T) {
	w, err := Load("testdata/lua", quietLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if w.ID != "tower" || len(w.Rooms) != 2 {
		t.Errorf("id = %q, rooms = %d", w.ID, len(w.Rooms))
	}
	if w.Variables["bell"] != "silent" {
		t.Errorf("variables = %v", w.Variables)
	}
	if got := w.Items["rope"]; got.Weight != 3 || got.Location.ID != "base" {
		t.Errorf("rope = %+v", got)
	}
	if w.Monsters["crow"].RoomID != "top" {
		t.Errorf("crow = %+v", w.Monsters["crow"])
	}
	if w.Player.Name != "Ilse" || w.Player.Gold != 0 {
		t.Errorf("player = %+v", w.Player)
	}
	if len(w.Effects) != 1 || !w.Effects[0].Once || !strings.Contains(w.Effects[0].Script, `set_var("bell", "rung")`) {
		t.Errorf("effects = %+v", w.Effects)
	}
}

func TestLoad_LuaFile(t *testing.T) {
	w, err := Load("testdata/lua/adventure.lua", quietLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(w.Items) != 0 || len(w.Rooms) != 2 {
		t.Errorf("a single file sees only its own definitions: items %d rooms %d", len(w.Items), len(w.Rooms))
	}
}

func TestLoad_LuaSandbox(t *testing.T) {
	dir := t.TempDir()
	src := `os.exit(1)`
	if err := os.WriteFile(filepath.Join(dir, "adventure.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, quietLogger()); err == nil {
		t.Fatal("expected the os library to be unavailable")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"id": "x", "rooms": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json"), quietLogger()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: got %v, want ErrNotFound", err)
	}
	if _, err := Load(txt, quietLogger()); !errors.Is(err, ErrFormat) {
		t.Errorf("txt file: got %v, want ErrFormat", err)
	}
	if _, err := Load(t.TempDir(), quietLogger()); err == nil {
		t.Error("empty directory should fail")
	}

	_, err := Load(bad, quietLogger())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("invalid document: got %T (%v), want *ValidationError", err, err)
	}
	if !ve.Has(CodeNoRooms) || !ve.Has(CodeMissingTitle) {
		t.Errorf("problems = %v", ve.Errors)
	}
}

func TestLoad_LogsWarnings(t *testing.T) {
	doc := validDoc()
	doc.Rooms = append(doc.Rooms, RoomDoc{ID: "attic"})

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	if _, err := Build(doc, log); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "attic") {
		t.Errorf("expected unreachable warning in log, got %q", buf.String())
	}
}

func TestLoadOrDemo(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.json")

	w, err := LoadOrDemo("", false, quietLogger())
	if err != nil || w.ID != "demo" {
		t.Fatalf("empty path: world %v, err %v", w, err)
	}

	if _, err := LoadOrDemo(missing, false, quietLogger()); !errors.Is(err, ErrNotFound) {
		t.Errorf("without fallback: got %v, want ErrNotFound", err)
	}

	var buf bytes.Buffer
	w, err = LoadOrDemo(missing, true, slog.New(slog.NewTextHandler(&buf, nil)))
	if err != nil {
		t.Fatalf("with fallback: %v", err)
	}
	if w.ID != "demo" {
		t.Errorf("fallback world = %q, want demo", w.ID)
	}
	if !strings.Contains(buf.String(), "falling back to demo adventure") {
		t.Errorf("fallback was not logged: %q", buf.String())
	}

	w, err = LoadOrDemo("testdata/keep.json", true, quietLogger())
	if err != nil || w.ID != "keep" {
		t.Errorf("good path: world %v, err %v", w.ID, err)
	}
}

func TestDemo_Scenario(t *testing.T) {
	w, err := LoadOrDemo("", false, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if w.Rooms["village"].Exits["north"] != "forest" || w.Rooms["forest"].Exits["south"] != "village" {
		t.Errorf("demo exits = %v / %v", w.Rooms["village"].Exits, w.Rooms["forest"].Exits)
	}
	if got := w.Items["key"]; got.Name != "Ancient Key" || got.Location.ID != "village" {
		t.Errorf("key = %+v", got)
	}
}

func TestWriteFile(t *testing.T) {
	orig, err := Load("testdata/cellar.yaml", quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFile(path, orig); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			back, err := Load(path, quietLogger())
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if diff := cmp.Diff(orig, back, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("world changed through %s (-want +got):\n%s", name, diff)
			}
		})
	}

	if err := WriteFile(filepath.Join(t.TempDir(), "out.lua"), orig); !errors.Is(err, ErrFormat) {
		t.Errorf("lua output: got %v, want ErrFormat", err)
	}
}
