package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/sagacore/engine/script"
)

// mainScript is executed first when loading a directory of scripts.
const mainScript = "adventure.lua"

// collector accumulates Lua definitions during file execution.
type collector struct {
	adventure map[string]any
	player    map[string]any
	rooms     []map[string]any
	items     []map[string]any
	monsters  []map[string]any
	quests    []map[string]any
	effects   []map[string]any
}

// registerAPI registers the adventure constructors as globals:
//
//	Adventure { id = "...", title = "...", start_room = "..." }
//	Room "id" { title = "...", exits = { north = "..." } }
//	Item "id" { name = "...", location = "..." }
//	Monster "id" { name = "...", room_id = "..." }
//	Quest "id" { title = "...", stages = { ... } }
//	Effect "id" { event = "...", script = [[ ... ]] }
//	Player { name = "..." }
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Adventure", L.NewFunction(func(L *lua.LState) int {
		coll.adventure = tableToMap(L.CheckTable(1))
		return 0
	}))
	L.SetGlobal("Player", L.NewFunction(func(L *lua.LState) int {
		coll.player = tableToMap(L.CheckTable(1))
		return 0
	}))
	curried(L, "Room", &coll.rooms)
	curried(L, "Item", &coll.items)
	curried(L, "Monster", &coll.monsters)
	curried(L, "Quest", &coll.quests)
	curried(L, "Effect", &coll.effects)
}

// curried registers Name "id" { ... }: Name("id") returns a function that
// takes the definition table.
func curried(L *lua.LState, name string, into *[]map[string]any) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			m := tableToMap(L.CheckTable(1))
			m["id"] = id
			*into = append(*into, m)
			return 0
		}))
		return 1
	}))
}

func tableToMap(tbl *lua.LTable) map[string]any {
	if m, ok := toGoValue(tbl).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// toGoValue converts a Lua value to a Go value recursively. An empty
// table becomes nil since it could be either a list or a map.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 make a list.
		if maxN := val.MaxN(); maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		if len(m) == 0 {
			return nil
		}
		return m
	default:
		return nil
	}
}

// document assembles the collected definitions. Constructors add to
// whatever the Adventure table already declares.
func (c *collector) document() (*Document, error) {
	doc := &Document{}
	if c.adventure != nil {
		if err := remarshal(c.adventure, doc); err != nil {
			return nil, errors.Wrap(err, "decoding Adventure")
		}
	}
	if c.player != nil {
		doc.Player = &PlayerDoc{}
		if err := remarshal(c.player, doc.Player); err != nil {
			return nil, errors.Wrap(err, "decoding Player")
		}
	}
	if err := appendDecoded(&doc.Rooms, c.rooms, "Room"); err != nil {
		return nil, err
	}
	if err := appendDecoded(&doc.Items, c.items, "Item"); err != nil {
		return nil, err
	}
	if err := appendDecoded(&doc.Monsters, c.monsters, "Monster"); err != nil {
		return nil, err
	}
	if err := appendDecoded(&doc.Quests, c.quests, "Quest"); err != nil {
		return nil, err
	}
	if err := appendDecoded(&doc.Effects, c.effects, "Effect"); err != nil {
		return nil, err
	}
	return doc, nil
}

func appendDecoded[T any](into *[]T, raw []map[string]any, kind string) error {
	for _, m := range raw {
		var v T
		if err := remarshal(m, &v); err != nil {
			return errors.Wrapf(err, "decoding %s %q", kind, m["id"])
		}
		*into = append(*into, v)
	}
	return nil
}

// remarshal moves a generic value into a typed one through JSON, so every
// source format shares the document's field names.
func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// decodeLua runs Lua sources in one sandboxed VM and returns the document
// they describe. The VM is discarded afterwards.
func decodeLua(files []string) (*Document, error) {
	L := script.NewState()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(f); err != nil {
			return nil, errors.Wrapf(err, "executing %s", filepath.Base(f))
		}
	}
	return coll.document()
}

// luaDir lists the .lua files of dir in execution order.
func luaDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading adventure directory %s", dir)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, errors.Errorf("no .lua files found in %s", dir)
	}
	names = sortedLuaFiles(names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// sortedLuaFiles returns adventure.lua first, then the rest alphabetically.
func sortedLuaFiles(files []string) []string {
	var main []string
	var rest []string
	for _, f := range files {
		if f == mainScript {
			main = append(main, f)
		} else {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	return append(main, rest...)
}
