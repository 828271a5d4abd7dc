package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rodaine/table"

	"github.com/nathoo/sagacore/engine"
	"github.com/nathoo/sagacore/engine/quest"
	"github.com/nathoo/sagacore/engine/save"
	"github.com/nathoo/sagacore/engine/systems"
	"github.com/nathoo/sagacore/storage"
	"github.com/nathoo/sagacore/types"
)

// defaultHistory is how many events /history shows without an argument.
const defaultHistory = 10

// Session is what meta-commands act on. The line interface and the TUI
// each hold one.
type Session struct {
	Engine *engine.Engine
	Store  storage.Store // nil disables the save commands
	Now    func() time.Time
	Log    *slog.Logger
	Trace  bool
}

// Line is one line of meta-command output. System lines are status
// messages; the rest is content such as help text or tables.
type Line struct {
	Text   string
	System bool
}

// Reply is the output of one meta-command.
type Reply struct {
	Lines  []Line
	Quit   bool
	Loaded bool // a save replaced the world
}

func (r *Reply) system(format string, args ...any) {
	r.Lines = append(r.Lines, Line{Text: fmt.Sprintf(format, args...), System: true})
}

func (r *Reply) text(lines ...string) {
	for _, l := range lines {
		r.Lines = append(r.Lines, Line{Text: l})
	}
}

// Meta runs a slash command such as "/save slot".
func (s *Session) Meta(ctx context.Context, input string) Reply {
	var r Reply
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return r
	}
	cmd := strings.ToLower(parts[0])
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		r.system("Goodbye.")
		r.Quit = true
	case "/save":
		s.cmdSave(ctx, &r, arg)
	case "/load":
		s.cmdLoad(ctx, &r, arg)
	case "/saves":
		s.cmdSaves(ctx, &r)
	case "/delete":
		s.cmdDelete(ctx, &r, arg)
	case "/help":
		r.text(helpText...)
	case "/state":
		s.cmdState(&r)
	case "/quests":
		s.cmdQuests(&r)
	case "/history":
		s.cmdHistory(&r, arg)
	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			r.system("Trace output enabled.")
		} else {
			r.system("Trace output disabled.")
		}
	default:
		r.system("Unknown command: %s. Type /help for available commands.", cmd)
	}
	return r
}

// TraceLines describes a finished turn for trace output.
func (s *Session) TraceLines(result types.Result) []Line {
	w := s.Engine.World
	lines := []Line{{Text: fmt.Sprintf("trace: turn %d, rng %d/%d", w.Turn, w.RNGSeed, w.RNGPosition), System: true}}
	for _, name := range result.Events {
		lines = append(lines, Line{Text: "trace:   " + name, System: true})
	}
	return lines
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Session) cmdSave(ctx context.Context, r *Reply, name string) {
	if name == "" {
		name = DefaultSave
	}
	if s.Store == nil {
		r.system("Saving is not configured.")
		return
	}
	if err := save.Put(ctx, s.Store, name, s.Engine.World, s.now()); err != nil {
		s.Log.Error("save failed", "name", name, "error", err)
		r.system("Save failed: %v", err)
		return
	}
	r.system("Game saved to %s.", name)
}

func (s *Session) cmdLoad(ctx context.Context, r *Reply, name string) {
	if name == "" {
		name = DefaultSave
	}
	if s.Store == nil {
		r.system("Saving is not configured.")
		return
	}
	sd, err := save.Get(ctx, s.Store, name)
	if errors.Is(err, storage.ErrNotFound) {
		r.system("No save named %s.", name)
		return
	}
	if err != nil {
		s.Log.Error("load failed", "name", name, "error", err)
		r.system("Load failed: %v", err)
		return
	}

	s.Engine.SetWorld(sd.World)
	r.Loaded = true
	r.system("Game loaded from %s (turn %d).", name, sd.World.Turn)
	r.text(systems.DescribeRoom(sd.World, sd.World.Player.Room)...)
}

func (s *Session) cmdSaves(ctx context.Context, r *Reply) {
	if s.Store == nil {
		r.system("Saving is not configured.")
		return
	}
	names, err := s.Store.List(ctx)
	if err != nil {
		r.system("Listing saves failed: %v", err)
		return
	}
	if len(names) == 0 {
		r.system("No saves.")
		return
	}
	r.system("Saves: %s", strings.Join(names, ", "))
}

func (s *Session) cmdDelete(ctx context.Context, r *Reply, name string) {
	if name == "" {
		r.system("Usage: /delete <name>")
		return
	}
	if s.Store == nil {
		r.system("Saving is not configured.")
		return
	}
	err := s.Store.Delete(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.system("No save named %s.", name)
	case err != nil:
		r.system("Delete failed: %v", err)
	default:
		r.system("Deleted %s.", name)
	}
}

var helpText = []string{
	"System:",
	"  /save [name]    Save game (default: quicksave)",
	"  /load [name]    Load game (default: quicksave)",
	"  /saves          List saved games",
	"  /delete <name>  Delete a saved game",
	"  /quests         Show every quest and its progress",
	"  /history [n]    Show the last n events",
	"  /state          Debug: dump current state",
	"  /trace          Toggle debug trace output",
	"  /help           Show this help",
	"  /quit           Exit game",
	"",
	"Type 'help' for game commands. 'again' (g) repeats your last command.",
}

func (s *Session) cmdState(r *Reply) {
	w := s.Engine.World
	p := w.Player
	r.system("Turn: %d", w.Turn)
	r.system("Location: %s", p.Room)
	r.system("Health: %d/%d  Gold: %d  Level: %d  XP: %d", p.Health, p.Hardiness, p.Gold, p.Level, p.Experience)
	r.system("Inventory: %v", p.Inventory)
	if len(w.Variables) > 0 {
		names := make([]string, 0, len(w.Variables))
		for k := range w.Variables {
			names = append(names, k)
		}
		sort.Strings(names)
		pairs := make([]string, len(names))
		for i, k := range names {
			pairs[i] = k + "=" + w.Variables[k]
		}
		r.system("Variables: %s", strings.Join(pairs, " "))
	}
	r.system("RNG: seed %d position %d", w.RNGSeed, w.RNGPosition)
	if w.GameOver {
		r.system("Game over.")
	}
}

func (s *Session) cmdQuests(r *Reply) {
	all := allQuests(&s.Engine.World.Quests)
	if len(all) == 0 {
		r.system("No quests.")
		return
	}
	var buf bytes.Buffer
	t := table.New("ID", "Title", "Status", "Stage", "Progress").WithWriter(&buf)
	for _, q := range all {
		stage, progress := "-", "-"
		if st, ok := quest.CurrentStage(q); ok && q.Status == types.QuestActive {
			stage = fmt.Sprintf("%d/%d", q.StageIndex+1, len(q.Stages))
			progress = strconv.Itoa(quest.StagePercent(st)) + "%"
		}
		t.AddRow(q.ID, q.Title, string(q.Status), stage, progress)
	}
	t.Print()
	r.text(tableLines(&buf)...)
}

// allQuests returns every quest the tracker knows, sorted by id.
func allQuests(tr *types.QuestTracker) []types.Quest {
	var out []types.Quest
	for _, set := range []map[string]types.Quest{tr.Available, tr.Active, tr.Finished} {
		for _, q := range set {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Session) cmdHistory(r *Reply, arg string) {
	limit := defaultHistory
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			r.system("Usage: /history [count]")
			return
		}
		limit = n
	}
	evs := s.Engine.Bus.History("", limit)
	if len(evs) == 0 {
		r.system("No events recorded.")
		return
	}
	var buf bytes.Buffer
	t := table.New("Seq", "Event", "Source", "Target", "Cancelled").WithWriter(&buf)
	for _, ev := range evs {
		t.AddRow(ev.Seq, ev.Name, ev.Source, ev.String("target"), ev.Cancelled)
	}
	t.Print()
	r.text(tableLines(&buf)...)
}

func tableLines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, l := range out {
		out[i] = strings.TrimRight(l, " ")
	}
	return out
}
