package systems

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/engine/events"
	"github.com/nathoo/sagacore/engine/quest"
	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// Quests handles the quest journal commands and turns game events into
// objective progress.
type Quests struct {
	env *Env
}

// NewQuests creates the quest system.
func NewQuests(env *Env) *Quests {
	return &Quests{env: env}
}

func (s *Quests) Name() string { return "quests" }

// Verbs lists the commands this system handles.
func (s *Quests) Verbs() []types.Verb {
	return []types.Verb{types.VerbQuests, types.VerbAccept, types.VerbComplete}
}

// progressEvents maps event names to the objective kind they advance.
var progressEvents = map[string]types.ObjectiveKind{
	"monster.killed": types.ObjectiveKill,
	"item.taken":     types.ObjectiveCollect,
	"player.moved":   types.ObjectiveExplore,
	"item.examined":  types.ObjectiveDiscover,
	"item.used":      types.ObjectivePuzzle,
}

// Attach subscribes the quest system to the events that drive objectives.
func (s *Quests) Attach(bus *events.Bus) {
	for name := range progressEvents {
		bus.Subscribe(name, events.HandlerFunc(s.onProgress), events.Low, s.Name())
	}
	bus.Subscribe("player.said", events.HandlerFunc(s.onSaid), events.Low, s.Name())
	bus.Subscribe("item.dropped", events.HandlerFunc(s.onDropped), events.Low, s.Name())
}

func (s *Quests) onProgress(w *types.World, ev *events.Event) {
	s.Advance(w, progressEvents[ev.Name], ev.String("target"), 1)
}

// onSaid counts as talking to every non-hostile monster in the room.
func (s *Quests) onSaid(w *types.World, ev *events.Event) {
	for _, m := range state.MonstersInRoom(w, w.Player.Room) {
		if m.Disposition != types.Hostile {
			s.Advance(w, types.ObjectiveTalk, m.ID, 1)
		}
	}
}

// onDropped delivers an item when dropped in a room holding a friendly
// monster. The objective target is "<item>@<monster>".
func (s *Quests) onDropped(w *types.World, ev *events.Event) {
	for _, m := range state.MonstersInRoom(w, w.Player.Room) {
		if m.Disposition == types.Friendly {
			s.Advance(w, types.ObjectiveDeliver, ev.String("item")+"@"+m.ID, 1)
		}
	}
}

// Advance records progress, moves finished stages on, and completes
// finished quests with their rewards. Narrative lines go to the Env.
func (s *Quests) Advance(w *types.World, kind types.ObjectiveKind, target string, amount int) {
	if target == "" {
		return
	}
	for _, id := range quest.Progress(&w.Quests, kind, target, amount) {
		q := w.Quests.Active[id]
		stage, _ := quest.CurrentStage(q)
		if !quest.StageComplete(stage) {
			s.env.Emit(fmt.Sprintf("[Quest progress: %s %d%%]", q.Title, quest.StagePercent(stage)))
			continue
		}
		if stage.RewardXP > 0 {
			quest.ApplyReward(w, types.QuestReward{XP: stage.RewardXP})
		}
		if advanced, _ := quest.AdvanceStage(&w.Quests, id); advanced {
			next, _ := quest.CurrentStage(w.Quests.Active[id])
			s.env.Emit(fmt.Sprintf("[Quest updated: %s. %s]", q.Title, stageLabel(next)))
			_, lines := s.env.Publish(w, "quest.stage_advanced", map[string]any{"quest": id, "stage": next.ID, "target": id}, false, s.Name())
			s.env.Emit(lines...)
			continue
		}
		s.env.Emit(s.complete(w, id)...)
	}
}

func stageLabel(st types.QuestStage) string {
	if st.Title != "" {
		return st.Title
	}
	return st.Description
}

func (s *Quests) Handle(w *types.World, cmd types.Command) []string {
	switch cmd.Verb {
	case types.VerbQuests:
		return s.journal(w)
	case types.VerbAccept:
		return s.accept(w, cmd.Arg)
	case types.VerbComplete:
		return s.completeCmd(w, cmd.Arg)
	}
	return nil
}

// resolve finds a quest id from a typed id or title.
func resolveQuest(tr *types.QuestTracker, name string) (string, bool) {
	if _, ok := quest.Lookup(tr, name); ok {
		return name, true
	}
	for _, set := range []map[string]types.Quest{tr.Active, tr.Available, tr.Finished} {
		for id, q := range set {
			if strings.EqualFold(id, name) || strings.EqualFold(q.Title, name) {
				return id, true
			}
		}
	}
	return "", false
}

func (s *Quests) journal(w *types.World) []string {
	tr := &w.Quests
	var out []string
	for _, id := range sortedIDs(tr.Active) {
		q := tr.Active[id]
		stage, _ := quest.CurrentStage(q)
		out = append(out, fmt.Sprintf("%s [%s]: stage %d/%d, %d%%", q.Title, id, q.StageIndex+1, len(q.Stages), quest.StagePercent(stage)))
		for _, o := range stage.Objectives {
			mark := " "
			if o.Current >= o.Required {
				mark = "x"
			}
			opt := ""
			if o.Optional {
				opt = " (optional)"
			}
			out = append(out, fmt.Sprintf("  [%s] %s %d/%d%s", mark, o.Description, o.Current, o.Required, opt))
		}
	}
	for _, id := range sortedIDs(tr.Available) {
		q := tr.Available[id]
		if q.Status != types.QuestAvailable || len(quest.MissingPrerequisites(tr, q)) > 0 {
			continue
		}
		out = append(out, fmt.Sprintf("Available: %s [%s]", q.Title, id))
	}
	if n := len(tr.Completed); n > 0 {
		out = append(out, fmt.Sprintf("Completed quests: %d", n))
	}
	if len(out) == 0 {
		return []string{"You have no quests."}
	}
	return out
}

func (s *Quests) accept(w *types.World, name string) []string {
	id, ok := resolveQuest(&w.Quests, name)
	if !ok {
		return []string{"There is no such quest."}
	}
	q, err := quest.Accept(&w.Quests, id, s.env.Now())
	switch {
	case err == nil:
	case errors.Is(err, quest.ErrPrerequisites):
		pending, _ := quest.Lookup(&w.Quests, id)
		return []string{"You must first complete: " + strings.Join(quest.MissingPrerequisites(&w.Quests, pending), ", ") + "."}
	case errors.Is(err, quest.ErrAlreadyActive):
		return []string{"You are already on that quest."}
	case errors.Is(err, quest.ErrAlreadyCompleted):
		return []string{"You have already completed that quest."}
	case errors.Is(err, quest.ErrBlocked):
		return []string{"That quest is closed to you."}
	default:
		return []string{"You can't accept that quest."}
	}

	out := []string{fmt.Sprintf("Quest accepted: %s.", q.Title)}
	if q.Description != "" {
		out = append(out, q.Description)
	}
	_, lines := s.env.Publish(w, "quest.accepted", map[string]any{"quest": id, "target": id}, false, s.Name())
	return append(out, lines...)
}

func (s *Quests) completeCmd(w *types.World, name string) []string {
	id, ok := resolveQuest(&w.Quests, name)
	if !ok {
		return []string{"There is no such quest."}
	}
	if _, active := w.Quests.Active[id]; !active {
		return []string{"You are not on that quest."}
	}
	if !quest.IsComplete(w.Quests.Active[id]) {
		return []string{"You haven't finished that quest yet."}
	}
	return s.complete(w, id)
}

// complete finishes a satisfied quest and pays out the scaled reward.
func (s *Quests) complete(w *types.World, id string) []string {
	q, err := quest.Complete(&w.Quests, id, s.env.Now())
	if err != nil {
		s.env.Log.Debug("quest not completable", "quest", id, "err", err)
		return nil
	}
	reward := quest.ScaledReward(q, w.Player.Level)
	leveled := quest.ApplyReward(w, reward)

	out := []string{fmt.Sprintf("Quest complete: %s!", q.Title)}
	if reward.XP > 0 || reward.Gold > 0 {
		out = append(out, fmt.Sprintf("You gain %d experience and %d gold.", reward.XP, reward.Gold))
	}
	for _, itemID := range reward.Items {
		if it, ok := w.Items[itemID]; ok {
			out = append(out, fmt.Sprintf("You receive the %s.", it.Name))
		}
	}
	if leveled {
		out = append(out, fmt.Sprintf("You are now level %d.", w.Player.Level))
	}
	_, lines := s.env.Publish(w, "quest.completed", map[string]any{"quest": id, "xp": reward.XP, "target": id}, false, s.Name())
	return append(out, lines...)
}

// Fail fails an active quest. It reports whether the quest was active.
func (s *Quests) Fail(w *types.World, id string) bool {
	q, err := quest.Fail(&w.Quests, id, s.env.Now())
	if err != nil {
		s.env.Log.Debug("quest not failed", "quest", id, "err", err)
		return false
	}
	s.env.Emit(fmt.Sprintf("[Quest failed: %s]", q.Title))
	_, lines := s.env.Publish(w, "quest.failed", map[string]any{"quest": id, "target": id}, false, s.Name())
	s.env.Emit(lines...)
	return true
}

func sortedIDs(m map[string]types.Quest) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
