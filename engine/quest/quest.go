// Package quest implements the quest lifecycle over a QuestTracker:
// accepting, stage progression, completion, failure, and reward scaling.
package quest

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// TimeFormat is the layout of every quest timestamp. It sorts
// lexicographically in chronological order.
const TimeFormat = "2006-01-02 15:04:05"

var (
	ErrUnknownQuest     = errors.New("unknown quest")
	ErrNotAvailable     = errors.New("quest is not available")
	ErrAlreadyActive    = errors.New("quest is already active")
	ErrAlreadyCompleted = errors.New("quest is already completed")
	ErrPrerequisites    = errors.New("quest prerequisites not met")
	ErrBlocked          = errors.New("quest is blocked")
	ErrNotActive        = errors.New("quest is not active")
	ErrIncomplete       = errors.New("quest objectives are not complete")
)

func stamp(now time.Time) string {
	return now.UTC().Format(TimeFormat)
}

func record(tr *types.QuestTracker, id string, status types.QuestStatus, now time.Time) {
	tr.History = append(tr.History, types.QuestRecord{
		QuestID:   id,
		Status:    status,
		Timestamp: stamp(now),
	})
}

// Offer adds a quest definition to the available pool.
func Offer(tr *types.QuestTracker, q types.Quest) {
	if tr.Available == nil {
		tr.Available = map[string]types.Quest{}
	}
	if q.Status == "" {
		q.Status = types.QuestAvailable
	}
	tr.Available[q.ID] = q
}

// Lookup finds a quest by id in any partition.
func Lookup(tr *types.QuestTracker, id string) (types.Quest, bool) {
	if q, ok := tr.Active[id]; ok {
		return q, true
	}
	if q, ok := tr.Available[id]; ok {
		return q, true
	}
	q, ok := tr.Finished[id]
	return q, ok
}

// blockedBy returns the id of an active or completed quest that blocks id.
func blockedBy(tr *types.QuestTracker, id string) string {
	check := func(q types.Quest) bool {
		for _, b := range q.Blocks {
			if b == id {
				return true
			}
		}
		return false
	}
	for _, qid := range sortedKeys(tr.Active) {
		if check(tr.Active[qid]) {
			return qid
		}
	}
	for _, qid := range sortedKeys(tr.Finished) {
		if tr.Completed[qid] && check(tr.Finished[qid]) {
			return qid
		}
	}
	return ""
}

// MissingPrerequisites lists the prerequisites of q not yet completed.
func MissingPrerequisites(tr *types.QuestTracker, q types.Quest) []string {
	var missing []string
	for _, p := range q.Prerequisites {
		if !tr.Completed[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

// Accept moves an available quest into the active map.
func Accept(tr *types.QuestTracker, id string, now time.Time) (types.Quest, error) {
	if _, ok := tr.Active[id]; ok {
		return types.Quest{}, errors.Wrapf(ErrAlreadyActive, "accept %q", id)
	}
	if tr.Completed[id] {
		return types.Quest{}, errors.Wrapf(ErrAlreadyCompleted, "accept %q", id)
	}
	q, ok := tr.Available[id]
	if !ok {
		if _, finished := tr.Finished[id]; finished {
			return types.Quest{}, errors.Wrapf(ErrNotAvailable, "accept %q", id)
		}
		return types.Quest{}, errors.Wrapf(ErrUnknownQuest, "accept %q", id)
	}
	if q.Status == types.QuestBlocked {
		return types.Quest{}, errors.Wrapf(ErrBlocked, "accept %q", id)
	}
	if q.Status != types.QuestAvailable {
		return types.Quest{}, errors.Wrapf(ErrNotAvailable, "accept %q", id)
	}
	if missing := MissingPrerequisites(tr, q); len(missing) > 0 {
		return types.Quest{}, errors.Wrapf(ErrPrerequisites, "accept %q: missing %v", id, missing)
	}
	if by := blockedBy(tr, id); by != "" {
		return types.Quest{}, errors.Wrapf(ErrBlocked, "accept %q: blocked by %q", id, by)
	}

	q.Status = types.QuestActive
	q.AcceptedAt = stamp(now)
	delete(tr.Available, id)
	if tr.Active == nil {
		tr.Active = map[string]types.Quest{}
	}
	tr.Active[id] = q
	record(tr, id, types.QuestActive, now)
	return q, nil
}

// CurrentStage returns the stage the quest is on.
func CurrentStage(q types.Quest) (types.QuestStage, bool) {
	if q.StageIndex < 0 || q.StageIndex >= len(q.Stages) {
		return types.QuestStage{}, false
	}
	return q.Stages[q.StageIndex], true
}

// StageComplete reports whether every required objective of a stage is met.
func StageComplete(s types.QuestStage) bool {
	for _, o := range s.Objectives {
		if !o.Optional && o.Current < o.Required {
			return false
		}
	}
	return true
}

// IsComplete reports whether the quest is on its final stage with that
// stage's required objectives satisfied.
func IsComplete(q types.Quest) bool {
	if len(q.Stages) == 0 {
		return true
	}
	if q.StageIndex != len(q.Stages)-1 {
		return false
	}
	return StageComplete(q.Stages[q.StageIndex])
}

// AdvanceStage moves an active quest to its next stage. It returns false,
// leaving the quest unchanged, when already on the last stage.
func AdvanceStage(tr *types.QuestTracker, id string) (bool, error) {
	q, ok := tr.Active[id]
	if !ok {
		return false, errors.Wrapf(ErrNotActive, "advance %q", id)
	}
	if q.StageIndex >= len(q.Stages)-1 {
		return false, nil
	}
	q.StageIndex++
	tr.Active[id] = q
	return true, nil
}

// finish moves an active quest into a terminal partition.
func finish(tr *types.QuestTracker, q types.Quest, status types.QuestStatus, set map[string]bool, now time.Time) types.Quest {
	q.Status = status
	q.FinishedAt = stamp(now)
	delete(tr.Active, q.ID)
	delete(tr.Available, q.ID)
	set[q.ID] = true
	if tr.Finished == nil {
		tr.Finished = map[string]types.Quest{}
	}
	tr.Finished[q.ID] = q
	record(tr, q.ID, status, now)
	return q
}

// Complete finishes an active quest whose objectives are satisfied.
func Complete(tr *types.QuestTracker, id string, now time.Time) (types.Quest, error) {
	q, ok := tr.Active[id]
	if !ok {
		return types.Quest{}, errors.Wrapf(ErrNotActive, "complete %q", id)
	}
	if !IsComplete(q) {
		return types.Quest{}, errors.Wrapf(ErrIncomplete, "complete %q", id)
	}
	if tr.Completed == nil {
		tr.Completed = map[string]bool{}
	}
	return finish(tr, q, types.QuestCompleted, tr.Completed, now), nil
}

// Fail finishes an active quest as failed, at any stage.
func Fail(tr *types.QuestTracker, id string, now time.Time) (types.Quest, error) {
	q, ok := tr.Active[id]
	if !ok {
		return types.Quest{}, errors.Wrapf(ErrNotActive, "fail %q", id)
	}
	if tr.Failed == nil {
		tr.Failed = map[string]bool{}
	}
	return finish(tr, q, types.QuestFailed, tr.Failed, now), nil
}

// Abandon drops an active or available quest for good.
func Abandon(tr *types.QuestTracker, id string, now time.Time) (types.Quest, error) {
	q, ok := tr.Active[id]
	if !ok {
		q, ok = tr.Available[id]
	}
	if !ok {
		return types.Quest{}, errors.Wrapf(ErrUnknownQuest, "abandon %q", id)
	}
	if tr.Abandoned == nil {
		tr.Abandoned = map[string]bool{}
	}
	return finish(tr, q, types.QuestAbandoned, tr.Abandoned, now), nil
}

// Block marks a quest as blocked. An active quest returns to the
// available pool; progress is kept.
func Block(tr *types.QuestTracker, id string, now time.Time) error {
	q, ok := tr.Active[id]
	if ok {
		delete(tr.Active, id)
	} else if q, ok = tr.Available[id]; !ok {
		return errors.Wrapf(ErrUnknownQuest, "block %q", id)
	}
	q.Status = types.QuestBlocked
	if tr.Available == nil {
		tr.Available = map[string]types.Quest{}
	}
	tr.Available[id] = q
	record(tr, id, types.QuestBlocked, now)
	return nil
}

// Unblock makes a blocked quest available again.
func Unblock(tr *types.QuestTracker, id string, now time.Time) error {
	q, ok := tr.Available[id]
	if !ok || q.Status != types.QuestBlocked {
		return errors.Wrapf(ErrBlocked, "unblock %q: not blocked", id)
	}
	q.Status = types.QuestAvailable
	tr.Available[id] = q
	record(tr, id, types.QuestAvailable, now)
	return nil
}

// Progress credits amount toward every matching objective on the current
// stage of each active quest, clamped to the required count. Returns the
// ids of quests that made progress, sorted.
func Progress(tr *types.QuestTracker, kind types.ObjectiveKind, target string, amount int) []string {
	var touched []string
	for _, id := range sortedKeys(tr.Active) {
		q := tr.Active[id]
		if q.StageIndex < 0 || q.StageIndex >= len(q.Stages) {
			continue
		}
		stage := q.Stages[q.StageIndex]
		objs := append([]types.QuestObjective(nil), stage.Objectives...)
		changed := false
		for i, o := range objs {
			if o.Kind != kind || o.Target != target || o.Current >= o.Required {
				continue
			}
			o.Current += amount
			if o.Current > o.Required {
				o.Current = o.Required
			}
			objs[i] = o
			changed = true
		}
		if !changed {
			continue
		}
		stages := append([]types.QuestStage(nil), q.Stages...)
		stage.Objectives = objs
		stages[q.StageIndex] = stage
		q.Stages = stages
		tr.Active[id] = q
		touched = append(touched, id)
	}
	return touched
}

// ObjectivePercent is current/required as a whole percentage. An objective
// requiring nothing is 100% done.
func ObjectivePercent(o types.QuestObjective) int {
	if o.Required == 0 {
		return 100
	}
	return o.Current * 100 / o.Required
}

// StagePercent is the mean of the stage's objective percentages. A stage
// with no objectives is 100% done.
func StagePercent(s types.QuestStage) int {
	if len(s.Objectives) == 0 {
		return 100
	}
	total := 0
	for _, o := range s.Objectives {
		total += ObjectivePercent(o)
	}
	return total / len(s.Objectives)
}

// RewardMultiplier scales experience by the level gap between player and
// giver: a bonus when under-leveled, half when more than five levels over,
// unchanged otherwise.
func RewardMultiplier(playerLevel, giverLevel int) float64 {
	diff := playerLevel - giverLevel
	switch {
	case diff < 0:
		return 1.0 + float64(-diff)*0.1
	case diff > 5:
		return 0.5
	default:
		return 1.0
	}
}

// ScaledReward returns the quest's reward with XP scaled for the player's
// level. Gold, items and reputation are never scaled.
func ScaledReward(q types.Quest, playerLevel int) types.QuestReward {
	r := q.Reward
	r.XP = int(float64(r.XP) * RewardMultiplier(playerLevel, q.GiverLevel))
	r.Items = append([]string(nil), q.Reward.Items...)
	if q.Reward.Reputation != nil {
		r.Reputation = make(map[string]int, len(q.Reward.Reputation))
		for k, v := range q.Reward.Reputation {
			r.Reputation[k] = v
		}
	}
	return r
}

// XPPerLevel is the experience needed for each level past the first.
const XPPerLevel = 100

// ApplyReward grants a reward to the player. Unknown reward items are
// skipped. Returns true if the player gained a level.
func ApplyReward(w *types.World, r types.QuestReward) bool {
	p := &w.Player
	before := p.Level
	p.Experience += r.XP
	if lvl := 1 + p.Experience/XPPerLevel; lvl > p.Level {
		p.Level = lvl
	}
	p.Gold += r.Gold
	for _, id := range r.Items {
		_ = state.GiveItem(w, id)
	}
	if len(r.Reputation) > 0 && p.Reputation == nil {
		p.Reputation = map[string]int{}
	}
	for faction, delta := range r.Reputation {
		p.Reputation[faction] += delta
	}
	return p.Level > before
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
