package types

// ObjectiveKind is what a quest objective asks the player to do.
type ObjectiveKind string

const (
	ObjectiveKill     ObjectiveKind = "kill"
	ObjectiveCollect  ObjectiveKind = "collect"
	ObjectiveExplore  ObjectiveKind = "explore"
	ObjectiveTalk     ObjectiveKind = "talk"
	ObjectiveDefend   ObjectiveKind = "defend"
	ObjectiveDeliver  ObjectiveKind = "deliver"
	ObjectiveDiscover ObjectiveKind = "discover"
	ObjectivePuzzle   ObjectiveKind = "puzzle"
)

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

const (
	QuestAvailable QuestStatus = "available"
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
	QuestAbandoned QuestStatus = "abandoned"
	QuestBlocked   QuestStatus = "blocked"
)

// Difficulty is a quest's difficulty tier.
type Difficulty string

const (
	DifficultyTrivial     Difficulty = "trivial"
	DifficultyEasy        Difficulty = "easy"
	DifficultyModerate    Difficulty = "moderate"
	DifficultyChallenging Difficulty = "challenging"
	DifficultyHard        Difficulty = "hard"
	DifficultyLegendary   Difficulty = "legendary"
)

// QuestObjective is one measurable goal inside a stage.
type QuestObjective struct {
	ID          string        `json:"id"`
	Kind        ObjectiveKind `json:"kind"`
	Description string        `json:"description"`
	Target      string        `json:"target"`
	Required    int           `json:"required"`
	Current     int           `json:"current"`
	Optional    bool          `json:"optional,omitempty"`
	BonusXP     int           `json:"bonus_xp,omitempty"`
}

// QuestStage is an ordered phase of a quest.
type QuestStage struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Objectives  []QuestObjective `json:"objectives"`
	RewardXP    int              `json:"reward_xp,omitempty"`
}

// QuestReward is granted on completion.
type QuestReward struct {
	XP         int               `json:"xp"`
	Gold       int               `json:"gold"`
	Items      []string          `json:"items,omitempty"`
	Reputation map[string]int    `json:"reputation,omitempty"`
	Extras     map[string]string `json:"extras,omitempty"`
}

// Quest is a multi-stage quest and its progress.
type Quest struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Giver          string       `json:"giver"`
	GiverLevel     int          `json:"giver_level"`
	Difficulty     Difficulty   `json:"difficulty"`
	Stages         []QuestStage `json:"stages"`
	Reward         QuestReward  `json:"reward"`
	Prerequisites  []string     `json:"prerequisites,omitempty"`
	Blocks         []string     `json:"blocks,omitempty"` // quests that may not be accepted while this one is active or completed
	TimeLimitHours int          `json:"time_limit_hours,omitempty"`
	Status         QuestStatus  `json:"status"`
	StageIndex     int          `json:"stage_index"`
	AcceptedAt     string       `json:"accepted_at,omitempty"`
	FinishedAt     string       `json:"finished_at,omitempty"`
}

// QuestRecord is one entry in the tracker's history log.
type QuestRecord struct {
	QuestID   string      `json:"quest_id"`
	Status    QuestStatus `json:"status"`
	Timestamp string      `json:"timestamp"`
}

// QuestTracker partitions quests by lifecycle state. History is append-only.
type QuestTracker struct {
	Available map[string]Quest `json:"available"`
	Active    map[string]Quest `json:"active"`
	Completed map[string]bool  `json:"completed"`
	Failed    map[string]bool  `json:"failed"`
	Abandoned map[string]bool  `json:"abandoned"`
	Finished  map[string]Quest `json:"finished"` // completed, failed and abandoned quests by id
	History   []QuestRecord    `json:"history"`
}
