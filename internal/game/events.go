package game

// EventKind tags an Event.
type EventKind string

const (
	EventState       EventKind = "state"
	EventSpawn       EventKind = "spawn"
	EventNext        EventKind = "next"
	EventDrop        EventKind = "drop"
	EventMerge       EventKind = "merge"
	EventMaxRank     EventKind = "max_rank"
	EventBomb        EventKind = "bomb"
	EventRainbow     EventKind = "rainbow"
	EventScore       EventKind = "score"
	EventComboReset  EventKind = "combo_reset"
	EventHighScore   EventKind = "high_score"
	EventAchievement EventKind = "achievement"
	EventCountdown   EventKind = "countdown"
	EventGameOver    EventKind = "game_over"
)

// Game-over reasons.
const (
	ReasonStacked = "stacked"
	ReasonTimeUp  = "time_up"
)

// PowerUpPending marks a next event whose slot holds a power-up. The kind is
// drawn at spawn.
const PowerUpPending = "pending"

// Event is one notification for the UI surface. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind `json:"kind" msgpack:"kind"`
	AtMs int64     `json:"at_ms" msgpack:"at_ms"`
	Gen  uint64    `json:"gen" msgpack:"gen"`

	State string `json:"state,omitempty" msgpack:"state,omitempty"`
	Mode  string `json:"mode,omitempty" msgpack:"mode,omitempty"`

	Rank    int     `json:"rank" msgpack:"rank"`
	PowerUp string  `json:"power_up,omitempty" msgpack:"power_up,omitempty"`
	X       float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y       float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	Removed int     `json:"removed,omitempty" msgpack:"removed,omitempty"`

	Points     int     `json:"points,omitempty" msgpack:"points,omitempty"`
	Raw        int     `json:"raw,omitempty" msgpack:"raw,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty" msgpack:"multiplier,omitempty"`
	Streak     int     `json:"streak,omitempty" msgpack:"streak,omitempty"`
	Score      int     `json:"score,omitempty" msgpack:"score,omitempty"`
	High       int     `json:"high,omitempty" msgpack:"high,omitempty"`

	Active      bool             `json:"active,omitempty" msgpack:"active,omitempty"`
	RemainingMs int64            `json:"remaining_ms,omitempty" msgpack:"remaining_ms,omitempty"`
	Achievement *AchievementInfo `json:"achievement,omitempty" msgpack:"achievement,omitempty"`
	Reason      string           `json:"reason,omitempty" msgpack:"reason,omitempty"`
}
