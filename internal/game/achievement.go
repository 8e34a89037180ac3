package game

import (
	"encoding/json"

	"github.com/xtding233/suika-backend/internal/store"
)

// AchievementID names an achievement in the persisted ledger.
type AchievementID string

const (
	FirstMerge AchievementID = "first-merge"
	Combo5     AchievementID = "combo-5"
	Score1000  AchievementID = "score-1000"
	Score5000  AchievementID = "score-5000"
	MaxRank    AchievementID = "max-rank"
	BombMaster AchievementID = "bomb-master"
	Survivor   AchievementID = "survivor"
	SpeedDemon AchievementID = "speed-demon"
)

// AchievementInfo is the display record for an achievement.
type AchievementInfo struct {
	ID          AchievementID `json:"id" msgpack:"id"`
	Name        string        `json:"name" msgpack:"name"`
	Icon        string        `json:"icon" msgpack:"icon"`
	Description string        `json:"description" msgpack:"description"`
}

var catalog = []AchievementInfo{
	{FirstMerge, "First Merge", "🍒", "Merge two fruits"},
	{Combo5, "Combo Master", "🔥", "Reach a 5x combo streak"},
	{Score1000, "Fruit Collector", "🍊", "Score 1000 points"},
	{Score5000, "Fruit Expert", "🍈", "Score 5000 points"},
	{MaxRank, "Watermelon!", "🍉", "Create the largest fruit"},
	{BombMaster, "Bomb Master", "💣", "Use 10 bombs"},
	{Survivor, "Survivor", "⏱", "Last 5 minutes in one run"},
	{SpeedDemon, "Speed Demon", "⚡", "Score 2000 in Time Attack"},
}

// Catalog returns every achievement in display order.
func Catalog() []AchievementInfo {
	out := make([]AchievementInfo, len(catalog))
	copy(out, catalog)
	return out
}

func lookupAchievement(id AchievementID) (AchievementInfo, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return AchievementInfo{}, false
}

// Ledger is the persisted, one-way set of unlocked achievements.
type Ledger struct {
	unlocked map[AchievementID]bool
}

func newLedger() *Ledger {
	return &Ledger{unlocked: make(map[AchievementID]bool)}
}

// loadLedger reads the ledger from the store. Absent or malformed data yields
// an all-locked ledger.
func loadLedger(gc *GameContext) *Ledger {
	l := newLedger()
	v, ok, err := gc.Store.Get(store.KeyAchievements)
	if err != nil {
		gc.Log.Printf("load achievements: %v", err)
		return l
	}
	if !ok {
		return l
	}
	var raw map[string]bool
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		gc.Log.Printf("ignoring malformed achievements: %v", err)
		return l
	}
	for id, on := range raw {
		if _, known := lookupAchievement(AchievementID(id)); known && on {
			l.unlocked[AchievementID(id)] = true
		}
	}
	return l
}

func (l *Ledger) Unlocked(id AchievementID) bool { return l.unlocked[id] }

// Count is the number of unlocked achievements.
func (l *Ledger) Count() int { return len(l.unlocked) }

func (l *Ledger) marshal() string {
	m := make(map[string]bool, len(catalog))
	for _, a := range catalog {
		m[string(a.ID)] = l.unlocked[a.ID]
	}
	b, _ := json.Marshal(m)
	return string(b)
}

// Tracker evaluates achievement predicates against the context.
type Tracker struct{}

// Evaluate unlocks every achievement whose predicate holds. Survivor is only
// checked when atGameOver is set.
func (t *Tracker) Evaluate(gc *GameContext, atGameOver bool) {
	p := gc.Params
	if gc.Stats.Merges >= 1 {
		t.Unlock(gc, FirstMerge)
	}
	if gc.Combo.Streak >= 5 {
		t.Unlock(gc, Combo5)
	}
	if gc.Score.Current >= 1000 {
		t.Unlock(gc, Score1000)
	}
	if gc.Score.Current >= 5000 {
		t.Unlock(gc, Score5000)
	}
	if gc.Stats.ReachedMax {
		t.Unlock(gc, MaxRank)
	}
	if gc.Stats.BombsUsed >= 10 {
		t.Unlock(gc, BombMaster)
	}
	if gc.Mode == TimeAttack && gc.Score.Current >= 2000 {
		t.Unlock(gc, SpeedDemon)
	}
	if atGameOver && gc.Elapsed >= p.SurvivorAfter {
		t.Unlock(gc, Survivor)
	}
}

// Unlock marks id unlocked, persists the ledger and emits a notification.
// Unlocking twice is a no-op.
func (t *Tracker) Unlock(gc *GameContext, id AchievementID) bool {
	info, ok := lookupAchievement(id)
	if !ok || gc.ledger.unlocked[id] {
		return false
	}
	gc.ledger.unlocked[id] = true
	if err := gc.Store.Set(store.KeyAchievements, gc.ledger.marshal()); err != nil {
		gc.Log.Printf("persist achievements: %v", err)
	}
	gc.Log.Printf("achievement unlocked: %s", id)
	gc.emit(Event{Kind: EventAchievement, Achievement: &info})
	return true
}
