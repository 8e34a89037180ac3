package game

import (
	"math"
	"strconv"

	"github.com/xtding233/suika-backend/internal/store"
)

// Source says what produced raw points.
type Source uint8

const (
	SourceMerge Source = iota
	SourceTerminal
	SourceBomb
)

// Multiplier is the combo factor for a streak, capped at max.
func Multiplier(streak int, step, max float64) float64 {
	if streak < 1 {
		return 1
	}
	m := 1 + step*float64(streak-1)
	if m > max {
		m = max
	}
	return m
}

// ScoreEngine turns raw points into awarded points through the combo state.
type ScoreEngine struct {
	Achievements *Tracker
}

// Award applies the combo multiplier to raw, adds it to the score and
// re-arms the combo decay. It returns the awarded points.
func (e *ScoreEngine) Award(gc *GameContext, raw int, src Source) int {
	if raw < 0 {
		raw = 0
	}
	now := gc.Clock.Now()
	c := &gc.Combo
	if c.merged && now-c.LastMerge < gc.Params.ComboWindow {
		c.Streak++
	} else {
		c.Streak = 1
	}
	c.LastMerge = now
	c.merged = true

	mult := Multiplier(c.Streak, gc.Params.ComboStep, gc.Params.MaxMultiplier)
	pts := int(math.Floor(float64(raw) * mult))
	gc.Score.Current += pts
	if gc.Score.Current > gc.Score.High {
		gc.Score.High = gc.Score.Current
		if err := gc.Store.Set(store.KeyHighScore, strconv.Itoa(gc.Score.High)); err != nil {
			gc.Log.Printf("persist high score: %v", err)
		}
		gc.emit(Event{Kind: EventHighScore, High: gc.Score.High})
	}
	if src != SourceBomb {
		gc.Stats.Merges++
	}
	if c.Streak > gc.Stats.MaxCombo {
		gc.Stats.MaxCombo = c.Streak
	}
	gc.emit(Event{
		Kind:       EventScore,
		Points:     pts,
		Raw:        raw,
		Multiplier: mult,
		Streak:     c.Streak,
		Score:      gc.Score.Current,
	})

	if e.Achievements != nil {
		e.Achievements.Evaluate(gc, false)
	}

	gc.Clock.Cancel(gc.tasks.decay)
	gc.tasks.decay = gc.after(gc.Params.ComboWindow, func() {
		gc.Combo.Streak = 0
		gc.tasks.decay = 0
		gc.emit(Event{Kind: EventComboReset})
	})
	return pts
}

// loadHighScore reads the persisted high score; anything unreadable is 0.
func loadHighScore(gc *GameContext) int {
	v, ok, err := gc.Store.Get(store.KeyHighScore)
	if err != nil {
		gc.Log.Printf("load high score: %v", err)
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		gc.Log.Printf("ignoring malformed high score %q", v)
		return 0
	}
	return n
}
