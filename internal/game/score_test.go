package game

import (
	"strconv"
	"testing"
	"time"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tuning"
)

func TestMultiplierMonotonicAndCapped(t *testing.T) {
	p := tuning.Default()
	prev := 0.0
	for streak := 1; streak <= 30; streak++ {
		m := Multiplier(streak, p.ComboStep, p.MaxMultiplier)
		if m < prev {
			t.Fatalf("multiplier decreased at streak %d: %v < %v", streak, m, prev)
		}
		if m > 5.0 {
			t.Fatalf("multiplier %v above cap at streak %d", m, streak)
		}
		if streak >= 9 && m != 5.0 {
			t.Fatalf("streak %d should be capped at 5.0, got %v", streak, m)
		}
		prev = m
	}
	if Multiplier(0, p.ComboStep, p.MaxMultiplier) != 1 {
		t.Fatalf("idle multiplier should display as 1")
	}
}

// mergeRankZero merges two fresh rank-0 pieces on the next tick.
func (h *harness) mergeRankZero() {
	a := h.place(0, 100, 400)
	b := h.place(0, 120, 400)
	h.collide(physics.Pair{A: a, B: b})
}

func TestStreakWithinWindow(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	wantStreak := []int{1, 2, 3, 4, 5}
	wantScore := []int{1, 2, 4, 6, 9} // floor(1 * 1, 1.5, 2, 2.5, 3) accumulated
	for i := range wantStreak {
		h.mergeRankZero()
		if h.gc.Combo.Streak != wantStreak[i] {
			t.Fatalf("merge %d: streak=%d want %d", i, h.gc.Combo.Streak, wantStreak[i])
		}
		if h.gc.Score.Current != wantScore[i] {
			t.Fatalf("merge %d: score=%d want %d", i, h.gc.Score.Current, wantScore[i])
		}
	}
	if h.gc.Stats.MaxCombo != 5 || !h.gc.ledger.Unlocked(Combo5) {
		t.Fatalf("maxCombo=%d combo-5=%v", h.gc.Stats.MaxCombo, h.gc.ledger.Unlocked(Combo5))
	}
}

func TestGapStartsFreshStreak(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	h.mergeRankZero()
	h.mergeRankZero()
	if h.gc.Combo.Streak != 2 {
		t.Fatalf("streak=%d want 2", h.gc.Combo.Streak)
	}

	h.ticks(int(2100 * time.Millisecond / h.gc.Params.TickDuration()))
	if h.gc.Combo.Streak != 0 {
		t.Fatalf("idle decay should reset streak to 0, got %d", h.gc.Combo.Streak)
	}
	if countKind(h.g.Drain(), EventComboReset) != 1 {
		t.Fatalf("expected one combo reset event")
	}

	h.mergeRankZero()
	if h.gc.Combo.Streak != 1 {
		t.Fatalf("streak=%d want fresh 1", h.gc.Combo.Streak)
	}
	if m := Multiplier(h.gc.Combo.Streak, h.gc.Params.ComboStep, h.gc.Params.MaxMultiplier); m != 1.0 {
		t.Fatalf("multiplier=%v want 1.0", m)
	}
}

func TestDecayIsRescheduledOnEachAward(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	h.mergeRankZero()
	h.ticks(100) // ~1.67s
	h.mergeRankZero()
	h.ticks(100) // 3.3s after the first merge, 1.67s after the second
	if h.gc.Combo.Streak != 2 {
		t.Fatalf("streak=%d; decay from the first award should have been cancelled", h.gc.Combo.Streak)
	}
}

func TestHighScoreMonotonicAndPersisted(t *testing.T) {
	s := store.NewMemory()
	_ = s.Set(store.KeyHighScore, "3")
	h := newHarnessWith(t, tuning.Default(), s)
	if h.gc.Score.High != 3 {
		t.Fatalf("high=%d want persisted 3", h.gc.Score.High)
	}
	h.start(t, Endless)

	prevHigh := h.gc.Score.High
	highEvents := 0
	for i := 0; i < 6; i++ {
		h.mergeRankZero()
		evs := h.g.Drain()
		if h.gc.Score.High < prevHigh {
			t.Fatalf("high decreased: %d -> %d", prevHigh, h.gc.Score.High)
		}
		exceeded := h.gc.Score.Current > prevHigh
		if exceeded != (countKind(evs, EventHighScore) == 1) {
			t.Fatalf("merge %d: high-score event mismatch (score %d, prev high %d)", i, h.gc.Score.Current, prevHigh)
		}
		if exceeded {
			highEvents++
		}
		prevHigh = h.gc.Score.High
	}
	if highEvents == 0 {
		t.Fatalf("expected the high score to be beaten")
	}
	v, _, _ := s.Get(store.KeyHighScore)
	if v != strconv.Itoa(h.gc.Score.High) {
		t.Fatalf("persisted high %q, want %d", v, h.gc.Score.High)
	}

	high := h.gc.Score.High
	if err := h.g.Restart(); err != nil {
		t.Fatal(err)
	}
	if h.gc.Score.Current != 0 || h.gc.Score.High != high {
		t.Fatalf("restart: current=%d high=%d, want 0 and %d", h.gc.Score.Current, h.gc.Score.High, high)
	}
}

func TestAwardNeverNegative(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	if pts := h.g.score.Award(h.gc, -50, SourceMerge); pts != 0 {
		t.Fatalf("negative raw awarded %d", pts)
	}
	if h.gc.Score.Current != 0 {
		t.Fatalf("score=%d", h.gc.Score.Current)
	}
}
