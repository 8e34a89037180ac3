package game

import (
	"testing"

	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
)

func TestSentinelConditions(t *testing.T) {
	r := rank.Rank(0) // radius 10, ceiling at y=100
	cases := []struct {
		name      string
		y, vy, om float64
		powerUp   bool
		want      bool
	}{
		{"settled above ceiling", 100, 0, 0, false, true},
		{"top exactly on ceiling", 110, 0, 0, false, false},
		{"below ceiling", 300, 0, 0, false, false},
		{"still falling", 100, 0.02, 0, false, false},
		{"rising", 100, -0.5, 0, false, false},
		{"rolling", 100, 0, 0.02, false, false},
		{"power-up ignored", 100, 0, 0, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.start(t, Classic)
			kind := piece.KindNone
			if tc.powerUp {
				kind = piece.KindBomb
			}
			hd := h.placePowerUp(r, kind, 200, tc.y)
			h.world.setMotion(hd, tc.vy, tc.om)
			if got := h.g.sentinel.Check(h.gc); got != tc.want {
				t.Fatalf("Check()=%v want %v", got, tc.want)
			}
		})
	}
}

func TestSentinelIgnoresControlledPiece(t *testing.T) {
	h := newHarness(t)
	h.start(t, Classic)
	if h.gc.controlled == 0 {
		t.Fatalf("expected a held piece at the aim line")
	}
	h.ticks(10)
	if h.gc.State != Running {
		t.Fatalf("held piece above the ceiling must not end the run")
	}
}

func TestSentinelNeverFiresInEndless(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	for x := 40.0; x < 360; x += 30 {
		h.place(rank.Rank(int(x)%5), x, 20)
	}
	h.ticks(30)
	if h.gc.State != Running {
		t.Fatalf("endless run ended: %s", h.gc.State)
	}
}

func TestSentinelEndsClassicRun(t *testing.T) {
	h := newHarness(t)
	h.start(t, Classic)
	h.place(3, 200, 60)
	h.g.Tick()
	if h.gc.State != GameOver {
		t.Fatalf("state=%s want game_over", h.gc.State)
	}
	evs := h.g.Drain()
	if countKind(evs, EventGameOver) != 1 {
		t.Fatalf("expected one game-over event, got %+v", evs)
	}
	// physics is frozen afterwards
	steps := h.world.steps
	h.ticks(5)
	if h.world.steps != steps {
		t.Fatalf("world stepped after game over")
	}
}
