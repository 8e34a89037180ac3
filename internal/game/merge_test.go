package game

import (
	"testing"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
)

func TestMergeYieldsNextRankAtMidpoint(t *testing.T) {
	for r := rank.Min; r < rank.Max; r++ {
		h := newHarness(t)
		h.start(t, Endless)
		a := h.place(r, 100, 400)
		b := h.place(r, 140, 420)
		before := h.world.pieces()

		h.collide(physics.Pair{A: a, B: b})

		if got := h.world.pieces(); got != before-1 {
			t.Fatalf("rank %d: pieces %d -> %d, want one fewer", r, before, got)
		}
		var merged []physics.Body
		for _, body := range h.world.Bodies() {
			ps, ok := h.gc.piece(body.Handle)
			if ok && !ps.controlled {
				merged = append(merged, body)
			}
		}
		if len(merged) != 1 {
			t.Fatalf("rank %d: %d uncontrolled pieces after merge, want 1", r, len(merged))
		}
		ps, _ := h.gc.piece(merged[0].Handle)
		if ps.payload.Rank() != r+1 {
			t.Fatalf("rank %d merged into %d", r, ps.payload.Rank())
		}
		if !merged[0].Position.Near(physics.Vec{X: 120, Y: 410}, 1e-9) {
			t.Fatalf("rank %d: merged at %+v, want midpoint", r, merged[0].Position)
		}
		if h.gc.Score.Current != r.Score() {
			t.Fatalf("rank %d: score %d, want %d", r, h.gc.Score.Current, r.Score())
		}
		if h.gc.Stats.Merges != 1 {
			t.Fatalf("rank %d: merges=%d", r, h.gc.Stats.Merges)
		}
	}
}

func TestTerminalMergeCreatesNothing(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	a := h.place(rank.Max, 120, 400)
	b := h.place(rank.Max, 240, 400)
	before := h.world.pieces()

	h.collide(physics.Pair{A: a, B: b})

	if got := h.world.pieces(); got != before-2 {
		t.Fatalf("pieces %d -> %d, want both removed and none created", before, got)
	}
	if want := 2 * rank.Max.Score(); h.gc.Score.Current != want {
		t.Fatalf("score=%d want %d", h.gc.Score.Current, want)
	}
}

func TestMaxRankRaisedOnce(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	a := h.place(rank.Max-1, 150, 400)
	b := h.place(rank.Max-1, 250, 400)

	h.collide(physics.Pair{A: a, B: b})
	evs := h.g.Drain()

	if countKind(evs, EventMaxRank) != 1 {
		t.Fatalf("expected one max-rank event, got %+v", evs)
	}
	if !h.gc.ledger.Unlocked(MaxRank) {
		t.Fatalf("max-rank achievement should be unlocked")
	}
}

func TestRemovedBodyIsNotMatchedAgain(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	a := h.place(2, 100, 400)
	b := h.place(2, 120, 400)
	c := h.place(2, 140, 400)

	h.collide(
		physics.Pair{A: a, B: b},
		physics.Pair{A: a, B: b},
		physics.Pair{A: b, B: c},
		physics.Pair{A: c, B: a},
	)

	if h.gc.Stats.Merges != 1 {
		t.Fatalf("merges=%d want 1", h.gc.Stats.Merges)
	}
	if h.gc.Score.Current != rank.Rank(2).Score() {
		t.Fatalf("score=%d want %d", h.gc.Score.Current, rank.Rank(2).Score())
	}
	if _, ok := h.gc.piece(c); !ok {
		t.Fatalf("third piece should survive")
	}
}

func TestIgnoredPairs(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	wall := h.gc.walls[0]
	held := h.gc.controlled
	p0 := h.place(0, 100, 400)
	p1 := h.place(1, 130, 400)
	bomb := h.placePowerUp(0, piece.KindBomb, 300, 400)
	rain := h.placePowerUp(0, piece.KindRainbow, 320, 400)
	before := h.world.pieces()

	h.collide(
		physics.Pair{A: wall, B: p0},
		physics.Pair{A: held, B: p0},
		physics.Pair{A: p0, B: p1},
		physics.Pair{A: bomb, B: rain},
		physics.Pair{A: held, B: bomb},
	)

	if got := h.world.pieces(); got != before {
		t.Fatalf("pieces %d -> %d, nothing should change", before, got)
	}
	if h.gc.Score.Current != 0 || h.gc.Rainbow {
		t.Fatalf("no award or effect expected, score=%d rainbow=%v", h.gc.Score.Current, h.gc.Rainbow)
	}
}

func TestBombClearsNearbyPieces(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	bomb := h.placePowerUp(1, piece.KindBomb, 200, 140)
	hit := h.place(3, 230, 140)
	near1 := h.place(1, 200, 220)
	near2 := h.place(4, 140, 140)
	far := h.place(0, 350, 140)
	held := h.gc.controlled

	h.collide(physics.Pair{A: bomb, B: hit})
	evs := h.g.Drain()

	for _, gone := range []physics.Handle{bomb, hit, near1, near2} {
		if _, ok := h.gc.piece(gone); ok {
			t.Fatalf("handle %d should have been removed", gone)
		}
	}
	for _, kept := range []physics.Handle{far, held} {
		if _, ok := h.gc.piece(kept); !ok {
			t.Fatalf("handle %d should have survived", kept)
		}
	}
	want := 2 * (rank.Rank(3).Score() + rank.Rank(1).Score() + rank.Rank(4).Score())
	if h.gc.Score.Current != want {
		t.Fatalf("score=%d want %d", h.gc.Score.Current, want)
	}
	if h.gc.Stats.BombsUsed != 1 {
		t.Fatalf("bombsUsed=%d want 1", h.gc.Stats.BombsUsed)
	}
	if h.gc.Stats.Merges != 0 {
		t.Fatalf("bombs must not count as merges, got %d", h.gc.Stats.Merges)
	}
	var bombEv *Event
	for i := range evs {
		if evs[i].Kind == EventBomb {
			bombEv = &evs[i]
		}
	}
	if bombEv == nil || bombEv.Removed != 3 {
		t.Fatalf("bomb event missing or wrong: %+v", bombEv)
	}
}

func TestBombMasterAfterTenBombs(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	for i := 0; i < 10; i++ {
		bomb := h.placePowerUp(0, piece.KindBomb, 200, 400)
		target := h.place(0, 215, 400)
		h.collide(physics.Pair{A: target, B: bomb})
		if i < 9 && h.gc.ledger.Unlocked(BombMaster) {
			t.Fatalf("bomb-master unlocked after %d bombs", i+1)
		}
	}
	if !h.gc.ledger.Unlocked(BombMaster) {
		t.Fatalf("bomb-master should be unlocked after 10 bombs")
	}
}

func TestRainbowIsTimeBoxed(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	rain := h.placePowerUp(0, piece.KindRainbow, 200, 400)
	target := h.place(2, 215, 400)

	h.collide(physics.Pair{A: rain, B: target})
	if !h.gc.Rainbow {
		t.Fatalf("rainbow should be active")
	}
	if _, ok := h.gc.piece(rain); ok {
		t.Fatalf("rainbow power-up should be consumed")
	}
	if _, ok := h.gc.piece(target); !ok {
		t.Fatalf("the touched piece is unaffected")
	}

	// a second rainbow halfway through extends the window
	h.ticks(300)
	rain2 := h.placePowerUp(0, piece.KindRainbow, 200, 400)
	h.collide(physics.Pair{A: target, B: rain2})
	h.ticks(400)
	if !h.gc.Rainbow {
		t.Fatalf("rainbow should still be active after refresh")
	}
	h.ticks(250)
	if h.gc.Rainbow {
		t.Fatalf("rainbow should have expired")
	}
}
