package game

import (
	"errors"
	"testing"
	"time"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tuning"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"classic": Classic, "Time-Attack": TimeAttack, "endless": Endless, "": Classic}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("zen"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestSessionTransitions(t *testing.T) {
	h := newHarness(t)
	if h.gc.State != Menu {
		t.Fatalf("new game should start in menu")
	}
	if err := h.g.Restart(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("restart from menu: %v", err)
	}
	if err := h.g.ReturnToMenu(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("menu from menu: %v", err)
	}
	if err := h.g.SelectMode(Mode(9)); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("bad mode: %v", err)
	}

	h.start(t, Classic)
	if err := h.g.SelectMode(Endless); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("select while running: %v", err)
	}

	h.place(2, 200, 60)
	h.g.Tick()
	if h.gc.State != GameOver {
		t.Fatalf("state=%s want game_over", h.gc.State)
	}
	if h.gc.Clock.Len() != 0 {
		t.Fatalf("%d timers left running after game over", h.gc.Clock.Len())
	}

	if err := h.g.Restart(); err != nil {
		t.Fatal(err)
	}
	if h.gc.State != Running || h.gc.Mode != Classic {
		t.Fatalf("restart: state=%s mode=%s", h.gc.State, h.gc.Mode)
	}

	if err := h.g.ReturnToMenu(); err != nil {
		t.Fatal(err)
	}
	if h.gc.Clock.Len() != 0 {
		t.Fatalf("%d timers left running in menu", h.gc.Clock.Len())
	}
	if err := h.g.SelectMode(TimeAttack); err != nil {
		t.Fatal(err)
	}
	if h.gc.Mode != TimeAttack || h.gc.Remaining != h.gc.Params.TimeAttack {
		t.Fatalf("time attack not armed: mode=%s remaining=%v", h.gc.Mode, h.gc.Remaining)
	}
}

func TestRestartResetsRunState(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	h.mergeRankZero()
	h.mergeRankZero()
	rain := h.placePowerUp(0, piece.KindRainbow, 200, 400)
	target := h.place(0, 210, 400)
	h.collide(physics.Pair{A: rain, B: target})
	gen := h.gc.Generation

	if err := h.g.Restart(); err != nil {
		t.Fatal(err)
	}
	gc := h.gc
	if gc.Score.Current != 0 || gc.Combo.Streak != 0 || gc.Stats != (Stats{}) || gc.Rainbow {
		t.Fatalf("run state not reset: score=%d combo=%+v stats=%+v rainbow=%v", gc.Score.Current, gc.Combo, gc.Stats, gc.Rainbow)
	}
	if gc.Generation != gen+1 {
		t.Fatalf("generation %d -> %d", gen, gc.Generation)
	}
	if n := h.world.pieces(); n != 1 {
		t.Fatalf("board should hold only the new held piece, has %d", n)
	}
	if len(gc.walls) != 3 {
		t.Fatalf("walls not re-seeded")
	}
}

func TestStaleDropCooldownAfterRestart(t *testing.T) {
	h := newHarness(t)
	h.start(t, Classic)
	h.g.Drop()
	if err := h.g.Restart(); err != nil {
		t.Fatal(err)
	}
	h.ticks(90)
	held := 0
	for _, ps := range h.gc.pieces {
		if ps.controlled {
			held++
		}
	}
	if held != 1 {
		t.Fatalf("%d held pieces; the old cooldown must not spawn into the new run", held)
	}
}

func TestStaleCallbackIsGuardedByGeneration(t *testing.T) {
	h := newHarness(t)
	h.start(t, Endless)
	fired := false
	h.gc.after(time.Second, func() { fired = true })
	// bump the generation without the usual cancellation
	h.gc.Generation++
	h.ticks(70)
	if fired {
		t.Fatalf("callback from an older run fired")
	}
}

func TestTimeAttackEndsAtZero(t *testing.T) {
	h := newHarness(t)
	h.start(t, TimeAttack)
	total := int(h.gc.Params.TimeAttack / h.gc.Params.TickDuration())

	h.ticks(total - 120) // two seconds before the end
	if h.gc.State != Running {
		t.Fatalf("run ended early with %v remaining", h.gc.Remaining)
	}
	countdowns := countKind(h.g.Drain(), EventCountdown)
	for i := 0; i < 240 && h.gc.State == Running; i++ {
		h.g.Tick()
	}
	if h.gc.State != GameOver {
		t.Fatalf("time attack did not end, remaining=%v", h.gc.Remaining)
	}
	evs := h.g.Drain()
	countdowns += countKind(evs, EventCountdown)
	if want := int(h.gc.Params.TimeAttack / time.Second); countdowns != want {
		t.Fatalf("countdown events=%d want %d", countdowns, want)
	}
	for _, e := range evs {
		if e.Kind == EventGameOver && e.Reason != ReasonTimeUp {
			t.Fatalf("game over reason %q", e.Reason)
		}
	}
}

func TestSurvivorEvaluatedAtGameOver(t *testing.T) {
	p := tuning.Default()
	p.SurvivorAfter = 2 * time.Second

	short := newHarnessWith(t, p, store.NewMemory())
	short.start(t, Classic)
	short.ticks(60)
	short.place(1, 200, 60)
	short.g.Tick()
	if short.gc.State != GameOver || short.gc.ledger.Unlocked(Survivor) {
		t.Fatalf("short run: state=%s survivor=%v", short.gc.State, short.gc.ledger.Unlocked(Survivor))
	}

	long := newHarnessWith(t, p, store.NewMemory())
	long.start(t, Classic)
	long.ticks(130)
	if long.gc.ledger.Unlocked(Survivor) {
		t.Fatalf("survivor must only be checked at game over")
	}
	long.place(1, 200, 60)
	long.g.Tick()
	if long.gc.State != GameOver || !long.gc.ledger.Unlocked(Survivor) {
		t.Fatalf("long run: state=%s survivor=%v", long.gc.State, long.gc.ledger.Unlocked(Survivor))
	}
}

func TestStagedParamsApplyOnNextRun(t *testing.T) {
	h := newHarness(t)
	h.start(t, Classic)
	p := tuning.Default()
	p.DropCooldown = 100 * time.Millisecond
	h.g.SetParams(p)
	if h.gc.Params.DropCooldown != time.Second {
		t.Fatalf("params applied mid-run")
	}
	if err := h.g.Restart(); err != nil {
		t.Fatal(err)
	}
	if h.gc.Params.DropCooldown != 100*time.Millisecond {
		t.Fatalf("staged params not applied on restart")
	}
}

func TestViewSnapshot(t *testing.T) {
	h := newHarness(t)
	v := h.g.View()
	if v.State != "menu" || len(v.Pieces) != 0 || len(v.Achievements) != len(Catalog()) {
		t.Fatalf("menu view: %+v", v)
	}
	h.start(t, Classic)
	h.place(2, 200, 400)
	v = h.g.View()
	if v.State != "running" || v.Mode != "classic" || len(v.Pieces) != 2 {
		t.Fatalf("running view: state=%s mode=%s pieces=%d", v.State, v.Mode, len(v.Pieces))
	}
	if v.Next.Radius != h.gc.Slot.Rank.Radius() || v.Next.Icon == "" {
		t.Fatalf("next preview incomplete: %+v", v.Next)
	}
	if v.Multiplier != 1 || v.Board.CeilingY != h.gc.Params.CeilingY {
		t.Fatalf("view multiplier=%v board=%+v", v.Multiplier, v.Board)
	}
	held := 0
	for _, pv := range v.Pieces {
		if pv.Controlled {
			held++
		}
	}
	if held != 1 {
		t.Fatalf("view should show exactly one held piece, got %d", held)
	}
}
