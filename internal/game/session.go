package game

import (
	"fmt"
	"log"
	"time"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/roll"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tuning"
)

// Options configures a Game. Zero values fall back to defaults: tuning.Default,
// a fresh physics.Space, an in-memory store, the crypto RNG and a discarding
// logger.
type Options struct {
	Params tuning.Params
	World  physics.World
	Store  store.Store
	RNG    roll.RandomSource
	Logger *log.Logger
}

// Game is the session controller. It owns the GameContext and routes input,
// ticks and timers to the components.
type Game struct {
	gc *GameContext

	spawn        SpawnQueue
	merge        MergeResolver
	score        ScoreEngine
	sentinel     Sentinel
	achievements Tracker

	pending *tuning.Params
}

// New builds a game in the Menu state with the persisted high score and
// achievement ledger loaded.
func New(opts Options) *Game {
	p := opts.Params
	if p.TickHz == 0 {
		p = tuning.Default()
	}
	w := opts.World
	if w == nil {
		sp := physics.NewSpace()
		sp.Gravity = physics.Vec{Y: p.Gravity}
		sp.Iterations = p.Iterations
		w = sp
	}
	gc := newContext(p, w, opts.Store, opts.RNG, opts.Logger)
	gc.Score.High = loadHighScore(gc)
	gc.ledger = loadLedger(gc)

	g := &Game{gc: gc}
	g.score.Achievements = &g.achievements
	g.merge.Score = &g.score
	g.merge.Achievements = &g.achievements
	return g
}

// Context exposes the state for inspection. Callers must not mutate it while
// the game is being driven.
func (g *Game) Context() *GameContext { return g.gc }

func (g *Game) State() State          { return g.gc.State }
func (g *Game) Mode() Mode            { return g.gc.Mode }
func (g *Game) Params() tuning.Params { return g.gc.Params }

// SetParams stages new tuning; it takes effect when the next run starts.
func (g *Game) SetParams(p tuning.Params) {
	g.pending = &p
}

// SelectMode starts a run from the menu or the game-over screen.
func (g *Game) SelectMode(m Mode) error {
	if m > Endless {
		return fmt.Errorf("%w: %d", ErrUnknownMode, m)
	}
	if g.gc.State == Running {
		return fmt.Errorf("%w: select mode while running", ErrInvalidTransition)
	}
	g.start(m)
	return nil
}

// Restart starts a fresh run in the current mode.
func (g *Game) Restart() error {
	if g.gc.State == Menu {
		return fmt.Errorf("%w: restart from menu", ErrInvalidTransition)
	}
	g.start(g.gc.Mode)
	return nil
}

// ReturnToMenu tears down timers and goes back to mode selection.
func (g *Game) ReturnToMenu() error {
	gc := g.gc
	if gc.State == Menu {
		return fmt.Errorf("%w: already in menu", ErrInvalidTransition)
	}
	gc.cancelTasks()
	gc.Generation++
	gc.Rainbow = false
	gc.State = Menu
	gc.Log.Printf("session %d: menu", gc.Generation)
	gc.emit(Event{Kind: EventState, State: Menu.String()})
	return nil
}

// PointerMove aims the held piece.
func (g *Game) PointerMove(x float64) { g.spawn.Aim(g.gc, x) }

// Drop releases the held piece.
func (g *Game) Drop() bool { return g.spawn.Drop(g.gc) }

// Tick advances the clock by one physics step, fires due timers and, while a
// run is active, steps the world, resolves merges and checks for game over.
func (g *Game) Tick() {
	gc := g.gc
	gc.Clock.Advance(gc.Params.TickDuration())
	if !gc.running() {
		return
	}
	pairs := gc.World.Step()
	g.merge.Resolve(gc, pairs)
	if g.sentinel.Check(gc) {
		g.gameOver(ReasonStacked)
	}
}

// Drain returns and clears the pending events.
func (g *Game) Drain() []Event {
	out := g.gc.outbox
	g.gc.outbox = nil
	return out
}

func (g *Game) start(m Mode) {
	gc := g.gc
	gc.cancelTasks()
	gc.Generation++
	if g.pending != nil {
		gc.Params = *g.pending
		gc.pity.SetThreshold(gc.Params.PowerUpPity)
		if sp, ok := gc.World.(*physics.Space); ok {
			sp.Gravity = physics.Vec{Y: gc.Params.Gravity}
			sp.Iterations = gc.Params.Iterations
		}
		g.pending = nil
	}
	gc.seedBoard()

	gc.Mode = m
	gc.State = Running
	gc.StartedAt = gc.Clock.Now()
	gc.Elapsed = 0
	gc.Score.Current = 0
	gc.Combo = Combo{}
	gc.Stats = Stats{}
	gc.Rainbow = false
	gc.Remaining = 0
	gc.pity.Reset()

	gc.Log.Printf("session %d: running mode=%s", gc.Generation, m)
	gc.emit(Event{Kind: EventState, State: Running.String(), Mode: m.String()})

	if m == TimeAttack {
		gc.Remaining = gc.Params.TimeAttack
		gc.tasks.countdown = gc.every(time.Second, func() {
			gc.Remaining -= time.Second
			if gc.Remaining < 0 {
				gc.Remaining = 0
			}
			gc.emit(Event{Kind: EventCountdown, RemainingMs: gc.Remaining.Milliseconds()})
			if gc.Remaining == 0 {
				g.gameOver(ReasonTimeUp)
			}
		})
	}

	g.spawn.PrepareNext(gc)
	g.spawn.Spawn(gc)
}

func (g *Game) gameOver(reason string) {
	gc := g.gc
	if gc.State != Running {
		return
	}
	gc.cancelTasks()
	gc.State = GameOver
	gc.Rainbow = false
	gc.Elapsed = gc.Clock.Now() - gc.StartedAt
	g.achievements.Evaluate(gc, true)
	gc.Log.Printf("session %d: game over (%s) score=%d high=%d", gc.Generation, reason, gc.Score.Current, gc.Score.High)
	gc.emit(Event{
		Kind:   EventGameOver,
		State:  GameOver.String(),
		Mode:   gc.Mode.String(),
		Reason: reason,
		Score:  gc.Score.Current,
		High:   gc.Score.High,
	})
}
