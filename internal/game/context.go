// Package game is the state and event-resolution layer of the drop-and-merge
// puzzle: spawn queue, merge resolver, combo/score engine, game-over sentinel,
// achievements and the session controller.
//
// Nothing in this package is safe for concurrent use. One goroutine owns a Game
// and feeds it ticks and input; see internal/runner.
package game

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
	"github.com/xtding233/suika-backend/internal/roll"
	"github.com/xtding233/suika-backend/internal/sched"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tuning"
)

var (
	ErrUnknownMode       = errors.New("unknown mode")
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Mode selects the rule set of a run.
type Mode uint8

const (
	Classic Mode = iota
	TimeAttack
	Endless
)

func (m Mode) String() string {
	switch m {
	case TimeAttack:
		return "time_attack"
	case Endless:
		return "endless"
	}
	return "classic"
}

// ParseMode accepts the names String produces plus a few spellings.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic", "":
		return Classic, nil
	case "time_attack", "timeattack", "time-attack":
		return TimeAttack, nil
	case "endless":
		return Endless, nil
	}
	return Classic, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// State is the session controller state.
type State uint8

const (
	Menu State = iota
	Running
	GameOver
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case GameOver:
		return "game_over"
	}
	return "menu"
}

// Slot is the single look-ahead spawn value.
type Slot struct {
	Rank    rank.Rank
	PowerUp bool
}

// Score is the current/high score pair.
type Score struct {
	Current int
	High    int
}

// Combo is the streak state machine.
type Combo struct {
	Streak    int
	LastMerge time.Duration
	merged    bool
}

// Stats are per-run counters.
type Stats struct {
	Merges     int
	MaxCombo   int
	BombsUsed  int
	ReachedMax bool
}

type pieceState struct {
	payload    piece.Payload
	controlled bool
}

type tasks struct {
	drop      sched.TaskID
	decay     sched.TaskID
	rainbow   sched.TaskID
	countdown sched.TaskID
}

// GameContext owns all mutable game state. Components receive it explicitly
// on every operation.
type GameContext struct {
	Params  tuning.Params
	World   physics.World
	Clock   *sched.Scheduler
	Store   store.Store
	Log     *log.Logger
	Factory *piece.Factory

	State      State
	Mode       Mode
	Generation uint64
	StartedAt  time.Duration
	Elapsed    time.Duration // frozen at game over
	Remaining  time.Duration // TimeAttack countdown
	Score      Score
	Combo      Combo
	Stats      Stats
	Slot       Slot
	Rainbow    bool

	pieces     map[physics.Handle]pieceState
	controlled physics.Handle
	walls      []physics.Handle
	tasks      tasks
	pity       *roll.PitySystem
	ledger     *Ledger
	outbox     []Event
}

func newContext(p tuning.Params, w physics.World, s store.Store, rng roll.RandomSource, logger *log.Logger) *GameContext {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if s == nil {
		s = store.NewMemory()
	}
	if rng == nil {
		rng = roll.DefaultRNG()
	}
	return &GameContext{
		Params:  p,
		World:   w,
		Clock:   sched.New(),
		Store:   s,
		Log:     logger,
		Factory: piece.NewFactory(rng),
		pieces:  make(map[physics.Handle]pieceState),
		pity:    roll.NewPitySystem(p.PowerUpPity, rng),
	}
}

func (gc *GameContext) running() bool { return gc.State == Running }

func (gc *GameContext) emit(ev Event) {
	ev.AtMs = gc.Clock.Now().Milliseconds()
	ev.Gen = gc.Generation
	gc.outbox = append(gc.outbox, ev)
}

// after schedules fn for the current run only: the callback is dropped if the
// run it was scheduled in has ended.
func (gc *GameContext) after(d time.Duration, fn func()) sched.TaskID {
	gen := gc.Generation
	return gc.Clock.After(d, func() {
		if gc.Generation != gen || gc.State != Running {
			return
		}
		fn()
	})
}

func (gc *GameContext) every(d time.Duration, fn func()) sched.TaskID {
	gen := gc.Generation
	return gc.Clock.Every(d, func() {
		if gc.Generation != gen || gc.State != Running {
			return
		}
		fn()
	})
}

func (gc *GameContext) cancelTasks() {
	gc.Clock.Cancel(gc.tasks.drop)
	gc.Clock.Cancel(gc.tasks.decay)
	gc.Clock.Cancel(gc.tasks.rainbow)
	gc.Clock.Cancel(gc.tasks.countdown)
	gc.tasks = tasks{}
	gc.Clock.CancelAll()
}

func (gc *GameContext) material() physics.Material {
	return physics.Material{
		Restitution: gc.Params.Restitution,
		Friction:    gc.Params.Friction,
		Density:     0.001,
	}
}

// insert puts a descriptor into the world and registers its payload.
func (gc *GameContext) insert(d piece.Descriptor) physics.Handle {
	h := gc.World.CreateCircle(d.Position, d.Radius(), gc.material())
	gc.World.Add(h)
	if d.Controlled {
		gc.World.SetStatic(h, true)
	}
	gc.pieces[h] = pieceState{payload: d.Payload, controlled: d.Controlled}
	return h
}

// remove takes bodies out of the world. A removed handle no longer resolves
// to a payload, which is what keeps a body from being matched twice in a tick.
func (gc *GameContext) remove(hs ...physics.Handle) {
	for _, h := range hs {
		delete(gc.pieces, h)
		if h == gc.controlled {
			gc.controlled = 0
		}
	}
	gc.World.Remove(hs...)
}

func (gc *GameContext) piece(h physics.Handle) (pieceState, bool) {
	ps, ok := gc.pieces[h]
	return ps, ok
}

// seedBoard clears the world and adds the floor and side walls.
func (gc *GameContext) seedBoard() {
	gc.World.Clear()
	gc.pieces = make(map[physics.Handle]pieceState)
	gc.controlled = 0

	p := gc.Params
	m := p.WallMargin
	if m <= 0 {
		m = 1
	}
	floor := gc.World.CreateRect(physics.Vec{X: p.Width / 2, Y: p.Height}, p.Width, 2*m)
	left := gc.World.CreateRect(physics.Vec{X: p.WallMargin - m/2, Y: p.Height / 2}, m, 2*p.Height)
	right := gc.World.CreateRect(physics.Vec{X: p.Width - p.WallMargin + m/2, Y: p.Height / 2}, m, 2*p.Height)
	gc.walls = []physics.Handle{floor, left, right}
	gc.World.Add(gc.walls...)
}
