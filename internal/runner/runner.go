// Package runner owns a Game on a single goroutine: commands arrive on an
// inbox, a ticker drives the physics steps, and frames fan out to subscribers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/journal"
	"github.com/xtding233/suika-backend/internal/tuning"
)

var ErrStopped = errors.New("runner stopped")

type Options struct {
	Game        *game.Game
	BroadcastHz int // frames per second to subscribers, default 20
	Journal     *journal.Writer
	Cues        CuePlayer
	Logger      *log.Logger
}

type Runner struct {
	Inbox chan any

	game           *game.Game
	tickHz         int
	broadcastEvery uint64
	subs           map[int]Sink
	nextID         int
	journal        *journal.Writer
	cues           CuePlayer
	log            *log.Logger
	tick           uint64
	pending        []game.Event
	quit           chan struct{}
	done           chan struct{}
}

func New(opts Options) *Runner {
	g := opts.Game
	if g == nil {
		g = game.New(game.Options{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	tickHz := g.Params().TickHz
	if tickHz <= 0 {
		tickHz = 60
	}
	bhz := opts.BroadcastHz
	if bhz <= 0 {
		bhz = 20
	}
	every := tickHz / bhz
	if every <= 0 {
		every = 1
	}
	return &Runner{
		Inbox:          make(chan any, 256),
		game:           g,
		tickHz:         tickHz,
		broadcastEvery: uint64(every),
		subs:           make(map[int]Sink),
		nextID:         1,
		journal:        opts.Journal,
		cues:           opts.Cues,
		log:            logger,
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Run blocks until Stop.
func (r *Runner) Run() {
	defer close(r.done)
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			r.shutdown()
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.Step()
		}
	}
}

func (r *Runner) Stop() {
	close(r.quit)
	<-r.done
}

// Step runs one tick. It is exported for tests and headless drivers that do
// not call Run; it must not be called concurrently with Run.
func (r *Runner) Step() {
	r.game.Tick()
	r.tick++
	r.collect()
	if r.tick%r.broadcastEvery == 0 {
		r.broadcast()
	}
}

// Handle applies one command synchronously. Same caveat as Step.
func (r *Runner) Handle(cmd any) { r.handleCommand(cmd) }

func (r *Runner) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case SelectMode:
		reply(c.Reply, r.game.SelectMode(c.Mode))
	case Restart:
		reply(c.Reply, r.game.Restart())
	case ReturnToMenu:
		reply(c.Reply, r.game.ReturnToMenu())
	case Aim:
		r.game.PointerMove(c.X)
	case Drop:
		ok := r.game.Drop()
		if c.Reply != nil {
			c.Reply <- ok
		}
	case Tune:
		r.game.SetParams(c.Params)
		r.log.Printf("tuning staged: version=%s", c.Params.Version)
	case Snapshot:
		c.Reply <- r.game.View()
	case Subscribe:
		id := r.nextID
		r.nextID++
		r.subs[id] = c.Sink
		if c.Reply != nil {
			c.Reply <- id
		}
		r.sendTo(id, c.Sink, Frame{Tick: r.tick, View: r.game.View()})
	case Unsubscribe:
		if s, ok := r.subs[c.ID]; ok {
			_ = s.Close()
			delete(r.subs, c.ID)
		}
	default:
		r.log.Printf("unknown command %T", cmd)
	}
	r.collect()
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

// collect drains game events into the pending frame, the journal and the cue
// player.
func (r *Runner) collect() {
	evs := r.game.Drain()
	if len(evs) == 0 {
		return
	}
	for _, ev := range evs {
		if r.journal != nil {
			r.journalEvent(ev)
		}
		if r.cues != nil {
			r.cues.Play(ev)
		}
	}
	r.pending = append(r.pending, evs...)
}

func (r *Runner) journalEvent(ev game.Event) {
	if ev.Kind == game.EventState && ev.State == game.Running.String() {
		name := fmt.Sprintf("%d-%d", time.Now().Unix(), ev.Gen)
		if err := r.journal.Rotate(name); err != nil {
			r.log.Printf("journal rotate: %v", err)
		}
	}
	err := r.journal.Write(JournalEntry{Tick: r.tick, Event: ev})
	if err != nil && !errors.Is(err, journal.ErrNotOpen) {
		r.log.Printf("journal write: %v", err)
	}
	if ev.Kind == game.EventGameOver {
		if err := r.journal.Flush(); err != nil {
			r.log.Printf("journal flush: %v", err)
		}
	}
}

func (r *Runner) broadcast() {
	f := Frame{Tick: r.tick, View: r.game.View(), Events: r.pending}
	r.pending = nil
	var failed []int
	for id, s := range r.subs {
		if err := s.Send(f); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.drop(id)
	}
}

func (r *Runner) sendTo(id int, s Sink, f Frame) {
	if err := s.Send(f); err != nil {
		r.drop(id)
	}
}

func (r *Runner) drop(id int) {
	if s, ok := r.subs[id]; ok {
		_ = s.Close()
		delete(r.subs, id)
		r.log.Printf("subscriber %d dropped", id)
	}
}

func (r *Runner) shutdown() {
	for id := range r.subs {
		r.drop(id)
	}
	if r.journal != nil {
		if err := r.journal.Close(); err != nil {
			r.log.Printf("journal close: %v", err)
		}
	}
}

// NumSubscribers is only meaningful from the loop goroutine or after Stop.
func (r *Runner) NumSubscribers() int { return len(r.subs) }

// Blocking helpers for transports. They post a command and wait for the loop.

func (r *Runner) send(ctx context.Context, cmd any) error {
	select {
	case r.Inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrStopped
	}
}

func await[T any](ctx context.Context, r *Runner, ch chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-r.done:
		return zero, ErrStopped
	}
}

func (r *Runner) SelectMode(ctx context.Context, m game.Mode) error {
	ch := make(chan error, 1)
	if err := r.send(ctx, SelectMode{Mode: m, Reply: ch}); err != nil {
		return err
	}
	res, err := await(ctx, r, ch)
	if err != nil {
		return err
	}
	return res
}

func (r *Runner) Restart(ctx context.Context) error {
	ch := make(chan error, 1)
	if err := r.send(ctx, Restart{Reply: ch}); err != nil {
		return err
	}
	res, err := await(ctx, r, ch)
	if err != nil {
		return err
	}
	return res
}

func (r *Runner) ReturnToMenu(ctx context.Context) error {
	ch := make(chan error, 1)
	if err := r.send(ctx, ReturnToMenu{Reply: ch}); err != nil {
		return err
	}
	res, err := await(ctx, r, ch)
	if err != nil {
		return err
	}
	return res
}

func (r *Runner) Aim(ctx context.Context, x float64) error {
	return r.send(ctx, Aim{X: x})
}

func (r *Runner) Drop(ctx context.Context) (bool, error) {
	ch := make(chan bool, 1)
	if err := r.send(ctx, Drop{Reply: ch}); err != nil {
		return false, err
	}
	return await(ctx, r, ch)
}

func (r *Runner) View(ctx context.Context) (game.View, error) {
	ch := make(chan game.View, 1)
	if err := r.send(ctx, Snapshot{Reply: ch}); err != nil {
		return game.View{}, err
	}
	return await(ctx, r, ch)
}

func (r *Runner) Tune(ctx context.Context, p tuning.Params) error {
	return r.send(ctx, Tune{Params: p})
}

func (r *Runner) Subscribe(ctx context.Context, s Sink) (int, error) {
	ch := make(chan int, 1)
	if err := r.send(ctx, Subscribe{Sink: s, Reply: ch}); err != nil {
		return 0, err
	}
	return await(ctx, r, ch)
}

func (r *Runner) Unsubscribe(ctx context.Context, id int) error {
	return r.send(ctx, Unsubscribe{ID: id})
}
