package game

import (
	"errors"
	"io"
	"log"
	"sort"
	"testing"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
	"github.com/xtding233/suika-backend/internal/store"
	"github.com/xtding233/suika-backend/internal/tuning"
)

// fakeWorld is a physics.World whose collision reports are scripted.
type fakeWorld struct {
	next    physics.Handle
	created map[physics.Handle]*physics.Body
	live    map[physics.Handle]bool
	queued  [][]physics.Pair
	steps   int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		created: make(map[physics.Handle]*physics.Body),
		live:    make(map[physics.Handle]bool),
	}
}

func (w *fakeWorld) CreateCircle(pos physics.Vec, radius float64, _ physics.Material) physics.Handle {
	w.next++
	w.created[w.next] = &physics.Body{Handle: w.next, Position: pos, Radius: radius}
	return w.next
}

func (w *fakeWorld) CreateRect(center physics.Vec, _, _ float64) physics.Handle {
	w.next++
	w.created[w.next] = &physics.Body{Handle: w.next, Position: center, Static: true}
	return w.next
}

func (w *fakeWorld) Add(hs ...physics.Handle) {
	for _, h := range hs {
		if _, ok := w.created[h]; ok {
			w.live[h] = true
		}
	}
}

func (w *fakeWorld) Remove(hs ...physics.Handle) {
	for _, h := range hs {
		delete(w.live, h)
		delete(w.created, h)
	}
}

func (w *fakeWorld) SetStatic(h physics.Handle, static bool) {
	if b, ok := w.created[h]; ok {
		b.Static = static
	}
}

func (w *fakeWorld) SetPosition(h physics.Handle, p physics.Vec) {
	if b, ok := w.created[h]; ok {
		b.Position = p
	}
}

func (w *fakeWorld) setMotion(h physics.Handle, vy, omega float64) {
	if b, ok := w.created[h]; ok {
		b.Velocity.Y = vy
		b.AngularVelocity = omega
	}
}

func (w *fakeWorld) Body(h physics.Handle) (physics.Body, bool) {
	if !w.live[h] {
		return physics.Body{}, false
	}
	return *w.created[h], true
}

func (w *fakeWorld) Bodies() []physics.Body {
	out := make([]physics.Body, 0, len(w.live))
	for h := range w.live {
		out = append(out, *w.created[h])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

func (w *fakeWorld) Step() []physics.Pair {
	w.steps++
	if len(w.queued) == 0 {
		return nil
	}
	p := w.queued[0]
	w.queued = w.queued[1:]
	return p
}

func (w *fakeWorld) Clear() {
	w.created = make(map[physics.Handle]*physics.Body)
	w.live = make(map[physics.Handle]bool)
}

func (w *fakeWorld) pieces() int { return len(w.live) - 3 }

// fixedRNG always returns v.
type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("boom") }
func (failingStore) Set(string, string) error         { return errors.New("boom") }

type harness struct {
	g     *Game
	gc    *GameContext
	world *fakeWorld
	store *store.Memory
}

// newHarness builds a game on a fake world. The fixed RNG value 0.15 keeps
// every spawn a normal rank-0 piece.
func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, tuning.Default(), store.NewMemory())
}

func newHarnessWith(t *testing.T, p tuning.Params, s *store.Memory) *harness {
	t.Helper()
	w := newFakeWorld()
	g := New(Options{
		Params: p,
		World:  w,
		Store:  s,
		RNG:    fixedRNG(0.15),
		Logger: log.New(io.Discard, "", 0),
	})
	return &harness{g: g, gc: g.Context(), world: w, store: s}
}

func (h *harness) start(t *testing.T, m Mode) {
	t.Helper()
	if err := h.g.SelectMode(m); err != nil {
		t.Fatalf("select mode: %v", err)
	}
	h.g.Drain()
}

// place puts an uncontrolled normal piece on the board.
func (h *harness) place(r rank.Rank, x, y float64) physics.Handle {
	return h.gc.insert(h.gc.Factory.WithKind(int(r), physics.Vec{X: x, Y: y}, false, piece.KindNone))
}

func (h *harness) placePowerUp(r rank.Rank, kind piece.Kind, x, y float64) physics.Handle {
	return h.gc.insert(h.gc.Factory.WithKind(int(r), physics.Vec{X: x, Y: y}, false, kind))
}

// collide scripts pairs for the next Tick and runs it.
func (h *harness) collide(pairs ...physics.Pair) {
	h.world.queued = append(h.world.queued, pairs)
	h.g.Tick()
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.g.Tick()
	}
}

func countKind(evs []Event, k EventKind) int {
	n := 0
	for _, e := range evs {
		if e.Kind == k {
			n++
		}
	}
	return n
}
