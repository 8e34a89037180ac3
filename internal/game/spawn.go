package game

import (
	"math"

	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
	"github.com/xtding233/suika-backend/internal/roll"
)

// SpawnQueue is the single-slot look-ahead plus the aim/drop pipeline.
type SpawnQueue struct{}

// PrepareNext refills the slot: a power-up in the smallest PowerUpRanks ranks
// with probability PowerUpProb, otherwise a normal piece in the smallest
// NormalRanks ranks. A power-up's kind is not part of the slot; the factory
// draws it when the piece spawns.
func (q *SpawnQueue) PrepareNext(gc *GameContext) {
	rng := gc.Factory.RNG
	powerUp, err := gc.pity.Draw(gc.Params.PowerUpProb)
	if err != nil {
		gc.Log.Printf("power-up draw: %v", err)
		powerUp = false
	}
	if powerUp {
		gc.Slot = Slot{Rank: rank.Clamp(roll.Intn(rng, gc.Params.PowerUpRanks)), PowerUp: true}
	} else {
		gc.Slot = Slot{Rank: rank.Clamp(roll.Intn(rng, gc.Params.NormalRanks))}
	}
	ev := Event{Kind: EventNext, Rank: int(gc.Slot.Rank)}
	if gc.Slot.PowerUp {
		ev.PowerUp = PowerUpPending
	}
	gc.emit(ev)
}

func kindName(k piece.Kind) string {
	if k == piece.KindNone {
		return ""
	}
	return k.String()
}

// Spawn materializes the slot as a controlled piece at the aim line and draws
// the next slot. It does nothing unless a run is active and no piece is
// already held.
func (q *SpawnQueue) Spawn(gc *GameContext) {
	if !gc.running() || gc.controlled != 0 {
		return
	}
	pos := physics.Vec{X: gc.Params.Width / 2, Y: gc.Params.AimY}
	d := gc.Factory.New(int(gc.Slot.Rank), pos, true, gc.Slot.PowerUp)
	gc.controlled = gc.insert(d)
	gc.emit(Event{Kind: EventSpawn, Rank: int(d.Rank()), PowerUp: kindName(d.PowerUpKind()), X: pos.X, Y: pos.Y})
	q.PrepareNext(gc)
}

// Aim moves the controlled piece to x, clamped so it stays inside the walls.
// A non-finite x is ignored.
func (q *SpawnQueue) Aim(gc *GameContext, x float64) {
	if !gc.running() || gc.controlled == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	ps, ok := gc.piece(gc.controlled)
	if !ok {
		return
	}
	gc.World.SetPosition(gc.controlled, physics.Vec{X: clampAim(gc, ps.payload.Rank(), x), Y: gc.Params.AimY})
}

func clampAim(gc *GameContext, r rank.Rank, x float64) float64 {
	rad := r.Radius()
	lo := gc.Params.WallMargin + rad
	hi := gc.Params.Width - gc.Params.WallMargin - rad
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Drop releases the controlled piece and schedules the next spawn after the
// cooldown. It reports whether a piece was released.
func (q *SpawnQueue) Drop(gc *GameContext) bool {
	if !gc.running() || gc.controlled == 0 {
		return false
	}
	h := gc.controlled
	ps := gc.pieces[h]
	ps.controlled = false
	gc.pieces[h] = ps
	gc.controlled = 0
	gc.World.SetStatic(h, false)

	var pos physics.Vec
	if b, ok := gc.World.Body(h); ok {
		pos = b.Position
	}
	kind := piece.KindNone
	if pu, ok := piece.AsPowerUp(ps.payload); ok {
		kind = pu.Kind
	}
	gc.emit(Event{Kind: EventDrop, Rank: int(ps.payload.Rank()), PowerUp: kindName(kind), X: pos.X, Y: pos.Y})

	gc.Clock.Cancel(gc.tasks.drop)
	gc.tasks.drop = gc.after(gc.Params.DropCooldown, func() {
		gc.tasks.drop = 0
		q.Spawn(gc)
	})
	return true
}
