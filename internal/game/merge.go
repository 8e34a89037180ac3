package game

import (
	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/piece"
	"github.com/xtding233/suika-backend/internal/rank"
)

// MergeResolver turns collision-start pairs into world mutations and awards.
type MergeResolver struct {
	Score        *ScoreEngine
	Achievements *Tracker
}

// Resolve handles the pairs of one physics step in report order. A body
// removed by an earlier pair no longer has a payload and is skipped.
func (m *MergeResolver) Resolve(gc *GameContext, pairs []physics.Pair) {
	for _, p := range pairs {
		if !gc.running() {
			return
		}
		a, okA := gc.piece(p.A)
		b, okB := gc.piece(p.B)
		if !okA || !okB || a.controlled || b.controlled {
			continue
		}
		puA, isA := piece.AsPowerUp(a.payload)
		puB, isB := piece.AsPowerUp(b.payload)
		switch {
		case isA && isB:
		case isA:
			m.trigger(gc, p.A, puA)
		case isB:
			m.trigger(gc, p.B, puB)
		case a.payload.Rank() == b.payload.Rank():
			m.merge(gc, p.A, p.B, a.payload.Rank())
		}
	}
}

func (m *MergeResolver) merge(gc *GameContext, ha, hb physics.Handle, r rank.Rank) {
	ba, okA := gc.World.Body(ha)
	bb, okB := gc.World.Body(hb)
	if !okA || !okB {
		return
	}
	mid := physics.Midpoint(ba.Position, bb.Position)
	gc.remove(ha, hb)

	next, ok := r.Next()
	if !ok {
		gc.emit(Event{Kind: EventMerge, Rank: int(r), X: mid.X, Y: mid.Y, Removed: 2})
		m.Score.Award(gc, 2*r.Score(), SourceTerminal)
		return
	}

	gc.insert(gc.Factory.WithKind(int(next), mid, false, piece.KindNone))
	gc.emit(Event{Kind: EventMerge, Rank: int(next), X: mid.X, Y: mid.Y, Removed: 2})
	if next == rank.Max {
		gc.Stats.ReachedMax = true
		gc.emit(Event{Kind: EventMaxRank, Rank: int(next), X: mid.X, Y: mid.Y})
	}
	m.Score.Award(gc, r.Score(), SourceMerge)
}

func (m *MergeResolver) trigger(gc *GameContext, h physics.Handle, pu piece.PowerUp) {
	switch pu.Kind {
	case piece.KindBomb:
		m.bomb(gc, h, pu)
	case piece.KindRainbow:
		m.rainbow(gc, h, pu)
	}
}

func (m *MergeResolver) bomb(gc *GameContext, h physics.Handle, pu piece.PowerUp) {
	self, ok := gc.World.Body(h)
	if !ok {
		return
	}
	center := self.Position
	var victims []physics.Handle
	raw := 0
	for _, b := range gc.World.Bodies() {
		ps, ok := gc.piece(b.Handle)
		if !ok || ps.controlled || b.Handle == h {
			continue
		}
		n, isNormal := piece.AsNormal(ps.payload)
		if !isNormal || center.Dist(b.Position) > gc.Params.BombRadius {
			continue
		}
		victims = append(victims, b.Handle)
		raw += 2 * n.R.Score()
	}
	gc.remove(append(victims, h)...)
	gc.Stats.BombsUsed++
	gc.emit(Event{
		Kind:    EventBomb,
		Rank:    int(pu.R),
		PowerUp: pu.Kind.String(),
		X:       center.X,
		Y:       center.Y,
		Removed: len(victims),
		Raw:     raw,
	})
	if raw > 0 {
		m.Score.Award(gc, raw, SourceBomb)
		return
	}
	if m.Achievements != nil {
		m.Achievements.Evaluate(gc, false)
	}
}

func (m *MergeResolver) rainbow(gc *GameContext, h physics.Handle, pu piece.PowerUp) {
	var pos physics.Vec
	if b, ok := gc.World.Body(h); ok {
		pos = b.Position
	}
	gc.remove(h)
	gc.Rainbow = true
	gc.Clock.Cancel(gc.tasks.rainbow)
	gc.tasks.rainbow = gc.after(gc.Params.Rainbow, func() {
		gc.Rainbow = false
		gc.tasks.rainbow = 0
		gc.emit(Event{Kind: EventRainbow, Active: false})
	})
	gc.emit(Event{
		Kind:        EventRainbow,
		Rank:        int(pu.R),
		PowerUp:     pu.Kind.String(),
		X:           pos.X,
		Y:           pos.Y,
		Active:      true,
		RemainingMs: gc.Params.Rainbow.Milliseconds(),
	})
}
