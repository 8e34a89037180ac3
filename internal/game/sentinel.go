package game

import (
	"math"

	"github.com/xtding233/suika-backend/internal/piece"
)

// Sentinel detects a settled piece resting above the ceiling line.
type Sentinel struct{}

// Check reports whether the run should end. Endless runs never end here.
func (s *Sentinel) Check(gc *GameContext) bool {
	if !gc.running() || gc.Mode == Endless {
		return false
	}
	p := gc.Params
	for _, b := range gc.World.Bodies() {
		ps, ok := gc.piece(b.Handle)
		if !ok || ps.controlled {
			continue
		}
		if _, pu := piece.AsPowerUp(ps.payload); pu {
			continue
		}
		top := b.Position.Y - ps.payload.Rank().Radius()
		if top < p.CeilingY &&
			math.Abs(b.Velocity.Y) < p.VelocityEpsilon &&
			math.Abs(b.AngularVelocity) < p.AngularEpsilon {
			return true
		}
	}
	return false
}
