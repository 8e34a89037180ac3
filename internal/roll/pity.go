package roll

// PitySystem is the power-up spawn guarantee: after Pity-1 consecutive
// normal spawns the next slot is a power-up regardless of p. Pity 0 turns the
// guarantee off and every draw is a plain Draw(p).
type PitySystem struct {
	Pity  int          // spawns per guaranteed power-up, 0 = off
	Count int          // normal spawns since the last power-up
	RNG   RandomSource // source for the p roll
}

func NewPitySystem(pity int, rng RandomSource) *PitySystem {
	if rng == nil {
		rng = DefaultRNG()
	}
	ps := &PitySystem{RNG: rng}
	ps.SetThreshold(pity)
	return ps
}

// SetThreshold changes Pity between sessions. Negative values mean off.
func (ps *PitySystem) SetThreshold(pity int) {
	if pity < 0 {
		pity = 0
	}
	ps.Pity = pity
}

// Draw decides whether the next slot is a power-up. An invalid p is an error
// even when the guarantee would fire.
func (ps *PitySystem) Draw(p float64) (bool, error) {
	hit, err := Draw(p, ps.RNG)
	if err != nil {
		return false, err
	}
	if ps.Pity > 0 && ps.Count+1 >= ps.Pity {
		hit = true
	}
	if hit {
		ps.Count = 0
	} else {
		ps.Count++
	}
	return hit, nil
}

// Reset clears the miss counter at session start.
func (ps *PitySystem) Reset() { ps.Count = 0 }
