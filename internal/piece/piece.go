// Package piece builds piece descriptors: the typed payload a body carries plus
// its spawn position and control state.
package piece

import (
	"github.com/xtding233/suika-backend/internal/physics"
	"github.com/xtding233/suika-backend/internal/rank"
	"github.com/xtding233/suika-backend/internal/roll"
)

// Kind is the power-up flavour of a piece.
type Kind uint8

const (
	KindNone Kind = iota
	KindBomb
	KindRainbow
)

func (k Kind) String() string {
	switch k {
	case KindBomb:
		return "bomb"
	case KindRainbow:
		return "rainbow"
	}
	return "none"
}

// Payload is the game data attached to a body: either Normal or PowerUp.
type Payload interface {
	Rank() rank.Rank
	payload()
}

// Normal is an ordinary mergeable piece.
type Normal struct {
	R rank.Rank
}

func (n Normal) Rank() rank.Rank { return n.R }
func (Normal) payload()          {}

// PowerUp triggers its effect on contact with a normal piece instead of merging.
type PowerUp struct {
	R    rank.Rank
	Kind Kind
}

func (p PowerUp) Rank() rank.Rank { return p.R }
func (PowerUp) payload()          {}

// AsPowerUp unwraps p when it is a power-up.
func AsPowerUp(p Payload) (PowerUp, bool) {
	pu, ok := p.(PowerUp)
	return pu, ok
}

// AsNormal unwraps p when it is a normal piece.
func AsNormal(p Payload) (Normal, bool) {
	n, ok := p.(Normal)
	return n, ok
}

// Descriptor is everything needed to insert a piece into the physics world.
type Descriptor struct {
	Payload    Payload
	Position   physics.Vec
	Controlled bool
}

func (d Descriptor) Rank() rank.Rank { return d.Payload.Rank() }
func (d Descriptor) Radius() float64 { return d.Payload.Rank().Radius() }

func (d Descriptor) IsPowerUp() bool {
	_, ok := AsPowerUp(d.Payload)
	return ok
}

func (d Descriptor) PowerUpKind() Kind {
	if pu, ok := AsPowerUp(d.Payload); ok {
		return pu.Kind
	}
	return KindNone
}

// Factory creates descriptors. It has no side effects beyond construction.
type Factory struct {
	RNG roll.RandomSource
}

// NewFactory creates a factory; a nil rng falls back to the default source.
func NewFactory(rng roll.RandomSource) *Factory {
	if rng == nil {
		rng = roll.DefaultRNG()
	}
	return &Factory{RNG: rng}
}

// PickKind draws bomb or rainbow with equal probability.
func (f *Factory) PickKind() Kind {
	if roll.Intn(f.RNG, 2) == 0 {
		return KindBomb
	}
	return KindRainbow
}

// New builds a descriptor. r is clamped into the rank table; when powerUp is
// set the kind is drawn here and stays fixed for the piece's lifetime.
func (f *Factory) New(r int, pos physics.Vec, controlled, powerUp bool) Descriptor {
	kind := KindNone
	if powerUp {
		kind = f.PickKind()
	}
	return f.WithKind(r, pos, controlled, kind)
}

// WithKind builds a descriptor whose power-up kind was already decided, e.g.
// by the spawn preview. KindNone yields a normal piece.
func (f *Factory) WithKind(r int, pos physics.Vec, controlled bool, kind Kind) Descriptor {
	rk := rank.Clamp(r)
	var p Payload = Normal{R: rk}
	if kind != KindNone {
		p = PowerUp{R: rk, Kind: kind}
	}
	return Descriptor{Payload: p, Position: pos, Controlled: controlled}
}
