// Package physics is the rigid-body collaborator the game layer drives. World is
// the narrow interface the game consumes; Space is the in-tree implementation.
package physics

import "math"

// Vec is a 2D vector in world units, y pointing down.
type Vec struct {
	X, Y float64
}

func (a Vec) Add(b Vec) Vec       { return Vec{a.X + b.X, a.Y + b.Y} }
func (a Vec) Sub(b Vec) Vec       { return Vec{a.X - b.X, a.Y - b.Y} }
func (a Vec) Scale(k float64) Vec { return Vec{a.X * k, a.Y * k} }
func (a Vec) Dot(b Vec) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec) Len() float64        { return math.Hypot(a.X, a.Y) }
func (a Vec) Dist(b Vec) float64  { return a.Sub(b).Len() }
func Midpoint(a, b Vec) Vec       { return Vec{(a.X + b.X) / 2, (a.Y + b.Y) / 2} }
func (a Vec) Perp() Vec           { return Vec{-a.Y, a.X} }

func (a Vec) Near(b Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// Handle identifies a body. The zero Handle is never issued.
type Handle uint64

// Material holds contact parameters for a body.
type Material struct {
	Restitution float64
	Friction    float64
	Density     float64
}

// Body is a read-only snapshot of one body in the world.
type Body struct {
	Handle          Handle
	Position        Vec
	Velocity        Vec
	AngularVelocity float64
	Static          bool
	Radius          float64 // 0 for boxes
}

// Pair is one collision-start report; A and B began touching this step.
type Pair struct {
	A, B Handle
}

// World is what the game layer needs from a physics engine.
type World interface {
	CreateCircle(pos Vec, radius float64, m Material) Handle
	CreateRect(center Vec, w, h float64) Handle
	Add(hs ...Handle)
	Remove(hs ...Handle)
	SetStatic(h Handle, static bool)
	SetPosition(h Handle, p Vec)
	Body(h Handle) (Body, bool)
	Bodies() []Body
	Step() []Pair
	Clear()
}
