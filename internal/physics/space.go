package physics

import "math"

// Gravity is in board units per tick squared, tuned for a 60 Hz step with
// per-step velocities.
const (
	DefaultGravity    = 0.25
	DefaultIterations = 8
	DefaultAirDrag    = 0.01

	positionSlop    = 0.01
	positionPercent = 0.8
	restThreshold   = 1.0 // normal speed under which contacts do not bounce
	touchTolerance  = 0.1
)

type shape uint8

const (
	shapeCircle shape = iota
	shapeRect
)

type body struct {
	h       Handle
	shape   shape
	pos     Vec
	vel     Vec
	angVel  float64
	radius  float64
	w, hgt  float64
	static  bool
	mat     Material
	invMass float64
	inWorld bool
	seq     int
}

type pairKey struct{ a, b Handle }

func keyOf(a, b Handle) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Space is a small impulse solver for circles against circles and static boxes.
// It is not safe for concurrent use; the game loop owns it.
type Space struct {
	Gravity    Vec
	Iterations int
	AirDrag    float64

	next     Handle
	seq      int
	bodies   map[Handle]*body
	live     []*body
	touching map[pairKey]bool
}

// NewSpace creates an empty world with default gravity.
func NewSpace() *Space {
	return &Space{
		Gravity:    Vec{Y: DefaultGravity},
		Iterations: DefaultIterations,
		AirDrag:    DefaultAirDrag,
		bodies:     make(map[Handle]*body),
		touching:   make(map[pairKey]bool),
	}
}

func (s *Space) newHandle() Handle {
	s.next++
	return s.next
}

func (s *Space) CreateCircle(pos Vec, radius float64, m Material) Handle {
	if m.Density <= 0 {
		m.Density = 0.001
	}
	b := &body{
		h:      s.newHandle(),
		shape:  shapeCircle,
		pos:    pos,
		radius: radius,
		mat:    m,
	}
	b.invMass = 1 / (math.Pi * radius * radius * m.Density)
	s.bodies[b.h] = b
	return b.h
}

// CreateRect creates a static axis-aligned box, used for walls and floor.
func (s *Space) CreateRect(center Vec, w, h float64) Handle {
	b := &body{
		h:      s.newHandle(),
		shape:  shapeRect,
		pos:    center,
		w:      w,
		hgt:    h,
		static: true,
		mat:    Material{Friction: 0.5},
	}
	s.bodies[b.h] = b
	return b.h
}

func (s *Space) Add(hs ...Handle) {
	for _, h := range hs {
		b, ok := s.bodies[h]
		if !ok || b.inWorld {
			continue
		}
		b.inWorld = true
		s.seq++
		b.seq = s.seq
		s.live = append(s.live, b)
	}
}

func (s *Space) Remove(hs ...Handle) {
	if len(hs) == 0 {
		return
	}
	gone := make(map[Handle]bool, len(hs))
	for _, h := range hs {
		if _, ok := s.bodies[h]; ok {
			gone[h] = true
			delete(s.bodies, h)
		}
	}
	if len(gone) == 0 {
		return
	}
	kept := s.live[:0]
	for _, b := range s.live {
		if !gone[b.h] {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(s.live); i++ {
		s.live[i] = nil
	}
	s.live = kept
	for k := range s.touching {
		if gone[k.a] || gone[k.b] {
			delete(s.touching, k)
		}
	}
}

func (s *Space) SetStatic(h Handle, static bool) {
	b, ok := s.bodies[h]
	if !ok || b.shape == shapeRect {
		return
	}
	b.static = static
	if static {
		b.vel = Vec{}
		b.angVel = 0
	}
}

func (s *Space) SetPosition(h Handle, p Vec) {
	if b, ok := s.bodies[h]; ok {
		b.pos = p
	}
}

// SetVelocity is used by tests and tools to launch a body.
func (s *Space) SetVelocity(h Handle, v Vec) {
	if b, ok := s.bodies[h]; ok && !b.static {
		b.vel = v
	}
}

func (s *Space) Body(h Handle) (Body, bool) {
	b, ok := s.bodies[h]
	if !ok || !b.inWorld {
		return Body{}, false
	}
	return b.snapshot(), true
}

func (s *Space) Bodies() []Body {
	out := make([]Body, 0, len(s.live))
	for _, b := range s.live {
		out = append(out, b.snapshot())
	}
	return out
}

func (s *Space) Clear() {
	s.bodies = make(map[Handle]*body)
	s.live = nil
	s.touching = make(map[pairKey]bool)
}

func (b *body) snapshot() Body {
	return Body{
		Handle:          b.h,
		Position:        b.pos,
		Velocity:        b.vel,
		AngularVelocity: b.angVel,
		Static:          b.static,
		Radius:          b.radius,
	}
}

// Step advances one tick and returns the pairs that started touching, in
// detection order.
func (s *Space) Step() []Pair {
	for _, b := range s.live {
		if b.static {
			continue
		}
		b.vel = b.vel.Add(s.Gravity).Scale(1 - s.AirDrag)
		b.pos = b.pos.Add(b.vel)
	}

	supported := make(map[Handle]bool)
	now := make(map[pairKey]bool)
	var started []Pair

	iters := s.Iterations
	if iters <= 0 {
		iters = 1
	}
	for it := 0; it < iters; it++ {
		for i := 0; i < len(s.live); i++ {
			a := s.live[i]
			for j := i + 1; j < len(s.live); j++ {
				b := s.live[j]
				if a.static && b.static {
					continue
				}
				n, depth, ok := overlap(a, b)
				if !ok {
					continue
				}
				k := keyOf(a.h, b.h)
				if !now[k] {
					now[k] = true
					if !s.touching[k] {
						started = append(started, Pair{A: a.h, B: b.h})
					}
				}
				if depth > 0 {
					resolve(a, b, n, depth)
				}
				// n points from a to b; a body is resting when its contact is below it.
				if n.Y > 0.5 {
					supported[a.h] = true
				}
				if n.Y < -0.5 {
					supported[b.h] = true
				}
			}
		}
	}

	for _, b := range s.live {
		if b.static || b.shape != shapeCircle {
			continue
		}
		if supported[b.h] {
			b.angVel = b.vel.X / b.radius
		} else {
			b.angVel *= 1 - s.AirDrag
		}
	}

	s.touching = now
	return started
}

// overlap returns the contact normal from a to b and the penetration depth.
// ok is also true for bodies within touchTolerance so resting contacts persist.
func overlap(a, b *body) (Vec, float64, bool) {
	switch {
	case a.shape == shapeCircle && b.shape == shapeCircle:
		d := b.pos.Sub(a.pos)
		dist := d.Len()
		sum := a.radius + b.radius
		if dist > sum+touchTolerance {
			return Vec{}, 0, false
		}
		n := Vec{Y: 1}
		if dist > 0 {
			n = d.Scale(1 / dist)
		}
		return n, sum - dist, true
	case a.shape == shapeCircle && b.shape == shapeRect:
		n, depth, ok := circleRect(a, b)
		return n.Scale(-1), depth, ok
	case a.shape == shapeRect && b.shape == shapeCircle:
		return circleRect(b, a)
	}
	return Vec{}, 0, false
}

// circleRect returns the normal pointing from the box towards the circle.
func circleRect(c, r *body) (Vec, float64, bool) {
	hw, hh := r.w/2, r.hgt/2
	closest := Vec{
		X: math.Max(r.pos.X-hw, math.Min(c.pos.X, r.pos.X+hw)),
		Y: math.Max(r.pos.Y-hh, math.Min(c.pos.Y, r.pos.Y+hh)),
	}
	d := c.pos.Sub(closest)
	dist := d.Len()
	if dist > 0 {
		if dist > c.radius+touchTolerance {
			return Vec{}, 0, false
		}
		return d.Scale(1 / dist), c.radius - dist, true
	}
	// centre inside the box: push out along the shallowest axis
	dx := hw - math.Abs(c.pos.X-r.pos.X)
	dy := hh - math.Abs(c.pos.Y-r.pos.Y)
	if dx < dy {
		sx := math.Copysign(1, c.pos.X-r.pos.X)
		return Vec{X: sx}, dx + c.radius, true
	}
	sy := math.Copysign(1, c.pos.Y-r.pos.Y)
	return Vec{Y: sy}, dy + c.radius, true
}

func invMass(b *body) float64 {
	if b.static {
		return 0
	}
	return b.invMass
}

func resolve(a, b *body, n Vec, depth float64) {
	ia, ib := invMass(a), invMass(b)
	total := ia + ib
	if total == 0 {
		return
	}

	corr := n.Scale(math.Max(depth-positionSlop, 0) * positionPercent / total)
	a.pos = a.pos.Sub(corr.Scale(ia))
	b.pos = b.pos.Add(corr.Scale(ib))

	rel := b.vel.Sub(a.vel)
	vn := rel.Dot(n)
	if vn >= 0 {
		return
	}
	e := math.Min(a.mat.Restitution, b.mat.Restitution)
	if -vn < restThreshold {
		e = 0
	}
	j := -(1 + e) * vn / total
	impulse := n.Scale(j)
	a.vel = a.vel.Sub(impulse.Scale(ia))
	b.vel = b.vel.Add(impulse.Scale(ib))

	rel = b.vel.Sub(a.vel)
	t := n.Perp()
	vt := rel.Dot(t)
	mu := math.Sqrt(a.mat.Friction * b.mat.Friction)
	jt := -vt / total
	if limit := mu * j; math.Abs(jt) > limit {
		jt = math.Copysign(limit, jt)
	}
	ft := t.Scale(jt)
	a.vel = a.vel.Sub(ft.Scale(ia))
	b.vel = b.vel.Add(ft.Scale(ib))
}
