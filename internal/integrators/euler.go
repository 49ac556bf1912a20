package integrators

import "github.com/san-kum/projmo/internal/dynamo"

// SymplecticEuler updates velocity first and uses the new velocity for the
// position update, adding the constant-acceleration term:
//
//	v' = v + a·dt
//	p' = p + v'·dt + ½·a·dt²
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Name() string { return "symplectic" }

func (e *SymplecticEuler) Step(m dynamo.Model, s dynamo.State, dt float64) dynamo.State {
	if dt <= 0 {
		return s
	}
	a := s.Acceleration
	next := s
	next.Velocity = s.Velocity.Add(a.Scale(dt))
	next.Position = s.Position.
		Add(next.Velocity.Scale(dt)).
		Add(a.Scale(0.5 * dt * dt))
	next.Time = s.Time + dt
	next.Acceleration = accelerationAt(m, next, a)
	return next
}

// Euler is the explicit forward Euler scheme.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(m dynamo.Model, s dynamo.State, dt float64) dynamo.State {
	if dt <= 0 {
		return s
	}
	next := s
	next.Position = s.Position.Add(s.Velocity.Scale(dt))
	next.Velocity = s.Velocity.Add(s.Acceleration.Scale(dt))
	next.Time = s.Time + dt
	next.Acceleration = accelerationAt(m, next, s.Acceleration)
	return next
}

// accelerationAt keeps the previous acceleration when no model is attached.
func accelerationAt(m dynamo.Model, s dynamo.State, prev dynamo.Vec2) dynamo.Vec2 {
	if m == nil {
		return prev
	}
	return m.Acceleration(s)
}
