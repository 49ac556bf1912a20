package integrators

import "github.com/san-kum/projmo/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme applied to the
// (position, velocity) pair.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(m dynamo.Model, s dynamo.State, dt float64) dynamo.State {
	if dt <= 0 {
		return s
	}
	if m == nil {
		return NewSymplecticEuler().Step(nil, s, dt)
	}

	probe := func(p, v dynamo.Vec2, t float64) dynamo.Vec2 {
		return m.Acceleration(dynamo.State{Position: p, Velocity: v, Time: t})
	}

	half := dt * 0.5

	k1p := s.Velocity
	k1v := probe(s.Position, s.Velocity, s.Time)

	k2p := s.Velocity.Add(k1v.Scale(half))
	k2v := probe(s.Position.Add(k1p.Scale(half)), k2p, s.Time+half)

	k3p := s.Velocity.Add(k2v.Scale(half))
	k3v := probe(s.Position.Add(k2p.Scale(half)), k3p, s.Time+half)

	k4p := s.Velocity.Add(k3v.Scale(dt))
	k4v := probe(s.Position.Add(k3p.Scale(dt)), k4p, s.Time+dt)

	dt6 := dt / 6.0
	next := s
	next.Position = s.Position.Add(k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(dt6))
	next.Velocity = s.Velocity.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt6))
	next.Time = s.Time + dt
	next.Acceleration = m.Acceleration(next)
	return next
}
