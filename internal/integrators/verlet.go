package integrators

import "github.com/san-kum/projmo/internal/dynamo"

// Verlet is velocity Verlet. Velocity-dependent forces are evaluated at a
// predicted velocity.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(m dynamo.Model, s dynamo.State, dt float64) dynamo.State {
	if dt <= 0 {
		return s
	}
	a := s.Acceleration
	next := s
	next.Position = s.Position.Add(s.Velocity.Scale(dt)).Add(a.Scale(0.5 * dt * dt))
	next.Time = s.Time + dt

	predicted := next
	predicted.Velocity = s.Velocity.Add(a.Scale(dt))
	aNew := accelerationAt(m, predicted, a)

	next.Velocity = s.Velocity.Add(a.Add(aNew).Scale(0.5 * dt))
	next.Acceleration = accelerationAt(m, next, aNew)
	return next
}
