package dynamo

import "math"

// DefaultGravity is the magnitude of gravitational acceleration in m/s².
const DefaultGravity = 9.8

// Vec2 is a 2D point or vector. X is horizontal, Y is vertical (up).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the magnitude of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) IsValid() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// State is the kinematic record of one projectile.
type State struct {
	Position     Vec2    `json:"position"`
	Velocity     Vec2    `json:"velocity"`
	Acceleration Vec2    `json:"acceleration"`
	Time         float64 `json:"time"`
}

// NewState returns a state at time zero accelerating straight down at g.
func NewState(pos, vel Vec2, g float64) State {
	return State{
		Position:     pos,
		Velocity:     vel,
		Acceleration: Vec2{X: 0, Y: -g},
	}
}

func (s State) IsValid() bool {
	return s.Position.IsValid() && s.Velocity.IsValid() && s.Acceleration.IsValid() && isFinite(s.Time)
}

// Speed returns the magnitude of the velocity.
func (s State) Speed() float64 {
	return s.Velocity.Len()
}

// LaunchVelocity decomposes a launch speed (m/s) and angle (degrees from
// horizontal) into velocity components.
func LaunchVelocity(speed, angleDeg float64) Vec2 {
	sin, cos := math.Sincos(angleDeg * math.Pi / 180)
	return Vec2{X: speed * cos, Y: speed * sin}
}

// Model computes the acceleration acting on a projectile in state s.
type Model interface {
	Acceleration(s State) Vec2
}

// Integrator advances a state by dt seconds. Implementations are pure and
// return a new state.
type Integrator interface {
	Name() string
	Step(m Model, s State, dt float64) State
}

// Observer is notified after a trajectory state has been written.
type Observer interface {
	OnStep(id int, s State)
}

// Configurable models expose tunable parameters by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(id int, s State)

func (f ObserverFunc) OnStep(id int, s State) { f(id, s) }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
