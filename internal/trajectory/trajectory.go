package trajectory

import (
	"fmt"
	"math"

	"github.com/san-kum/projmo/internal/dynamo"
)

// Status is the lifecycle stage of a trajectory.
type Status int

const (
	Armed Status = iota
	Flying
	Landed
	OutOfBounds
	Failed
)

func (s Status) String() string {
	switch s {
	case Armed:
		return "armed"
	case Flying:
		return "flying"
	case Landed:
		return "landed"
	case OutOfBounds:
		return "out_of_bounds"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Active reports whether the trajectory is still stepped.
func (s Status) Active() bool {
	return s == Flying
}

// Launch holds the user-chosen initial conditions.
type Launch struct {
	Speed  float64 `yaml:"speed" json:"speed"`
	Angle  float64 `yaml:"angle" json:"angle"`
	Height float64 `yaml:"height" json:"height"`
}

// State builds the initial kinematic state for gravity g.
func (l Launch) State(g float64) dynamo.State {
	return dynamo.NewState(dynamo.Vec2{X: 0, Y: l.Height}, dynamo.LaunchVelocity(l.Speed, l.Angle), g)
}

// Bounds is the tracked region. A zero value disables the check.
type Bounds struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

func (b Bounds) Enabled() bool {
	return b.MaxX > b.MinX || b.MaxY > 0
}

// Contains reports whether p lies in the tracked region.
func (b Bounds) Contains(p dynamo.Vec2) bool {
	if !b.Enabled() {
		return true
	}
	if b.MaxX > b.MinX && (p.X < b.MinX || p.X > b.MaxX) {
		return false
	}
	if b.MaxY > 0 && p.Y > b.MaxY {
		return false
	}
	return true
}

// Trajectory is one fired projectile and the path it has traced.
type Trajectory struct {
	ID      int
	Launch  Launch
	State   dynamo.State
	History *History
	Status  Status
	Steps   int

	apex     dynamo.Vec2
	apexTime float64
}

// New returns an armed trajectory at time zero with an empty history.
func New(id int, l Launch, g float64, historyLimit int) *Trajectory {
	s := l.State(g)
	return &Trajectory{
		ID:      id,
		Launch:  l,
		State:   s,
		History: NewHistory(historyLimit),
		Status:  Armed,
		apex:    s.Position,
	}
}

// Fire marks an armed trajectory as in flight.
func (t *Trajectory) Fire() {
	if t.Status == Armed {
		t.Status = Flying
	}
}

// Advance replaces the state with next, records the new position and
// resolves landing against the ground at y = 0.
func (t *Trajectory) Advance(next dynamo.State, bounds Bounds) {
	prev := t.State
	if next.Position.Y < 0 {
		next = interpolateGround(prev, next)
		t.Status = Landed
	}

	t.State = next
	t.Steps++
	t.History.Record(Point{Time: next.Time, Position: next.Position})

	if next.Position.Y > t.apex.Y {
		t.apex = next.Position
		t.apexTime = next.Time
	}

	if t.Status == Flying && !bounds.Contains(next.Position) {
		t.Status = OutOfBounds
	}
}

// Fail stops the trajectory after an invalid step.
func (t *Trajectory) Fail() {
	t.Status = Failed
}

// interpolateGround moves next back along the step to where y crosses 0.
func interpolateGround(prev, next dynamo.State) dynamo.State {
	dy := prev.Position.Y - next.Position.Y
	frac := 1.0
	if dy > 0 {
		frac = prev.Position.Y / dy
	}
	if math.IsNaN(frac) || frac < 0 || frac > 1 {
		frac = 1
	}
	lerp := func(a, b float64) float64 { return a + frac*(b-a) }

	out := next
	out.Position = dynamo.Vec2{X: lerp(prev.Position.X, next.Position.X), Y: 0}
	out.Velocity = dynamo.Vec2{X: lerp(prev.Velocity.X, next.Velocity.X), Y: lerp(prev.Velocity.Y, next.Velocity.Y)}
	out.Time = lerp(prev.Time, next.Time)
	return out
}

// Summary describes a trajectory so far.
type Summary struct {
	ID         int     `json:"id"`
	Status     string  `json:"status"`
	Range      float64 `json:"range"`
	MaxHeight  float64 `json:"max_height"`
	ApexTime   float64 `json:"apex_time"`
	FlightTime float64 `json:"flight_time"`
	Steps      int     `json:"steps"`
}

func (t *Trajectory) Summary() Summary {
	return Summary{
		ID:         t.ID,
		Status:     t.Status.String(),
		Range:      t.State.Position.X,
		MaxHeight:  t.apex.Y,
		ApexTime:   t.apexTime,
		FlightTime: t.State.Time,
		Steps:      t.Steps,
	}
}

// Clone returns a deep copy safe to hand to readers.
func (t *Trajectory) Clone() *Trajectory {
	c := *t
	c.History = t.History.Clone()
	return &c
}
