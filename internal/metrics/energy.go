package metrics

import (
	"math"

	"github.com/san-kum/projmo/internal/dynamo"
)

// GravityFunc reports the gravitational acceleration in effect when a
// state is observed.
type GravityFunc func() float64

// Constant returns a GravityFunc fixed at g.
func Constant(g float64) GravityFunc {
	return func() float64 { return g }
}

// specificEnergy is mechanical energy per unit mass: ½v² + g·y.
func specificEnergy(s dynamo.State, g float64) float64 {
	v := s.Velocity
	return 0.5*v.Dot(v) + g*s.Position.Y
}

// Energy reports the latest specific mechanical energy in J/kg.
type Energy struct {
	g       GravityFunc
	current float64
	samples int
}

func NewEnergy(g GravityFunc) *Energy {
	return &Energy{g: g}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(s dynamo.State) {
	e.current = specificEnergy(s, e.g())
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.current
}

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// specific energy. Without drag this measures integration error.
type EnergyDrift struct {
	g        GravityFunc
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(g GravityFunc) *EnergyDrift {
	return &EnergyDrift{g: g}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(s dynamo.State) {
	energy := specificEnergy(s, e.g())
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
