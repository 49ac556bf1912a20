package metrics

import (
	"math"

	"github.com/san-kum/projmo/internal/dynamo"
)

// Apex is the highest observed y.
type Apex struct {
	max     float64
	samples int
}

func NewApex() *Apex { return &Apex{max: math.Inf(-1)} }

func (a *Apex) Name() string { return "apex" }

func (a *Apex) Observe(s dynamo.State) {
	a.max = math.Max(a.max, s.Position.Y)
	a.samples++
}

func (a *Apex) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.max
}

func (a *Apex) Reset() {
	a.max = math.Inf(-1)
	a.samples = 0
}

// Range is the horizontal distance of the latest observed position.
type Range struct {
	x float64
}

func NewRange() *Range { return &Range{} }

func (r *Range) Name() string           { return "range" }
func (r *Range) Observe(s dynamo.State) { r.x = s.Position.X }
func (r *Range) Value() float64         { return r.x }
func (r *Range) Reset()                 { r.x = 0 }
