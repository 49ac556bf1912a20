package metrics

import (
	"sort"
	"sync"

	"github.com/san-kum/projmo/internal/dynamo"
)

// Metric accumulates a scalar over the states of one trajectory.
type Metric interface {
	Name() string
	Observe(s dynamo.State)
	Value() float64
	Reset()
}

// Factory builds a fresh metric for a new trajectory.
type Factory func() Metric

// Tracker keeps one metric set per trajectory and receives states as a
// dynamo.Observer.
type Tracker struct {
	mu        sync.Mutex
	factories []Factory
	sets      map[int][]Metric
}

func NewTracker(factories ...Factory) *Tracker {
	return &Tracker{
		factories: factories,
		sets:      make(map[int][]Metric),
	}
}

// Defaults returns the standard metric set. g is read on every observation
// so energy follows gravity changes made while a run is in progress.
func Defaults(g GravityFunc) []Factory {
	return []Factory{
		func() Metric { return NewEnergy(g) },
		func() Metric { return NewEnergyDrift(g) },
		func() Metric { return NewApex() },
		func() Metric { return NewRange() },
	}
}

func (t *Tracker) OnStep(id int, s dynamo.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.sets[id]
	if !ok {
		set = make([]Metric, len(t.factories))
		for i, f := range t.factories {
			set[i] = f()
		}
		t.sets[id] = set
	}
	for _, m := range set {
		m.Observe(s)
	}
}

// Values returns the metric values for trajectory id.
func (t *Tracker) Values(id int) map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]float64)
	for _, m := range t.sets[id] {
		out[m.Name()] = m.Value()
	}
	return out
}

// IDs lists the trajectories observed so far.
func (t *Tracker) IDs() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]int, 0, len(t.sets))
	for id := range t.sets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Reset forgets every trajectory.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.sets = make(map[int][]Metric)
	t.mu.Unlock()
}
