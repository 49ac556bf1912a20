package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/metrics"
	"github.com/san-kum/projmo/internal/trajectory"
)

// Result is the outcome of a headless run.
type Result struct {
	Summaries  []trajectory.Summary
	Paths      map[int][]trajectory.Point
	Metrics    map[int]map[string]float64
	StepsTaken int
	Elapsed    float64
	Errors     []error
}

// Run steps the simulation until no trajectory is in flight or maxTime
// seconds of simulated time have passed. The context is checked before
// every step.
func (s *Simulation) Run(ctx context.Context, dt, maxTime float64) (*Result, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("dt=%v: %w", dt, dynamo.ErrNonPositiveStep)
	}
	if maxTime <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v: %w", maxTime, dynamo.ErrParameterBounds)
	}

	tracker := metrics.NewTracker(metrics.Defaults(s.Gravity)...)
	remove := s.AddObserver(tracker)
	defer remove()

	res := &Result{}
	elapsed := 0.0
	for s.ActiveCount() > 0 && elapsed < maxTime {
		select {
		case <-ctx.Done():
			s.fill(res, tracker)
			res.Elapsed = elapsed
			return res, ctx.Err()
		default:
		}

		if err := s.Step(dt); err != nil {
			res.Errors = append(res.Errors, err)
		}
		elapsed += dt
		res.StepsTaken++
	}
	res.Elapsed = elapsed

	s.fill(res, tracker)
	return res, nil
}

// Collect builds a result from every fired trajectory. Metrics come from
// tracker, which may be nil.
func (s *Simulation) Collect(tracker *metrics.Tracker) *Result {
	res := &Result{}
	s.fill(res, tracker)
	return res
}

func (s *Simulation) fill(res *Result, tracker *metrics.Tracker) {
	trs := s.Trajectories()
	res.Summaries = make([]trajectory.Summary, 0, len(trs))
	res.Paths = make(map[int][]trajectory.Point, len(trs))
	res.Metrics = make(map[int]map[string]float64, len(trs))
	for _, tr := range trs {
		if tr.Status == trajectory.Armed {
			continue
		}
		res.Summaries = append(res.Summaries, tr.Summary())
		res.Paths[tr.ID] = tr.History.Points()
		if tracker != nil {
			res.Metrics[tr.ID] = tracker.Values(tr.ID)
		}
	}
}
