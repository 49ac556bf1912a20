package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/sim"
)

// SweepPoint is the outcome of one simulated shot in a sweep. AnalyticRange
// is zero when the vacuum path never lands.
type SweepPoint struct {
	Value         float64 `json:"value"`
	Range         float64 `json:"range"`
	MaxHeight     float64 `json:"max_height"`
	FlightTime    float64 `json:"flight_time"`
	Status        string  `json:"status"`
	AnalyticRange float64 `json:"analytic_range"`
}

// Sweep fires one shot per launch angle using cfg for everything else.
// Shots run in parallel; results keep the order of angles.
func Sweep(ctx context.Context, cfg *config.Config, angles []float64) ([]SweepPoint, error) {
	return sweep(ctx, cfg, angles, func(c *config.Config, s *sim.Simulation, v float64) error {
		l := c.Launch
		l.Angle = v
		return s.SetLaunch(l)
	})
}

// SweepParam fires one shot per value of a force model parameter such as
// "gravity", "wind" or "drag_coefficient".
func SweepParam(ctx context.Context, cfg *config.Config, name string, values []float64) ([]SweepPoint, error) {
	return sweep(ctx, cfg, values, func(_ *config.Config, s *sim.Simulation, v float64) error {
		return s.SetParam(name, v)
	})
}

type applyFunc func(cfg *config.Config, s *sim.Simulation, v float64) error

func sweep(ctx context.Context, cfg *config.Config, values []float64, apply applyFunc) ([]SweepPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := make([]SweepPoint, len(values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, v := range values {
		g.Go(func() error {
			s, err := sim.FromConfig(cfg, nil)
			if err != nil {
				return err
			}
			if err := apply(cfg, s, v); err != nil {
				return fmt.Errorf("value %v: %w", v, err)
			}
			if _, err := s.Fire(); err != nil {
				return err
			}
			res, err := s.Run(ctx, cfg.Dt, cfg.Duration)
			if err != nil {
				return err
			}
			if len(res.Summaries) == 0 {
				return fmt.Errorf("value %v: no trajectory recorded", v)
			}

			sum := res.Summaries[0]
			analytic := AnalyticRange(s.Launch(), s.Gravity())
			if math.IsInf(analytic, 0) {
				analytic = 0
			}
			out[i] = SweepPoint{
				Value:         v,
				Range:         sum.Range,
				MaxHeight:     sum.MaxHeight,
				FlightTime:    sum.FlightTime,
				Status:        sum.Status,
				AnalyticRange: analytic,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Best returns the point with the longest range.
func Best(points []SweepPoint) (SweepPoint, bool) {
	if len(points) == 0 {
		return SweepPoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Range > best.Range {
			best = p
		}
	}
	return best, true
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
