package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/projmo/internal/analysis"
	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/trajectory"
)

// AimOptions bounds the search for a launch parameter.
type AimOptions struct {
	Param  string // "angle" or "speed"
	Lo, Hi float64
	Points int // grid points per round
	Rounds int // each round narrows the grid around the previous best
}

func DefaultAimOptions() AimOptions {
	return AimOptions{Param: "angle", Lo: 0, Hi: 90, Points: 19, Rounds: 4}
}

// Solution is the best launch found for a target.
type Solution struct {
	Launch trajectory.Launch `json:"launch"`
	Range  float64           `json:"range"`
	Miss   float64           `json:"miss"`
}

// Aim searches for the launch whose landing point is closest to target
// metres downrange. Everything other than opts.Param comes from cfg.
func Aim(ctx context.Context, cfg *config.Config, target float64, opts AimOptions) (Solution, error) {
	if err := cfg.Validate(); err != nil {
		return Solution{}, err
	}
	if err := config.CheckRange("target", target, 0, math.MaxFloat64); err != nil {
		return Solution{}, err
	}
	if opts.Param != "angle" && opts.Param != "speed" {
		return Solution{}, fmt.Errorf("cannot aim with %q, want angle or speed", opts.Param)
	}
	if opts.Points < 2 || opts.Rounds < 1 || opts.Hi <= opts.Lo {
		return Solution{}, fmt.Errorf("bad aim options %+v", opts)
	}

	obj := MissDistance(cfg, target)
	lo, hi := opts.Lo, opts.Hi
	var (
		best     map[string]float64
		bestMiss float64
	)
	for round := 0; round < opts.Rounds; round++ {
		grid := NewGridSearch([]string{opts.Param}, [][]float64{analysis.Linspace(lo, hi, opts.Points)})
		params, miss, err := grid.Search(ctx, obj)
		if err != nil {
			return Solution{}, err
		}
		if math.IsInf(miss, 1) {
			return Solution{}, fmt.Errorf("no shot between %s=%v and %v lands", opts.Param, lo, hi)
		}
		best, bestMiss = params, miss

		step := (hi - lo) / float64(opts.Points-1)
		v := params[opts.Param]
		lo, hi = math.Max(opts.Lo, v-step), math.Min(opts.Hi, v+step)
	}

	l := withParam(cfg.Launch, opts.Param, best[opts.Param])
	r, _, err := shoot(ctx, cfg, l)
	if err != nil {
		return Solution{}, err
	}
	return Solution{Launch: l, Range: r, Miss: bestMiss}, nil
}

// MissDistance scores a launch by how far from target it lands. Shots that
// never land score +Inf.
func MissDistance(cfg *config.Config, target float64) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		l := cfg.Launch
		for k, v := range params {
			l = withParam(l, k, v)
		}
		r, ok, err := shoot(ctx, cfg, l)
		if err != nil {
			return 0, err
		}
		if !ok {
			return math.Inf(1), nil
		}
		return math.Abs(r - target), nil
	}
}

func withParam(l trajectory.Launch, name string, v float64) trajectory.Launch {
	switch name {
	case "angle":
		l.Angle = v
	case "speed":
		l.Speed = v
	case "height":
		l.Height = v
	}
	return l
}

func shoot(ctx context.Context, cfg *config.Config, l trajectory.Launch) (float64, bool, error) {
	c := *cfg
	c.Launch = l
	s, err := sim.FromConfig(&c, nil)
	if err != nil {
		return 0, false, err
	}
	if _, err := s.Fire(); err != nil {
		return 0, false, err
	}
	res, err := s.Run(ctx, c.Dt, c.Duration)
	if err != nil {
		return 0, false, err
	}
	if len(res.Summaries) == 0 || res.Summaries[0].Status != trajectory.Landed.String() {
		return 0, false, nil
	}
	return res.Summaries[0].Range, true, nil
}
