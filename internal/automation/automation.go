package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/logging"
	"github.com/san-kum/projmo/internal/metrics"
	"github.com/san-kum/projmo/internal/physics"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/trajectory"
)

// Scenario is a scripted sequence of actions against one simulation.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Preset      string   `yaml:"preset"`
	Dt          float64  `yaml:"dt"`
	Duration    float64  `yaml:"duration"`
	Actions     []Action `yaml:"actions"`
}

// Action runs at simulated time At. Fields are applied in the order
// reset, launch, drag, projectile, params, fire.
type Action struct {
	At         float64            `yaml:"at"`
	Reset      bool               `yaml:"reset"`
	Launch     *trajectory.Launch `yaml:"launch"`
	Drag       *bool              `yaml:"drag"`
	Projectile string             `yaml:"projectile"`
	Params     map[string]float64 `yaml:"params"`
	Fire       bool               `yaml:"fire"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks timing and sorts actions by time, keeping file order for
// actions at the same instant.
func (sc *Scenario) Validate() error {
	if err := config.CheckRange("dt", sc.Dt, 0, 1); err != nil {
		return err
	}
	if err := config.CheckRange("duration", sc.Duration, 0, 3600); err != nil {
		return err
	}
	for i, a := range sc.Actions {
		if err := config.CheckRange(fmt.Sprintf("actions[%d].at", i), a.At, 0, math.MaxFloat64); err != nil {
			return err
		}
	}
	sort.SliceStable(sc.Actions, func(i, j int) bool {
		return sc.Actions[i].At < sc.Actions[j].At
	})
	return nil
}

// Config returns the scenario's base configuration.
func (sc *Scenario) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if sc.Preset != "" {
		cfg = config.GetPreset(sc.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", sc.Preset)
		}
	}
	if sc.Dt > 0 {
		cfg.Dt = sc.Dt
	}
	if sc.Duration > 0 {
		cfg.Duration = sc.Duration
	}
	return cfg, cfg.Validate()
}

// Apply performs one action on s and returns the id fired, or 0.
func (a Action) Apply(s *sim.Simulation) (int, error) {
	if a.Reset {
		s.Reset()
	}
	if a.Launch != nil {
		if err := s.SetLaunch(*a.Launch); err != nil {
			return 0, err
		}
	}
	if a.Drag != nil {
		s.SetDrag(*a.Drag)
	}
	if a.Projectile != "" {
		p, err := physics.LookupProjectile(a.Projectile)
		if err != nil {
			return 0, err
		}
		if err := s.SetProjectile(p); err != nil {
			return 0, err
		}
	}

	names := make([]string, 0, len(a.Params))
	for k := range a.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := s.SetParam(k, a.Params[k]); err != nil {
			return 0, err
		}
	}

	if a.Fire {
		return s.Fire()
	}
	return 0, nil
}

// RunScenario executes the actions on s, stepping cfg.Dt between them,
// until every action has run and nothing is in flight or cfg.Duration
// elapses.
func RunScenario(ctx context.Context, sc *Scenario, s *sim.Simulation, cfg *config.Config, log *logging.Logger) (*sim.Result, error) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("scenario", sc.Name)

	tracker := metrics.NewTracker(metrics.Defaults(s.Gravity)...)
	remove := s.AddObserver(tracker)
	defer remove()

	var (
		next    int
		elapsed float64
		steps   int
		errs    []error
	)
	for elapsed < cfg.Duration {
		if err := ctx.Err(); err != nil {
			return finish(s, tracker, steps, elapsed, errs), err
		}

		for next < len(sc.Actions) && sc.Actions[next].At <= elapsed+cfg.Dt/2 {
			a := sc.Actions[next]
			if a.Reset {
				tracker.Reset()
			}
			id, err := a.Apply(s)
			if err != nil {
				return finish(s, tracker, steps, elapsed, errs), fmt.Errorf("action %d at %.3fs: %w", next+1, a.At, err)
			}
			if id > 0 {
				log.Debug("scenario fire", "trajectory", id, "time", elapsed)
			}
			next++
		}

		if next == len(sc.Actions) && s.ActiveCount() == 0 {
			break
		}
		if err := s.Step(cfg.Dt); err != nil {
			errs = append(errs, err)
		}
		elapsed += cfg.Dt
		steps++
	}

	log.Info("scenario complete", "steps", steps, "time", elapsed, "actions", next)
	return finish(s, tracker, steps, elapsed, errs), nil
}

func finish(s *sim.Simulation, tracker *metrics.Tracker, steps int, elapsed float64, errs []error) *sim.Result {
	res := s.Collect(tracker)
	res.StepsTaken = steps
	res.Elapsed = elapsed
	res.Errors = errs
	return res
}
