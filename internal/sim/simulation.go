package sim

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/integrators"
	"github.com/san-kum/projmo/internal/logging"
	"github.com/san-kum/projmo/internal/physics"
	"github.com/san-kum/projmo/internal/trajectory"
)

// Options configures a Simulation. Zero fields take the config defaults.
type Options struct {
	Gravity         float64
	Integrator      dynamo.Integrator
	Launch          trajectory.Launch
	Projectile      physics.Projectile
	DragEnabled     bool
	Altitude        float64
	Wind            float64
	Bounds          trajectory.Bounds
	MaxTrajectories int
	HistoryLimit    int
	Logger          *logging.Logger
}

// Simulation owns the launch parameters, force models and every
// trajectory fired so far. All methods are safe for concurrent use;
// observers are notified after the step's writes complete.
type Simulation struct {
	mu sync.RWMutex

	defaults Options
	launch   trajectory.Launch
	integ    dynamo.Integrator
	gravity  *physics.Gravity
	drag     *physics.Drag
	dragOn   bool
	bounds   trajectory.Bounds

	trajectories []*trajectory.Trajectory
	nextID       int
	observers    []observer
	nextObserver int
	log          *logging.Logger
}

// New builds a simulation holding one armed trajectory at the default
// launch parameters. A zero Gravity means dynamo.DefaultGravity.
func New(opts Options) (*Simulation, error) {
	if opts.Gravity == 0 {
		opts.Gravity = dynamo.DefaultGravity
	}
	return build(opts)
}

// build fills the remaining defaults and takes opts.Gravity as given.
func build(opts Options) (*Simulation, error) {
	if err := config.CheckRange("gravity", opts.Gravity, 0, physics.MaxGravity); err != nil {
		return nil, err
	}
	if opts.Integrator == nil {
		opts.Integrator = integrators.NewSymplecticEuler()
	}
	if opts.Projectile.Mass == 0 {
		opts.Projectile = physics.Catalog[physics.DefaultProjectile]
	}
	if opts.MaxTrajectories <= 0 {
		opts.MaxTrajectories = config.DefaultMaxTrajectories
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if err := validateLaunch(opts.Launch); err != nil {
		return nil, err
	}
	if err := opts.Projectile.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		defaults: opts,
		integ:    opts.Integrator,
		bounds:   opts.Bounds,
		log:      opts.Logger,
	}
	s.reset()
	return s, nil
}

// FromConfig builds a simulation from a validated config. Unlike New, a
// gravity of zero is honored.
func FromConfig(cfg *config.Config, log *logging.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	proj, err := physics.LookupProjectile(cfg.Drag.Projectile)
	if err != nil {
		return nil, err
	}
	return build(Options{
		Gravity:         cfg.Gravity,
		Integrator:      integ,
		Launch:          cfg.Launch,
		Projectile:      proj,
		DragEnabled:     cfg.Drag.Enabled,
		Altitude:        cfg.Drag.Altitude,
		Wind:            cfg.Drag.Wind,
		Bounds:          cfg.Bounds,
		MaxTrajectories: cfg.MaxTrajectories,
		HistoryLimit:    cfg.HistoryLimit,
		Logger:          log,
	})
}

type observer struct {
	id int
	dynamo.Observer
}

// AddObserver registers o and returns a function that detaches it.
func (s *Simulation) AddObserver(o dynamo.Observer) (remove func()) {
	s.mu.Lock()
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observer{id: id, Observer: o})
	s.mu.Unlock()
	return func() { s.removeObserver(id) }
}

func (s *Simulation) removeObserver(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, obs := range s.observers {
		if obs.id == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Fire launches the armed trajectory, or appends a new one when none is
// armed. When the list is full the oldest finished trajectory is dropped.
func (s *Simulation) Fire() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.trajectories); n > 0 && s.trajectories[n-1].Status == trajectory.Armed {
		tr := s.newTrajectory(s.trajectories[n-1].ID)
		tr.Fire()
		s.trajectories[n-1] = tr
		s.log.Debug("fire", "trajectory", tr.ID, "speed", s.launch.Speed, "angle", s.launch.Angle)
		return tr.ID, nil
	}

	if len(s.trajectories) >= s.defaults.MaxTrajectories {
		if !s.dropOldestFinished() {
			return 0, dynamo.ErrTrajectoryLimit
		}
	}

	tr := s.newTrajectory(s.nextID)
	s.nextID++
	tr.Fire()
	s.trajectories = append(s.trajectories, tr)
	s.log.Debug("fire", "trajectory", tr.ID, "speed", s.launch.Speed, "angle", s.launch.Angle)
	return tr.ID, nil
}

func (s *Simulation) dropOldestFinished() bool {
	for i, tr := range s.trajectories {
		if !tr.Status.Active() {
			s.trajectories = append(s.trajectories[:i], s.trajectories[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Simulation) newTrajectory(id int) *trajectory.Trajectory {
	tr := trajectory.New(id, s.launch, s.gravity.G, s.defaults.HistoryLimit)
	tr.State.Acceleration = s.model().Acceleration(tr.State)
	return tr
}

func (s *Simulation) model() dynamo.Model {
	if s.dragOn {
		return s.drag
	}
	return s.gravity
}

type notification struct {
	id    int
	state dynamo.State
}

// Step advances every flying trajectory by dt seconds. Each successful
// step records exactly one history point. Trajectories whose state turns
// invalid are marked failed and reported in the returned error.
func (s *Simulation) Step(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("dt=%v: %w", dt, dynamo.ErrInvalidState)
	}
	if dt <= 0 {
		return fmt.Errorf("dt=%v: %w", dt, dynamo.ErrNonPositiveStep)
	}

	s.mu.Lock()
	model := s.model()
	var (
		errs    []error
		pending []notification
	)
	for _, tr := range s.trajectories {
		if !tr.Status.Active() {
			continue
		}
		tr.State.Acceleration = model.Acceleration(tr.State)
		next := s.integ.Step(model, tr.State, dt)
		if !next.IsValid() {
			tr.Fail()
			errs = append(errs, &dynamo.StepError{
				Trajectory: tr.ID,
				Step:       tr.Steps + 1,
				Time:       tr.State.Time,
				Wrapped:    dynamo.ErrInvalidState,
			})
			continue
		}
		tr.Advance(next, s.bounds)
		pending = append(pending, notification{id: tr.ID, state: tr.State})

		switch tr.Status {
		case trajectory.Landed:
			s.log.Info("landed", "trajectory", tr.ID, "range", tr.State.Position.X, "time", tr.State.Time)
		case trajectory.OutOfBounds:
			s.log.Info("left bounds", "trajectory", tr.ID, "x", tr.State.Position.X, "y", tr.State.Position.Y)
		}
	}
	observers := append([]observer(nil), s.observers...)
	s.mu.Unlock()

	for _, n := range pending {
		for _, o := range observers {
			o.OnStep(n.id, n.state)
		}
	}

	for _, err := range errs {
		s.log.Warn("step failed", "error", err.Error())
	}
	return errors.Join(errs...)
}

// Reset clears every trajectory and restores the default launch, leaving
// one armed trajectory at time zero.
func (s *Simulation) Reset() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
	s.log.Debug("reset")
}

func (s *Simulation) reset() {
	d := s.defaults
	s.launch = d.Launch
	s.gravity = physics.NewGravity(d.Gravity)
	s.drag = physics.NewDrag(d.Gravity, d.Projectile)
	s.drag.Altitude = d.Altitude
	s.drag.Wind = dynamo.Vec2{X: d.Wind}
	s.dragOn = d.DragEnabled
	s.trajectories = []*trajectory.Trajectory{s.newTrajectory(1)}
	s.nextID = 2
}

// ClearPaths empties every trajectory history.
func (s *Simulation) ClearPaths() {
	s.mu.Lock()
	for _, tr := range s.trajectories {
		tr.History.Clear()
	}
	s.mu.Unlock()
}

// SetLaunch changes the launch parameters used by the next Fire.
func (s *Simulation) SetLaunch(l trajectory.Launch) error {
	if err := validateLaunch(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launch = l
	s.rearm()
	return nil
}

// rearm rebuilds the armed trajectory from the current launch and model.
func (s *Simulation) rearm() {
	if n := len(s.trajectories); n > 0 && s.trajectories[n-1].Status == trajectory.Armed {
		s.trajectories[n-1] = s.newTrajectory(s.trajectories[n-1].ID)
	}
}

func (s *Simulation) Launch() trajectory.Launch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.launch
}

// SetDrag switches air resistance on or off for subsequent steps.
func (s *Simulation) SetDrag(on bool) {
	s.mu.Lock()
	s.dragOn = on
	s.rearm()
	s.mu.Unlock()
}

func (s *Simulation) DragEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dragOn
}

// SetProjectile changes the body used by the drag model.
func (s *Simulation) SetProjectile(p physics.Projectile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.drag.Projectile = p
	s.rearm()
	s.mu.Unlock()
	return nil
}

func (s *Simulation) Projectile() physics.Projectile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drag.Projectile
}

// Params returns the tunable parameters of the force models.
func (s *Simulation) Params() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drag.GetParams()
}

// SetParam updates a force model parameter. Gravity applies to both models.
func (s *Simulation) SetParam(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.drag.SetParam(name, value); err != nil {
		return err
	}
	if name == "gravity" {
		if err := s.gravity.SetParam(name, value); err != nil {
			return err
		}
	}
	s.rearm()
	return nil
}

func (s *Simulation) Gravity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gravity.G
}

func (s *Simulation) IntegratorName() string {
	return s.integ.Name()
}

// Trajectories returns deep copies of every trajectory in firing order.
func (s *Simulation) Trajectories() []*trajectory.Trajectory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*trajectory.Trajectory, len(s.trajectories))
	for i, tr := range s.trajectories {
		out[i] = tr.Clone()
	}
	return out
}

// Trajectory returns a copy of the trajectory with the given id.
func (s *Simulation) Trajectory(id int) (*trajectory.Trajectory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tr := range s.trajectories {
		if tr.ID == id {
			return tr.Clone(), nil
		}
	}
	return nil, fmt.Errorf("trajectory %d: %w", id, dynamo.ErrUnknownTrajectory)
}

// ActiveCount is the number of trajectories still in flight.
func (s *Simulation) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, tr := range s.trajectories {
		if tr.Status.Active() {
			n++
		}
	}
	return n
}

func validateLaunch(l trajectory.Launch) error {
	if err := config.CheckRange("speed", l.Speed, config.MinSpeed, config.MaxSpeed); err != nil {
		return err
	}
	if err := config.CheckRange("angle", l.Angle, config.MinAngle, config.MaxAngle); err != nil {
		return err
	}
	return config.CheckRange("height", l.Height, 0, config.MaxHeight)
}
