package sim

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/trajectory"
)

func newTestSim(t *testing.T, l trajectory.Launch) *Simulation {
	t.Helper()
	s, err := New(Options{Launch: l})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_SingleArmedTrajectory(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 15, Height: 10})

	trs := s.Trajectories()
	if len(trs) != 1 {
		t.Fatalf("expected 1 trajectory, got %d", len(trs))
	}
	if trs[0].Status != trajectory.Armed || trs[0].State.Time != 0 || trs[0].History.Len() != 0 {
		t.Errorf("unexpected initial trajectory: %+v", trs[0].Summary())
	}
	if s.ActiveCount() != 0 {
		t.Errorf("armed trajectory should not be active")
	}
}

func TestNew_RejectsBadLaunch(t *testing.T) {
	tests := []struct {
		name string
		l    trajectory.Launch
		want error
	}{
		{"too fast", trajectory.Launch{Speed: 60}, dynamo.ErrParameterBounds},
		{"bad angle", trajectory.Launch{Speed: 10, Angle: -100}, dynamo.ErrParameterBounds},
		{"NaN speed", trajectory.Launch{Speed: math.NaN()}, dynamo.ErrInvalidState},
		{"below ground", trajectory.Launch{Speed: 10, Height: -1}, dynamo.ErrParameterBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Options{Launch: tt.l}); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStep_RejectsBadDt(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10, Angle: 45})
	s.Fire()

	tests := []struct {
		dt   float64
		want error
	}{
		{0, dynamo.ErrNonPositiveStep},
		{-0.1, dynamo.ErrNonPositiveStep},
		{math.NaN(), dynamo.ErrInvalidState},
		{math.Inf(1), dynamo.ErrInvalidState},
	}
	for _, tt := range tests {
		if err := s.Step(tt.dt); !errors.Is(err, tt.want) {
			t.Errorf("Step(%v) = %v, want %v", tt.dt, err, tt.want)
		}
	}
	tr, _ := s.Trajectory(1)
	if tr.Steps != 0 || tr.History.Len() != 0 {
		t.Errorf("rejected steps advanced the trajectory: %+v", tr.Summary())
	}
}

func TestStep_HistoryGrowsOncePerStep(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 20, Angle: 60, Height: 5})
	id, err := s.Fire()
	if err != nil {
		t.Fatal(err)
	}

	for n := 1; n <= 40; n++ {
		if err := s.Step(0.01); err != nil {
			t.Fatalf("step %d: %v", n, err)
		}
		tr, _ := s.Trajectory(id)
		if tr.History.Len() != n {
			t.Fatalf("after %d steps history has %d points", n, tr.History.Len())
		}
	}

	s.ClearPaths()
	tr, _ := s.Trajectory(id)
	if tr.History.Len() != 0 {
		t.Errorf("ClearPaths left %d points", tr.History.Len())
	}
}

func TestStep_MatchesIntegratorReference(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 20, Angle: 45, Height: 100})
	id, _ := s.Fire()

	x, y := 0.0, 100.0
	vx := 20 * math.Cos(math.Pi/4)
	vy := 20 * math.Sin(math.Pi/4)
	for i := 0; i < 50; i++ {
		if err := s.Step(0.1); err != nil {
			t.Fatal(err)
		}
		vy -= 9.8 * 0.1
		x += vx * 0.1
		y += vy*0.1 - 0.5*9.8*0.01
	}

	tr, _ := s.Trajectory(id)
	if tr.Status != trajectory.Flying {
		t.Fatalf("trajectory stopped early: %s", tr.Status)
	}
	if math.Abs(tr.State.Position.X-x) > 1e-9 || math.Abs(tr.State.Position.Y-y) > 1e-9 {
		t.Errorf("position = %+v, want (%v, %v)", tr.State.Position, x, y)
	}
}

func TestReset_Idempotent(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 15, Height: 10})
	s.SetLaunch(trajectory.Launch{Speed: 30, Angle: 20})
	s.SetDrag(true)
	for i := 0; i < 3; i++ {
		s.Fire()
		s.Step(0.05)
	}

	s.Reset()
	once := s.Trajectories()
	launchOnce := s.Launch()

	s.Reset()
	twice := s.Trajectories()

	if !reflect.DeepEqual(once, twice) {
		t.Error("second reset changed the trajectory list")
	}
	if len(twice) != 1 || twice[0].Status != trajectory.Armed || twice[0].State.Time != 0 || twice[0].History.Len() != 0 {
		t.Errorf("reset did not restore one default trajectory: %+v", twice)
	}
	if launchOnce != (trajectory.Launch{Speed: 15, Height: 10}) || s.Launch() != launchOnce {
		t.Errorf("launch not restored: %+v", s.Launch())
	}
	if s.DragEnabled() {
		t.Error("drag not restored to default")
	}
}

func TestFire_ReusesArmedTrajectory(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10, Angle: 45})
	id, _ := s.Fire()
	if id != 1 {
		t.Errorf("first fire id = %d, want 1", id)
	}
	id2, _ := s.Fire()
	if id2 != 2 {
		t.Errorf("second fire id = %d, want 2", id2)
	}
	if n := len(s.Trajectories()); n != 2 {
		t.Errorf("trajectories = %d, want 2", n)
	}
}

func TestFire_Limit(t *testing.T) {
	s, err := New(Options{Launch: trajectory.Launch{Speed: 10, Angle: 45}, MaxTrajectories: 2})
	if err != nil {
		t.Fatal(err)
	}
	s.Fire()
	s.Fire()
	if _, err := s.Fire(); !errors.Is(err, dynamo.ErrTrajectoryLimit) {
		t.Fatalf("expected ErrTrajectoryLimit, got %v", err)
	}

	if _, err := s.Run(context.Background(), 0.01, 10); err != nil {
		t.Fatal(err)
	}
	id, err := s.Fire()
	if err != nil {
		t.Fatalf("fire after landing: %v", err)
	}
	trs := s.Trajectories()
	if len(trs) != 2 || trs[0].ID != 2 || trs[1].ID != id {
		t.Errorf("oldest trajectory not dropped: ids %d, %d", trs[0].ID, trs[1].ID)
	}
}

func TestSetLaunch_UpdatesArmedTrajectory(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10})
	if err := s.SetLaunch(trajectory.Launch{Speed: 25, Angle: 30, Height: 2}); err != nil {
		t.Fatal(err)
	}
	tr, _ := s.Trajectory(1)
	want := dynamo.LaunchVelocity(25, 30)
	if tr.State.Velocity != want || tr.State.Position.Y != 2 {
		t.Errorf("armed state = %+v", tr.State)
	}
	if err := s.SetLaunch(trajectory.Launch{Speed: 10, Angle: 200}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestTrajectory_Unknown(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10})
	if _, err := s.Trajectory(42); !errors.Is(err, dynamo.ErrUnknownTrajectory) {
		t.Errorf("expected ErrUnknownTrajectory, got %v", err)
	}
}

type nanIntegrator struct{}

func (nanIntegrator) Name() string { return "nan" }
func (nanIntegrator) Step(m dynamo.Model, s dynamo.State, dt float64) dynamo.State {
	s.Position.X = math.NaN()
	return s
}

func TestStep_InvalidStateFailsTrajectory(t *testing.T) {
	s, err := New(Options{Launch: trajectory.Launch{Speed: 10, Angle: 45}, Integrator: nanIntegrator{}})
	if err != nil {
		t.Fatal(err)
	}
	id, _ := s.Fire()

	err = s.Step(0.1)
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) || stepErr.Trajectory != id || !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected StepError for trajectory %d, got %v", id, err)
	}
	tr, _ := s.Trajectory(id)
	if tr.Status != trajectory.Failed || tr.History.Len() != 0 {
		t.Errorf("failed trajectory = %+v", tr.Summary())
	}
}

func TestObservers_NotifiedAfterWrite(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10, Angle: 45})
	id, _ := s.Fire()

	var seen []dynamo.State
	s.AddObserver(dynamo.ObserverFunc(func(got int, st dynamo.State) {
		if got != id {
			t.Errorf("observer got id %d, want %d", got, id)
		}
		tr, err := s.Trajectory(got)
		if err != nil {
			t.Fatal(err)
		}
		if tr.State != st {
			t.Error("observer ran before the state was written")
		}
		seen = append(seen, st)
	}))

	for i := 0; i < 5; i++ {
		s.Step(0.02)
	}
	if len(seen) != 5 {
		t.Errorf("observer called %d times, want 5", len(seen))
	}
}

func TestRun_LandsEveryTrajectory(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 20, Angle: 45})
	s.Fire()
	s.SetLaunch(trajectory.Launch{Speed: 10, Angle: 70, Height: 5})
	s.Fire()

	res, err := s.Run(context.Background(), 0.001, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(res.Summaries))
	}
	for _, sum := range res.Summaries {
		if sum.Status != "landed" {
			t.Errorf("trajectory %d status %s", sum.ID, sum.Status)
		}
		if len(res.Paths[sum.ID]) != sum.Steps {
			t.Errorf("trajectory %d: %d points for %d steps", sum.ID, len(res.Paths[sum.ID]), sum.Steps)
		}
		if res.Metrics[sum.ID]["apex"] != sum.MaxHeight && sum.MaxHeight > 0 {
			t.Errorf("apex metric %v != summary %v", res.Metrics[sum.ID]["apex"], sum.MaxHeight)
		}
	}

	// 45° at 20 m/s from the ground: R = v²/g ≈ 40.8 m.
	if r := res.Summaries[0].Range; math.Abs(r-400/9.8) > 0.1 {
		t.Errorf("range = %v, want ~%v", r, 400/9.8)
	}
}

func TestRun_Canceled(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 30, Angle: 80})
	s.Fire()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx, 0.01, 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.StepsTaken != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRun_InvalidArgs(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10})
	if _, err := s.Run(context.Background(), 0, 1); !errors.Is(err, dynamo.ErrNonPositiveStep) {
		t.Errorf("expected ErrNonPositiveStep, got %v", err)
	}
	if _, err := s.Run(context.Background(), 0.1, 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestDrag_ShortensRange(t *testing.T) {
	l := trajectory.Launch{Speed: 30, Angle: 45}
	vacuum := newTestSim(t, l)
	air := newTestSim(t, l)
	air.SetDrag(true)
	if err := air.SetProjectile(vacuum.Projectile()); err != nil {
		t.Fatal(err)
	}

	vacuum.Fire()
	air.Fire()
	rv, _ := vacuum.Run(context.Background(), 0.005, 30)
	ra, _ := air.Run(context.Background(), 0.005, 30)

	if ra.Summaries[0].Range >= rv.Summaries[0].Range {
		t.Errorf("drag range %v not below vacuum range %v", ra.Summaries[0].Range, rv.Summaries[0].Range)
	}
}

func TestSetParam(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10})
	if err := s.SetParam("gravity", 1.62); err != nil {
		t.Fatal(err)
	}
	if s.Gravity() != 1.62 || s.Params()["gravity"] != 1.62 {
		t.Errorf("gravity not applied: %v %v", s.Gravity(), s.Params())
	}
	if err := s.SetParam("gravity", -3); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	s.Reset()
	if s.Gravity() != 9.8 {
		t.Errorf("reset did not restore gravity: %v", s.Gravity())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "rk4"
	cfg.Drag.Enabled = true
	cfg.Drag.Projectile = "baseball"

	s, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.IntegratorName() != "rk4" || !s.DragEnabled() || s.Projectile().Name != "baseball" {
		t.Errorf("config not applied")
	}

	cfg.Drag.Projectile = "anvil"
	if _, err := FromConfig(cfg, nil); err == nil {
		t.Error("expected error for unknown projectile")
	}
}

func TestFromConfig_ZeroGravity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gravity = 0
	cfg.Launch = trajectory.Launch{Speed: 10, Angle: 0, Height: 10}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	s, err := FromConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Gravity() != 0 {
		t.Fatalf("gravity = %v, want 0", s.Gravity())
	}
	id, _ := s.Fire()
	for i := 0; i < 20; i++ {
		if err := s.Step(0.05); err != nil {
			t.Fatal(err)
		}
	}
	tr, _ := s.Trajectory(id)
	if tr.State.Position.Y != 10 || tr.Status != trajectory.Flying {
		t.Errorf("weightless shot moved vertically: %+v", tr.State)
	}

	s.Reset()
	if s.Gravity() != 0 {
		t.Errorf("reset restored gravity %v, want 0", s.Gravity())
	}

	n, err := New(Options{Launch: cfg.Launch})
	if err != nil {
		t.Fatal(err)
	}
	if n.Gravity() != dynamo.DefaultGravity {
		t.Errorf("New with zero Gravity = %v, want the default", n.Gravity())
	}
}

func TestAddObserver_Detach(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 10, Angle: 45})
	s.Fire()

	var calls, other int
	remove := s.AddObserver(dynamo.ObserverFunc(func(int, dynamo.State) { calls++ }))
	s.AddObserver(dynamo.ObserverFunc(func(int, dynamo.State) { other++ }))

	s.Step(0.01)
	remove()
	remove()
	s.Step(0.01)

	if calls != 1 || other != 2 {
		t.Errorf("calls = %d, other = %d; want 1 and 2", calls, other)
	}
}

func TestConcurrentReaders(t *testing.T) {
	s := newTestSim(t, trajectory.Launch{Speed: 25, Angle: 50})
	s.Fire()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					for _, tr := range s.Trajectories() {
						_ = tr.History.Points()
					}
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		s.Step(0.01)
	}
	close(stop)
	wg.Wait()
}
