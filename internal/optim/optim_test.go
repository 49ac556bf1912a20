package optim

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/projmo/internal/analysis"
	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/trajectory"
)

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{-1, 0, 1, 2}, {3, 4, 5}})
	calls := 0
	obj := func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		return math.Pow(p["x"]-1, 2) + math.Pow(p["y"]-4, 2), nil
	}
	best, score, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 12 {
		t.Errorf("evaluated %d points, want 12", calls)
	}
	if best["x"] != 1 || best["y"] != 4 || score != 0 {
		t.Errorf("best = %v (%v)", best, score)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, _, err := NewGridSearch([]string{"x"}, nil).Search(context.Background(), nil); err == nil {
		t.Error("expected error for mismatched grid")
	}

	boom := errors.New("boom")
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, _, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want objective error", err)
	}

	best, score, err := g.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return math.Inf(1), nil
	})
	if err != nil || !math.IsInf(score, 1) || best["x"] != 1 {
		t.Errorf("all +Inf: best = %v, score = %v, err = %v", best, score, err)
	}

	if _, _, err := NewGridSearch([]string{"x"}, [][]float64{{}}).Search(context.Background(), nil); err == nil {
		t.Error("expected error for an empty grid")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestAimAngle(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Launch = trajectory.Launch{Speed: 20, Height: 0}
	target := 30.0

	sol, err := Aim(context.Background(), cfg, target, DefaultAimOptions())
	if err != nil {
		t.Fatal(err)
	}
	if sol.Miss > 0.5 {
		t.Errorf("missed by %v at angle %v", sol.Miss, sol.Launch.Angle)
	}
	if math.Abs(sol.Range-target) != sol.Miss {
		t.Errorf("range %v inconsistent with miss %v", sol.Range, sol.Miss)
	}

	// The low-angle vacuum solution is asin(g*R/v^2)/2.
	want := math.Asin(cfg.Gravity*target/(20*20)) / 2 * 180 / math.Pi
	if sol.Launch.Angle > 45 {
		want = 90 - want
	}
	if math.Abs(sol.Launch.Angle-want) > 1.5 {
		t.Errorf("angle %v, vacuum solution %v", sol.Launch.Angle, want)
	}
	if r := analysis.AnalyticRange(sol.Launch, cfg.Gravity); math.Abs(r-target) > 1 {
		t.Errorf("analytic range at solution = %v", r)
	}
}

func TestAimSpeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Launch = trajectory.Launch{Angle: 45, Height: 0}
	opts := AimOptions{Param: "speed", Lo: 1, Hi: 40, Points: 14, Rounds: 4}

	sol, err := Aim(context.Background(), cfg, 50, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Sqrt(50 * cfg.Gravity)
	if math.Abs(sol.Launch.Speed-want) > 0.5 {
		t.Errorf("speed %v, want about %v", sol.Launch.Speed, want)
	}
}

func TestAimNothingLands(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gravity = 0
	cfg.Duration = 1
	cfg.Launch = trajectory.Launch{Speed: 10, Height: 0}
	opts := AimOptions{Param: "angle", Lo: 10, Hi: 80, Points: 3, Rounds: 1}

	_, err := Aim(context.Background(), cfg, 20, opts)
	if err == nil || !strings.Contains(err.Error(), "lands") {
		t.Fatalf("got %v, want a no-landing error", err)
	}
}

func TestAimRejects(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name   string
		target float64
		opts   AimOptions
	}{
		{"negative target", -1, DefaultAimOptions()},
		{"nan target", math.NaN(), DefaultAimOptions()},
		{"unknown param", 10, AimOptions{Param: "gravity", Lo: 0, Hi: 1, Points: 3, Rounds: 1}},
		{"empty interval", 10, AimOptions{Param: "angle", Lo: 45, Hi: 45, Points: 3, Rounds: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Aim(context.Background(), cfg, tt.target, tt.opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
