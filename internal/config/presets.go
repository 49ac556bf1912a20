package config

import (
	"sort"

	"github.com/san-kum/projmo/internal/trajectory"
)

// Presets are named launch scenarios.
var Presets = map[string]*Config{
	"intro": {
		Integrator: "symplectic", Dt: 0.01, Duration: 30, Gravity: 9.8,
		Launch:          trajectory.Launch{Speed: 15, Angle: 0, Height: 10},
		Drag:            DragConfig{Projectile: "cannonball"},
		MaxTrajectories: DefaultMaxTrajectories,
	},
	"max-range": {
		Integrator: "symplectic", Dt: 0.01, Duration: 30, Gravity: 9.8,
		Launch:          trajectory.Launch{Speed: 20, Angle: 45, Height: 0},
		Drag:            DragConfig{Projectile: "cannonball"},
		MaxTrajectories: DefaultMaxTrajectories,
	},
	"cliff": {
		Integrator: "symplectic", Dt: 0.01, Duration: 30, Gravity: 9.8,
		Launch:          trajectory.Launch{Speed: 12, Angle: 30, Height: 50},
		Drag:            DragConfig{Projectile: "pumpkin"},
		MaxTrajectories: DefaultMaxTrajectories,
	},
	"drag": {
		Integrator: "symplectic", Dt: 0.005, Duration: 30, Gravity: 9.8,
		Launch:          trajectory.Launch{Speed: 30, Angle: 40, Height: 0},
		Drag:            DragConfig{Enabled: true, Projectile: "pumpkin"},
		MaxTrajectories: DefaultMaxTrajectories,
	},
	"mountain": {
		Integrator: "symplectic", Dt: 0.005, Duration: 30, Gravity: 9.8,
		Launch:          trajectory.Launch{Speed: 40, Angle: 35, Height: 0},
		Drag:            DragConfig{Enabled: true, Projectile: "baseball", Altitude: 4000},
		MaxTrajectories: DefaultMaxTrajectories,
	},
	"moon": {
		Integrator: "symplectic", Dt: 0.01, Duration: 60, Gravity: 1.62,
		Launch:          trajectory.Launch{Speed: 15, Angle: 45, Height: 0},
		Drag:            DragConfig{Projectile: "golfball"},
		MaxTrajectories: DefaultMaxTrajectories,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
