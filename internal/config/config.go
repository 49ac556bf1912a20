package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/trajectory"
)

const (
	DefaultDt              = 0.01
	DefaultDuration        = 30.0
	DefaultSpeed           = 15.0
	DefaultAngle           = 0.0
	DefaultHeight          = 10.0
	DefaultMaxTrajectories = 20
	DefaultHistoryLimit    = 0

	MinSpeed  = 0.0
	MaxSpeed  = 50.0
	MinAngle  = -90.0
	MaxAngle  = 180.0
	MaxHeight = 1000.0
)

type Config struct {
	Integrator      string            `yaml:"integrator"`
	Dt              float64           `yaml:"dt"`
	Duration        float64           `yaml:"duration"`
	Gravity         float64           `yaml:"gravity"`
	Launch          trajectory.Launch `yaml:"launch"`
	Drag            DragConfig        `yaml:"drag"`
	Bounds          trajectory.Bounds `yaml:"bounds"`
	MaxTrajectories int               `yaml:"max_trajectories"`
	HistoryLimit    int               `yaml:"history_limit"`
}

type DragConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled"`
	Projectile string  `yaml:"projectile" json:"projectile"`
	Altitude   float64 `yaml:"altitude" json:"altitude"`
	Wind       float64 `yaml:"wind" json:"wind"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "symplectic",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Gravity:    dynamo.DefaultGravity,
		Launch: trajectory.Launch{
			Speed:  DefaultSpeed,
			Angle:  DefaultAngle,
			Height: DefaultHeight,
		},
		Drag: DragConfig{
			Projectile: "cannonball",
		},
		MaxTrajectories: DefaultMaxTrajectories,
		HistoryLimit:    DefaultHistoryLimit,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects malformed numbers and values outside the ranges the
// simulation accepts.
func (c *Config) Validate() error {
	checks := []struct {
		name   string
		value  float64
		lo, hi float64
	}{
		{"launch.speed", c.Launch.Speed, MinSpeed, MaxSpeed},
		{"launch.angle", c.Launch.Angle, MinAngle, MaxAngle},
		{"launch.height", c.Launch.Height, 0, MaxHeight},
		{"gravity", c.Gravity, 0, 50},
		{"drag.altitude", c.Drag.Altitude, 0, 30000},
		{"drag.wind", c.Drag.Wind, -60, 60},
	}
	for _, ck := range checks {
		if err := CheckRange(ck.name, ck.value, ck.lo, ck.hi); err != nil {
			return err
		}
	}

	if !isFinite(c.Dt) || c.Dt <= 0 {
		return fmt.Errorf("dt=%v: %w", c.Dt, dynamo.ErrNonPositiveStep)
	}
	if !isFinite(c.Duration) || c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v: %w", c.Duration, dynamo.ErrParameterBounds)
	}
	if c.MaxTrajectories < 1 {
		return fmt.Errorf("max_trajectories must be at least 1, got %d: %w", c.MaxTrajectories, dynamo.ErrParameterBounds)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d: %w", c.HistoryLimit, dynamo.ErrParameterBounds)
	}
	return nil
}

// CheckRange rejects NaN, Inf and values outside [lo, hi].
func CheckRange(name string, value, lo, hi float64) error {
	if !isFinite(value) {
		return fmt.Errorf("%s=%v is not a finite number: %w", name, value, dynamo.ErrInvalidState)
	}
	if value < lo || value > hi {
		return fmt.Errorf("%s=%v outside [%v, %v]: %w", name, value, lo, hi, dynamo.ErrParameterBounds)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
