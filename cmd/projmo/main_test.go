package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/storage"
	"github.com/san-kum/projmo/internal/trajectory"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile, angles, outFile = "", "", nil, ""
	cmd := &cobra.Command{Use: "test"}
	addLaunchFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cmd.SetContext(context.Background())
	return cmd
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg, err := buildConfig(newTestCommand(t))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestBuildConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	fileCfg := config.DefaultConfig()
	fileCfg.Launch = trajectory.Launch{Speed: 25, Angle: 30, Height: 2}
	fileCfg.Gravity = 3.7
	if err := config.Save(path, fileCfg); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t, "--speed", "40", "--drag")
	configFile = path
	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Launch.Speed != 40 || cfg.Launch.Angle != 30 || cfg.Gravity != 3.7 || !cfg.Drag.Enabled {
		t.Errorf("flags should override the file only where set: %+v", cfg)
	}
}

func TestBuildConfig_Preset(t *testing.T) {
	cmd := newTestCommand(t, "--angle", "10")
	preset = "moon"
	cfg, err := buildConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gravity != 1.62 || cfg.Launch.Angle != 10 {
		t.Errorf("unexpected preset config: %+v", cfg)
	}
	if config.Presets["moon"].Launch.Angle != 45 {
		t.Error("preset was mutated")
	}

	preset = "jupiter"
	if _, err := buildConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestBuildConfig_Rejects(t *testing.T) {
	for _, args := range [][]string{
		{"--speed", "51"},
		{"--angle", "-91"},
		{"--dt", "0"},
		{"--speed", "NaN"},
	} {
		if _, err := buildConfig(newTestCommand(t, args...)); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestFireAndExport(t *testing.T) {
	dataDir = t.TempDir()
	cmd := newTestCommand(t, "--speed", "20", "--height", "0")
	angles = []float64{30, 60}

	if err := fireRun(cmd, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := storage.New(dataDir).List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, err = %v", runs, err)
	}
	run := runs[0]
	if len(run.Summaries) != 2 {
		t.Fatalf("expected 2 shots, got %d", len(run.Summaries))
	}

	outFile = filepath.Join(t.TempDir(), "points.csv")
	if err := exportCSV(cmd, []string{run.ID}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "time,trajectory,x,y\n") {
		t.Errorf("unexpected csv header")
	}

	outFile = filepath.Join(t.TempDir(), "paths.svg")
	if err := exportSVG(cmd, []string{run.ID}); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(outFile)
	if strings.Count(string(data), "<path ") != 2 {
		t.Error("expected one svg path per shot")
	}

	if err := exportCSV(cmd, []string{"missing"}); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestScenarioRun(t *testing.T) {
	dataDir = t.TempDir()
	path := filepath.Join(t.TempDir(), "pair.yaml")
	doc := `name: pair
preset: moon
actions:
  - at: 0
    fire: true
  - at: 0.2
    launch: {speed: 10, angle: 70}
    fire: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := scenarioRun(newTestCommand(t), []string{path}); err != nil {
		t.Fatal(err)
	}

	runs, err := storage.New(dataDir).List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, err = %v", runs, err)
	}
	if runs[0].Name != "pair" || runs[0].Gravity != 1.62 || len(runs[0].Summaries) != 2 {
		t.Errorf("unexpected run %+v", runs[0])
	}

	if err := scenarioRun(newTestCommand(t), []string{filepath.Join(t.TempDir(), "none.yaml")}); err == nil {
		t.Error("expected error for missing scenario")
	}
}

func TestLogFileClosedAfterRun(t *testing.T) {
	logFile = filepath.Join(t.TempDir(), "projmo.log")
	defer func() { logFile = "" }()

	cmd := &cobra.Command{Use: "fire"}
	if err := setupLogging(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if logOut == nil {
		t.Fatal("log file not opened")
	}
	logger.Error("shot failed", "trajectory", 3)

	if err := closeLog(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if logOut != nil {
		t.Error("log file handle kept after close")
	}
	if err := closeLog(cmd, nil); err != nil {
		t.Errorf("second close: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "shot failed") {
		t.Errorf("log file missing entry: %q", data)
	}
}
