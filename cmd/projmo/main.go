package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/logging"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/viz"
)

var (
	dataDir string
	logJSON bool
	logFile string
	logOut  *os.File
	logger  = logging.Discard()

	configFile      string
	preset          string
	integrator      string
	dt              float64
	duration        float64
	gravity         float64
	speed           float64
	angle           float64
	height          float64
	drag            bool
	projectile      string
	altitude        float64
	wind            float64
	maxTrajectories int
	historyLimit    int

	angles    []float64
	showASCII bool

	outFile string

	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepParam string

	aimTarget float64
	aimParam  string

	themeName string
)

// main registers the commands and runs the live view when no subcommand is
// given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:                "projmo",
		Short:              "projectile motion simulation lab",
		PersistentPreRunE:  setupLogging,
		PersistentPostRunE: closeLog,
		RunE:               runLive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".projmo", "data directory")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	addLaunchFlags(rootCmd)
	rootCmd.Flags().StringVar(&themeName, "theme", viz.ThemeCyberpunk.Name, fmt.Sprintf("live view theme %v", viz.ThemeNames()))

	fireCmd := &cobra.Command{
		Use:   "fire",
		Short: "fire projectiles headlessly and save the run",
		Args:  cobra.NoArgs,
		RunE:  fireRun,
	}
	addLaunchFlags(fireCmd)
	fireCmd.Flags().Float64SliceVar(&angles, "angles", nil, "fire one shot per angle (degrees)")
	fireCmd.Flags().BoolVar(&showASCII, "ascii", false, "print an ASCII plot of the paths")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run paths in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&outFile, "out", "o", "", "also write the path canvas as SVG")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run points to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run paths to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "export run paths to a PNG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	for _, c := range []*cobra.Command{exportJSONCmd, exportCSVCmd, exportSVGCmd, exportPNGCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout when empty)")
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep launch angle or a force parameter and report ranges",
		Args:  cobra.NoArgs,
		RunE:  sweepRun,
	}
	addLaunchFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 85, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 17, "number of values")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "angle", "angle or a force parameter (gravity, wind, altitude, mass, diameter, drag_coefficient)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same shot",
		RunE:  compareIntegrators,
	}
	addLaunchFlags(compareCmd)

	aimCmd := &cobra.Command{
		Use:   "aim",
		Short: "find the launch angle or speed that lands on a target",
		Args:  cobra.NoArgs,
		RunE:  aimRun,
	}
	addLaunchFlags(aimCmd)
	aimCmd.Flags().Float64Var(&aimTarget, "target", 30, "target distance downrange (m)")
	aimCmd.Flags().StringVar(&aimParam, "by", "angle", "parameter to solve for: angle or speed")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted YAML scenario and save the run",
		Args:  cobra.ExactArgs(1),
		RunE:  scenarioRun,
	}

	projectilesCmd := &cobra.Command{
		Use:   "projectiles",
		Short: "list projectile types",
		RunE:  listProjectiles,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive cannon in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLaunchFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", viz.ThemeCyberpunk.Name, fmt.Sprintf("live view theme %v", viz.ThemeNames()))

	rootCmd.AddCommand(fireCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, exportPNGCmd,
		sweepCmd, compareCmd, aimCmd, scenarioCmd, projectilesCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		closeLog(rootCmd, nil)
		os.Exit(1)
	}
}

// setupLogging builds the shared logger. The live view discards logs
// unless a log file is given, since stderr shares the terminal.
func setupLogging(cmd *cobra.Command, args []string) error {
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logOut = f
		logger = logging.New(logging.Options{
			Writer: f,
			JSON:   logJSON,
			Level:  logging.ParseLevel(os.Getenv(logging.EnvLevel)),
		})
	case cmd.Name() == "live" || cmd.Name() == "projmo":
		logger = logging.Discard()
	default:
		logger = logging.FromEnv(logJSON)
	}
	return nil
}

// closeLog closes the log file opened by setupLogging, if any.
func closeLog(cmd *cobra.Command, args []string) error {
	if logOut == nil {
		return nil
	}
	err := logOut.Close()
	logOut = nil
	logger = logging.Discard()
	return err
}

func addLaunchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", config.DefaultConfig().Integrator, "integrator")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	f.Float64Var(&duration, "time", config.DefaultDuration, "maximum simulated time (s)")
	f.Float64Var(&gravity, "gravity", config.DefaultConfig().Gravity, "gravity (m/s²)")
	f.Float64Var(&speed, "speed", config.DefaultSpeed, "launch speed (m/s)")
	f.Float64Var(&angle, "angle", config.DefaultAngle, "launch angle (degrees)")
	f.Float64Var(&height, "height", config.DefaultHeight, "launch height (m)")
	f.BoolVar(&drag, "drag", false, "enable air resistance")
	f.StringVar(&projectile, "projectile", config.DefaultConfig().Drag.Projectile, "projectile type")
	f.Float64Var(&altitude, "altitude", 0, "launch site altitude (m)")
	f.Float64Var(&wind, "wind", 0, "horizontal wind (m/s)")
	f.IntVar(&maxTrajectories, "max-trajectories", config.DefaultMaxTrajectories, "trajectories kept at once")
	f.IntVar(&historyLimit, "history-limit", config.DefaultHistoryLimit, "points recorded per trajectory (0 = unbounded)")
}

// buildConfig layers defaults, preset, config file and changed flags, in
// that order, and validates the result.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if f.Changed("speed") {
		cfg.Launch.Speed = speed
	}
	if f.Changed("angle") {
		cfg.Launch.Angle = angle
	}
	if f.Changed("height") {
		cfg.Launch.Height = height
	}
	if f.Changed("drag") {
		cfg.Drag.Enabled = drag
	}
	if f.Changed("projectile") {
		cfg.Drag.Projectile = projectile
	}
	if f.Changed("altitude") {
		cfg.Drag.Altitude = altitude
	}
	if f.Changed("wind") {
		cfg.Drag.Wind = wind
	}
	if f.Changed("max-trajectories") {
		cfg.MaxTrajectories = maxTrajectories
	}
	if f.Changed("history-limit") {
		cfg.HistoryLimit = historyLimit
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	return viz.Run(s, logger, themeName)
}
