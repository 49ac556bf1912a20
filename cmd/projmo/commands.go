package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/projmo/internal/analysis"
	"github.com/san-kum/projmo/internal/automation"
	"github.com/san-kum/projmo/internal/config"
	"github.com/san-kum/projmo/internal/export"
	"github.com/san-kum/projmo/internal/integrators"
	"github.com/san-kum/projmo/internal/logging"
	"github.com/san-kum/projmo/internal/optim"
	"github.com/san-kum/projmo/internal/physics"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/storage"
	"github.com/san-kum/projmo/internal/trajectory"
	"github.com/san-kum/projmo/internal/viz"
)

func fireRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := sim.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	shots := angles
	if len(shots) == 0 {
		shots = []float64{cfg.Launch.Angle}
	}
	for _, a := range shots {
		l := cfg.Launch
		l.Angle = a
		if err := s.SetLaunch(l); err != nil {
			return err
		}
		if _, err := s.Fire(); err != nil {
			return err
		}
	}

	fmt.Printf("firing %d shot(s) with %s...\n", len(shots), s.IntegratorName())
	start := time.Now()
	result, err := s.Run(cmd.Context(), cfg.Dt, cfg.Duration)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	name := preset
	if name == "" {
		name = "fire"
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	logger.Info("run saved", "run", runID, "steps", result.StepsTaken)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n\n", result.StepsTaken)
	if err := printSummaries(os.Stdout, result.Summaries); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	for _, sum := range result.Summaries {
		m := result.Metrics[sum.ID]
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Printf("  #%d %s: %.6f\n", sum.ID, k, m[k])
		}
	}

	for _, err := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if showASCII {
		for _, sum := range result.Summaries {
			fmt.Printf("\ntrajectory #%d\n", sum.ID)
			fmt.Print(analysis.PathToASCII(result.Paths[sum.ID], 80, 20))
		}
	}
	return nil
}

func printSummaries(w io.Writer, sums []trajectory.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tRANGE\tAPEX\tAPEX T\tFLIGHT\tSTEPS")
	for _, s := range sums {
		fmt.Fprintf(tw, "%d\t%s\t%.3fm\t%.3fm\t%.3fs\t%.3fs\t%d\n",
			s.ID, s.Status, s.Range, s.MaxHeight, s.ApexTime, s.FlightTime, s.Steps)
	}
	return tw.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSHOTS\tSPEED\tANGLE\tDRAG\tDT\tINTEG")
	for _, run := range runs {
		dragLabel := "off"
		if run.Drag.Enabled {
			dragLabel = run.Drag.Projectile
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1fm/s\t%.1f°\t%s\t%.4fs\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Summaries),
			run.Launch.Speed,
			run.Launch.Angle,
			dragLabel,
			run.Dt,
			run.Integrator,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, map[int][]trajectory.Point, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, logging.WrapError(err, "load run %s", runID)
	}
	paths, err := st.LoadPoints(runID)
	if err != nil {
		return nil, nil, logging.WrapError(err, "load points of %s", runID)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded points", runID)
	}
	return meta, paths, nil
}

func sortedIDs(paths map[int][]trajectory.Point) []int {
	ids := make([]int, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, paths, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("launch: %.1f m/s at %.1f° from %.1f m\n\n", meta.Launch.Speed, meta.Launch.Angle, meta.Launch.Height)

	ids := sortedIDs(paths)
	canvas := viz.PlotPaths(paths, ids, 80, 20)
	fmt.Println(canvas.Render(viz.ThemeCyberpunk.Palette()))
	if outFile != "" {
		if err := os.WriteFile(outFile, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
	}

	for _, id := range ids {
		ys := make([]float64, len(paths[id]))
		for i, p := range paths[id] {
			ys[i] = p.Position.Y
		}
		if len(ys) < 2 {
			continue
		}
		graph := asciigraph.Plot(ys,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("#%d height vs step", id)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// output opens outFile, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.New(dataDir).ExportJSON(args[0], w)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, paths, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.WritePointsCSV(w, paths)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, paths, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.WriteString(w, export.TrajectoryToSVG(paths, 800, 400))
	return err
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, paths, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		outFile = meta.ID + ".png"
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()

	opts := export.DefaultPlotOptions()
	opts.Title = fmt.Sprintf("%s: %.1f m/s at %.1f°", meta.ID, meta.Launch.Speed, meta.Launch.Angle)
	if err := export.TrajectoryToPNG(w, paths, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func sweepRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	values := analysis.Linspace(sweepFrom, sweepTo, sweepSteps)
	var pts []analysis.SweepPoint
	if sweepParam == "angle" {
		pts, err = analysis.Sweep(cmd.Context(), cfg, values)
	} else {
		pts, err = analysis.SweepParam(cmd.Context(), cfg, sweepParam, values)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRANGE\tAPEX\tFLIGHT\tVACUUM RANGE\tSTATUS\n", strings.ToUpper(sweepParam))
	ranges := make([]float64, len(pts))
	for i, p := range pts {
		ranges[i] = p.Range
		fmt.Fprintf(w, "%.3f\t%.3fm\t%.3fm\t%.3fs\t%.3fm\t%s\n",
			p.Value, p.Range, p.MaxHeight, p.FlightTime, p.AnalyticRange, p.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := analysis.Best(pts); ok {
		fmt.Printf("\nlongest range: %.3f m at %s=%.3f\n\n", best.Range, sweepParam, best.Value)
	}
	if len(ranges) > 1 {
		fmt.Println(asciigraph.Plot(ranges,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("range vs "+sweepParam),
		))
	}
	return nil
}

type comparison struct {
	name    string
	summary trajectory.Summary
	drift   float64
	elapsed time.Duration
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	results := make([]comparison, len(names))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, name := range names {
		g.Go(func() error {
			c := *cfg
			c.Integrator = name
			res, elapsed, err := fireOnce(ctx, &c)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if len(res.Summaries) == 0 {
				return fmt.Errorf("%s: no trajectory recorded", name)
			}
			sum := res.Summaries[0]
			results[i] = comparison{
				name:    name,
				summary: sum,
				drift:   res.Metrics[sum.ID]["energy_drift"],
				elapsed: elapsed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	analytic := analysis.AnalyticRange(cfg.Launch, cfg.Gravity)
	fmt.Printf("launch: %.1f m/s at %.1f° from %.1f m, dt=%.4fs\n", cfg.Launch.Speed, cfg.Launch.Angle, cfg.Launch.Height, cfg.Dt)
	if !cfg.Drag.Enabled {
		fmt.Printf("vacuum range: %.6f m\n", analytic)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tRANGE\tRANGE ERR\tAPEX\tFLIGHT\tENERGY DRIFT\tTIME")
	for _, r := range results {
		rangeErr := "-"
		if !cfg.Drag.Enabled {
			rangeErr = fmt.Sprintf("%.2e", r.summary.Range-analytic)
		}
		fmt.Fprintf(w, "%s\t%.6fm\t%s\t%.6fm\t%.4fs\t%.2e\t%v\n",
			r.name, r.summary.Range, rangeErr, r.summary.MaxHeight, r.summary.FlightTime, r.drift, r.elapsed)
	}
	return w.Flush()
}

func fireOnce(ctx context.Context, cfg *config.Config) (*sim.Result, time.Duration, error) {
	s, err := sim.FromConfig(cfg, logger)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.Fire(); err != nil {
		return nil, 0, err
	}
	start := time.Now()
	res, err := s.Run(ctx, cfg.Dt, cfg.Duration)
	return res, time.Since(start), err
}

func aimRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	opts := optim.DefaultAimOptions()
	if aimParam == "speed" {
		opts = optim.AimOptions{Param: "speed", Lo: config.MinSpeed, Hi: config.MaxSpeed, Points: 26, Rounds: 4}
	} else if aimParam != "angle" {
		return fmt.Errorf("--by must be angle or speed, got %q", aimParam)
	}

	sol, err := optim.Aim(cmd.Context(), cfg, aimTarget, opts)
	if err != nil {
		return err
	}
	logger.Debug("aim solved", "param", aimParam, "miss", sol.Miss)
	fmt.Printf("target:  %.2f m\n", aimTarget)
	fmt.Printf("speed:   %.2f m/s\n", sol.Launch.Speed)
	fmt.Printf("angle:   %.2f deg\n", sol.Launch.Angle)
	fmt.Printf("range:   %.2f m (miss %.3f m)\n", sol.Range, sol.Miss)
	return nil
}

func scenarioRun(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	cfg, err := sc.Config()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	s, err := sim.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Printf("running scenario %q (%d actions)\n", sc.Name, len(sc.Actions))
	result, err := automation.RunScenario(cmd.Context(), sc, s, cfg, logger)
	if err != nil {
		return err
	}

	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("simulated %.2fs in %d steps\n\n", result.Elapsed, result.StepsTaken)
	return printSummaries(os.Stdout, result.Summaries)
}

func listProjectiles(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASS\tDIAMETER\tCD")
	for _, name := range physics.ProjectileNames() {
		p := physics.Catalog[name]
		fmt.Fprintf(w, "%s\t%.3fkg\t%.3fm\t%.2f\n", p.Name, p.Mass, p.Diameter, p.DragCoefficient)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSPEED\tANGLE\tHEIGHT\tGRAVITY\tDRAG")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		dragLabel := "off"
		if p.Drag.Enabled {
			dragLabel = p.Drag.Projectile
		}
		fmt.Fprintf(w, "%s\t%.1fm/s\t%.1f°\t%.1fm\t%.2f\t%s\n",
			name, p.Launch.Speed, p.Launch.Angle, p.Launch.Height, p.Gravity, dragLabel)
	}
	return w.Flush()
}
