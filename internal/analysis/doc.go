// Package analysis compares simulated trajectories with the vacuum
// closed form and runs parameter sweeps.
//
//   - [ClosedForm]: exact no-drag position at time t
//   - [AnalyticRange], [AnalyticApex], [AnalyticFlightTime]: landing and apex figures
//   - [Sweep]: range and apex per launch angle, simulated in parallel
//   - [SweepParam]: the same for a force model parameter such as wind or drag_coefficient
//   - [PathToASCII]: quick scatter plot of a recorded path
//
// # Complementary angles
//
// From ground level and without drag, θ and 90°-θ land at the same spot.
// Launching from a height or enabling drag breaks the symmetry:
//
//	pts, _ := analysis.Sweep(ctx, cfg, []float64{30, 60})
//	fmt.Println(pts[0].Range - pts[1].Range)
package analysis
