package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/projmo/internal/trajectory"
)

// PlotOptions controls the rendered image.
type PlotOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Format string
}

// DefaultPlotOptions renders a 6x4 inch PNG.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		Title:  "Projectile trajectories",
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
		Format: "png",
	}
}

// NewPlot builds a gonum plot with one line per trajectory, labeled by id.
func NewPlot(paths map[int][]trajectory.Point, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "distance (m)"
	p.Y.Label.Text = "height (m)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	for i, id := range sortedIDs(paths) {
		pts := paths[id]
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j].X = pt.Position.X
			xys[j].Y = pt.Position.Y
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("trajectory %d: %w", id, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("#%d", id), line)
	}
	return p, nil
}

// TrajectoryToPNG renders the paths as an image and writes it to w.
func TrajectoryToPNG(w io.Writer, paths map[int][]trajectory.Point, opts PlotOptions) error {
	if len(paths) == 0 {
		return fmt.Errorf("no trajectories to plot")
	}
	if opts.Format == "" {
		opts.Format = "png"
	}

	p, err := NewPlot(paths, opts.Title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
