package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/projmo/internal/trajectory"
	"github.com/san-kum/projmo/internal/viz"
)

// Palette cycles through stroke colors for successive trajectories.
var Palette = []string{"#00ff9f", "#ff6b6b", "#4ecdc4", "#ffe66d", "#a29bfe", "#fd79a8"}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !canvas.IsSet(col*2+dx, row*4+dy) {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws every path on a shared scale with the ground at
// y = 0. Paths are drawn in trajectory id order.
func TrajectoryToSVG(paths map[int][]trajectory.Point, width, height int) string {
	ids := sortedIDs(paths)
	if len(ids) == 0 {
		return ""
	}

	b := boundsOf(paths)
	toX := func(x float64) float64 { return (x - b.minX) / b.rangeX() * float64(width) }
	toY := func(y float64) float64 { return float64(height) - (y-b.minY)/b.rangeY()*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#555555" stroke-width="1"/>
`, width, height, width, height, toY(0), width, toY(0))

	for i, id := range ids {
		pts := paths[id]
		if len(pts) == 0 {
			continue
		}
		fmt.Fprintf(&sb, `<path id="trajectory-%d" fill="none" stroke="%s" stroke-width="1.5" d="M`, id, Palette[i%len(Palette)])
		for j, p := range pts {
			if j > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", toX(p.Position.X), toY(p.Position.Y))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

type extent struct {
	minX, maxX, minY, maxY float64
}

func (e extent) rangeX() float64 { return e.maxX - e.minX }
func (e extent) rangeY() float64 { return e.maxY - e.minY }

// boundsOf returns the padded extent of all paths, always including the
// launch point column and the ground.
func boundsOf(paths map[int][]trajectory.Point) extent {
	e := extent{}
	for _, pts := range paths {
		for _, p := range pts {
			e.minX = min(e.minX, p.Position.X)
			e.maxX = max(e.maxX, p.Position.X)
			e.minY = min(e.minY, p.Position.Y)
			e.maxY = max(e.maxY, p.Position.Y)
		}
	}

	rx, ry := e.rangeX(), e.rangeY()
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	e.minX -= rx * 0.05
	e.maxX += rx * 0.05
	e.minY -= ry * 0.05
	e.maxY += ry * 0.1
	return e
}

func sortedIDs(paths map[int][]trajectory.Point) []int {
	ids := make([]int, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
