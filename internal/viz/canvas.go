package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/projmo/internal/trajectory"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille pixel grid. Each cell also carries the ink of the
// last layer drawn into it so paths can be colored independently.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	ink           [][]int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		ink:    make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.ink[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a pixel at (x, y) in sub-pixel coordinates with ink 0.
func (c *Canvas) Set(x, y int) {
	c.SetInk(x, y, 0)
}

// SetInk sets a pixel and tags its cell with ink.
func (c *Canvas) SetInk(x, y, ink int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.ink[row][col] = ink
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	if !ok {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.ink[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1, ink int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetInk(x0, y0, ink)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle of radius r sub-pixels.
func (c *Canvas) DrawCircle(cx, cy, r, ink int) {
	if r <= 0 {
		c.SetInk(cx, cy, ink)
		return
	}
	steps := 8 * r
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.SetInk(cx+int(math.Round(float64(r)*math.Cos(a))), cy+int(math.Round(float64(r)*math.Sin(a))), ink)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render colors each cell with the palette entry of its ink. Runs of the
// same ink are styled together.
func (c *Canvas) Render(palette []lipgloss.Color) string {
	if len(palette) == 0 {
		return c.String()
	}
	var b strings.Builder
	for r, row := range c.Grid {
		start := 0
		for col := 1; col <= len(row); col++ {
			if col < len(row) && c.ink[r][col] == c.ink[r][start] {
				continue
			}
			seg := string(row[start:col])
			color := inkColor(palette, c.ink[r][start])
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(seg))
			start = col
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// inkColor resolves ink against palette. Trail inks past the end of the
// palette cycle through the trail colors only.
func inkColor(palette []lipgloss.Color, ink int) lipgloss.Color {
	if ink < len(palette) {
		return palette[max(ink, 0)]
	}
	if trails := len(palette) - inkTrail; trails > 0 {
		return palette[inkTrail+(ink-inkTrail)%trails]
	}
	return palette[ink%len(palette)]
}

// Viewport maps world metres onto canvas sub-pixels. The ground (y = 0)
// sits on the bottom pixel row.
type Viewport struct {
	MaxX, MaxY float64
}

// Fit grows the viewport so that p is visible with some headroom.
func (v *Viewport) Fit(x, y float64) {
	if x > v.MaxX {
		v.MaxX = x * 1.1
	}
	if y > v.MaxY {
		v.MaxY = y * 1.15
	}
}

// Project converts world coordinates to sub-pixels on c.
func (v Viewport) Project(c *Canvas, x, y float64) (int, int) {
	pw, ph := c.PixelSize()
	maxX, maxY := v.MaxX, v.MaxY
	if maxX <= 0 {
		maxX = 1
	}
	if maxY <= 0 {
		maxY = 1
	}
	px := int(math.Round(x / maxX * float64(pw-1)))
	py := (ph - 1) - int(math.Round(y/maxY*float64(ph-1)))
	return px, py
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PlotPaths draws every path onto a fresh w×h canvas with the ground on
// the bottom row. Paths use ink inkTrail+i in the order of ids.
func PlotPaths(paths map[int][]trajectory.Point, ids []int, w, h int) *Canvas {
	c := NewCanvas(w, h)
	v := Viewport{MaxX: 1, MaxY: 1}
	for _, id := range ids {
		for _, p := range paths[id] {
			v.Fit(p.Position.X, p.Position.Y)
		}
	}

	pw, ph := c.PixelSize()
	c.DrawLine(0, ph-1, pw-1, ph-1, inkGround)
	for i, id := range ids {
		pts := paths[id]
		if len(pts) == 0 {
			continue
		}
		px, py := v.Project(c, pts[0].Position.X, pts[0].Position.Y)
		for _, p := range pts[1:] {
			x, y := v.Project(c, p.Position.X, p.Position.Y)
			c.DrawLine(px, py, x, y, inkTrail+i)
			px, py = x, y
		}
	}
	return c
}
