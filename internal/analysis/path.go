package analysis

import (
	"strings"

	"github.com/san-kum/projmo/internal/trajectory"
)

// PathToASCII plots recorded positions on a width×height character grid.
// The ground line is drawn when y = 0 is in view.
func PathToASCII(points []trajectory.Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].Position.X, points[0].Position.X
	minY, maxY := points[0].Position.Y, points[0].Position.Y
	for _, p := range points {
		minX = min(minX, p.Position.X)
		maxX = max(maxX, p.Position.X)
		minY = min(minY, p.Position.Y)
		maxY = max(maxY, p.Position.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			grid[row][col] = '─'
		}
	}

	for _, p := range points {
		col := int((p.Position.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Position.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
