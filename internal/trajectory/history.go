package trajectory

import "github.com/san-kum/projmo/internal/dynamo"

// Point is one recorded sample of a path.
type Point struct {
	Time     float64     `json:"time"`
	Position dynamo.Vec2 `json:"position"`
}

// History is an append-only record of positions in chronological order.
// A history with a limit stops recording once full; it is only ever
// emptied as a whole by Clear.
type History struct {
	points []Point
	limit  int
}

// NewHistory returns an empty history. A limit of zero means unbounded.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Record appends p and reports whether it was stored.
func (h *History) Record(p Point) bool {
	if h.Full() {
		return false
	}
	h.points = append(h.points, p)
	return true
}

func (h *History) Clear() {
	h.points = nil
}

func (h *History) Len() int {
	return len(h.points)
}

func (h *History) Limit() int {
	return h.limit
}

func (h *History) Full() bool {
	return h.limit > 0 && len(h.points) >= h.limit
}

// Points returns a copy of the recorded samples.
func (h *History) Points() []Point {
	out := make([]Point, len(h.points))
	copy(out, h.points)
	return out
}

// Last returns the newest sample.
func (h *History) Last() (Point, bool) {
	if len(h.points) == 0 {
		return Point{}, false
	}
	return h.points[len(h.points)-1], true
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	return &History{points: h.Points(), limit: h.limit}
}
