package physics

import (
	"fmt"

	"github.com/san-kum/projmo/internal/dynamo"
)

// Gravity is a uniform field with no air resistance.
type Gravity struct {
	G float64
}

func NewGravity(g float64) *Gravity {
	return &Gravity{G: g}
}

func (g *Gravity) Acceleration(s dynamo.State) dynamo.Vec2 {
	return dynamo.Vec2{X: 0, Y: -g.G}
}

func (g *Gravity) GetParams() map[string]float64 {
	return map[string]float64{"gravity": g.G}
}

func (g *Gravity) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		if err := checkRange(name, value, 0, MaxGravity); err != nil {
			return err
		}
		g.G = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
