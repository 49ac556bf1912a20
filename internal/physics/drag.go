package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/projmo/internal/dynamo"
)

// Drag is gravity plus quadratic air resistance. Density is evaluated at
// Altitude plus the projectile height, and drag acts against the velocity
// relative to the wind.
type Drag struct {
	Gravity    float64
	Projectile Projectile
	Altitude   float64
	Wind       dynamo.Vec2
}

func NewDrag(g float64, p Projectile) *Drag {
	return &Drag{
		Gravity:    g,
		Projectile: p,
	}
}

func (d *Drag) Acceleration(s dynamo.State) dynamo.Vec2 {
	k := d.coefficient(s.Position.Y)
	rel := s.Velocity.Sub(d.Wind)
	speed := rel.Len()
	return dynamo.Vec2{
		X: -k * speed * rel.X,
		Y: -d.Gravity - k*speed*rel.Y,
	}
}

// coefficient is ½·ρ·Cd·A/m at height y above the launch site.
func (d *Drag) coefficient(y float64) float64 {
	if d.Projectile.Mass <= 0 {
		return 0
	}
	rho := AirDensity(d.Altitude + math.Max(0, y))
	return 0.5 * rho * d.Projectile.DragCoefficient * d.Projectile.Area() / d.Projectile.Mass
}

// Force returns the drag force in newtons for state s.
func (d *Drag) Force(s dynamo.State) dynamo.Vec2 {
	a := d.Acceleration(s)
	return dynamo.Vec2{X: a.X, Y: a.Y + d.Gravity}.Scale(d.Projectile.Mass)
}

func (d *Drag) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":          d.Gravity,
		"altitude":         d.Altitude,
		"wind":             d.Wind.X,
		"mass":             d.Projectile.Mass,
		"diameter":         d.Projectile.Diameter,
		"drag_coefficient": d.Projectile.DragCoefficient,
	}
}

func (d *Drag) SetParam(name string, value float64) error {
	switch name {
	case "gravity":
		if err := checkRange(name, value, 0, MaxGravity); err != nil {
			return err
		}
		d.Gravity = value
	case "altitude":
		if err := checkRange(name, value, 0, MaxAltitude); err != nil {
			return err
		}
		d.Altitude = value
	case "wind":
		if err := checkRange(name, value, -MaxWind, MaxWind); err != nil {
			return err
		}
		d.Wind.X = value
	case "mass":
		if err := checkRange(name, value, 1e-3, 1e5); err != nil {
			return err
		}
		d.Projectile.Mass = value
	case "diameter":
		if err := checkRange(name, value, 0, 10); err != nil {
			return err
		}
		d.Projectile.Diameter = value
	case "drag_coefficient":
		if err := checkRange(name, value, 0, 2); err != nil {
			return err
		}
		d.Projectile.DragCoefficient = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
