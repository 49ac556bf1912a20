package analysis

import (
	"math"

	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/trajectory"
)

// ClosedForm returns the exact vacuum position t seconds after launch.
func ClosedForm(l trajectory.Launch, g, t float64) dynamo.Vec2 {
	v := dynamo.LaunchVelocity(l.Speed, l.Angle)
	return dynamo.Vec2{
		X: v.X * t,
		Y: l.Height + v.Y*t - 0.5*g*t*t,
	}
}

// AnalyticFlightTime is the time at which the vacuum path returns to y = 0.
// It is +Inf when gravity never brings the projectile down.
func AnalyticFlightTime(l trajectory.Launch, g float64) float64 {
	v := dynamo.LaunchVelocity(l.Speed, l.Angle)
	if g <= 0 {
		if v.Y < 0 {
			return -l.Height / v.Y
		}
		if l.Height == 0 && v.Y == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return (v.Y + math.Sqrt(v.Y*v.Y+2*g*l.Height)) / g
}

// AnalyticRange is the horizontal distance covered before landing.
func AnalyticRange(l trajectory.Launch, g float64) float64 {
	v := dynamo.LaunchVelocity(l.Speed, l.Angle)
	t := AnalyticFlightTime(l, g)
	if v.X == 0 {
		return 0
	}
	return v.X * t
}

// AnalyticApex is the highest point reached.
func AnalyticApex(l trajectory.Launch, g float64) float64 {
	vy := dynamo.LaunchVelocity(l.Speed, l.Angle).Y
	if vy <= 0 {
		return l.Height
	}
	if g <= 0 {
		return math.Inf(1)
	}
	return l.Height + vy*vy/(2*g)
}
