package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/projmo/internal/dynamo"
)

// Parameter limits accepted by SetParam.
const (
	MaxGravity  = 50.0
	MaxAltitude = 30000.0
	MaxWind     = 60.0
)

// Projectile describes the physical body being launched.
type Projectile struct {
	Name            string  `yaml:"name" json:"name"`
	Mass            float64 `yaml:"mass" json:"mass"`
	Diameter        float64 `yaml:"diameter" json:"diameter"`
	DragCoefficient float64 `yaml:"drag_coefficient" json:"drag_coefficient"`
}

// Area is the frontal cross-section in m².
func (p Projectile) Area() float64 {
	return math.Pi * p.Diameter * p.Diameter / 4
}

func (p Projectile) Validate() error {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return fmt.Errorf("projectile %q mass %v: %w", p.Name, p.Mass, dynamo.ErrParameterBounds)
	}
	if !(p.Diameter >= 0) || math.IsInf(p.Diameter, 0) {
		return fmt.Errorf("projectile %q diameter %v: %w", p.Name, p.Diameter, dynamo.ErrParameterBounds)
	}
	if !(p.DragCoefficient >= 0) || math.IsInf(p.DragCoefficient, 0) {
		return fmt.Errorf("projectile %q drag coefficient %v: %w", p.Name, p.DragCoefficient, dynamo.ErrParameterBounds)
	}
	return nil
}

// Catalog lists the built-in projectile types.
var Catalog = map[string]Projectile{
	"cannonball": {Name: "cannonball", Mass: 17.6, Diameter: 0.18, DragCoefficient: 0.47},
	"pumpkin":    {Name: "pumpkin", Mass: 5, Diameter: 0.37, DragCoefficient: 0.6},
	"baseball":   {Name: "baseball", Mass: 0.145, Diameter: 0.074, DragCoefficient: 0.35},
	"golfball":   {Name: "golfball", Mass: 0.046, Diameter: 0.043, DragCoefficient: 0.25},
	"football":   {Name: "football", Mass: 0.41, Diameter: 0.17, DragCoefficient: 0.05},
	"human":      {Name: "human", Mass: 70, Diameter: 0.4, DragCoefficient: 1.2},
	"piano":      {Name: "piano", Mass: 400, Diameter: 2.2, DragCoefficient: 1.28},
	"car":        {Name: "car", Mass: 1000, Diameter: 1.9, DragCoefficient: 0.3},
}

// DefaultProjectile names the projectile used when none is configured.
const DefaultProjectile = "cannonball"

// LookupProjectile returns a catalog entry by name.
func LookupProjectile(name string) (Projectile, error) {
	p, ok := Catalog[name]
	if !ok {
		return Projectile{}, fmt.Errorf("unknown projectile: %s", name)
	}
	return p, nil
}

// ProjectileNames lists the catalog in sorted order.
func ProjectileNames() []string {
	names := make([]string, 0, len(Catalog))
	for name := range Catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkRange(name string, value, lo, hi float64) error {
	if math.IsNaN(value) || value < lo || value > hi {
		return fmt.Errorf("%s=%v outside [%v, %v]: %w", name, value, lo, hi, dynamo.ErrParameterBounds)
	}
	return nil
}
