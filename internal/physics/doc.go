// Package physics provides the force models that drive projectile motion.
//
// Each model implements [dynamo.Model], returning acceleration per unit
// mass for a projectile state:
//
//   - [Gravity]: uniform gravitational field, no air
//   - [Drag]: gravity plus quadratic air resistance with wind and
//     altitude-dependent air density
//
// Both models also implement [dynamo.Configurable] for live tuning.
//
// # Air Density
//
// [AirDensity] follows the NASA Glenn standard atmosphere model, split into
// troposphere, lower stratosphere and upper stratosphere:
//
//	rho := physics.AirDensity(0)  // ~1.225 kg/m³ at sea level
package physics
