// Package dynamo provides the kinematic primitives shared by every part of
// the projectile lab.
//
// The package defines the fundamental types and interfaces:
//
//   - [Vec2]: 2D point or vector in SI units
//   - [State]: position, velocity and acceleration of one projectile
//   - [Model]: force model returning acceleration per unit mass
//   - [Integrator]: advances a [State] by a time step
//   - [Observer]: receives a state after it has been written
//
// # Example
//
//	v0 := dynamo.LaunchVelocity(20, 45)
//	s := dynamo.NewState(dynamo.Vec2{}, v0, dynamo.DefaultGravity)
//	s = integ.Step(model, s, 0.01)
//
// # Thread Safety
//
// All types here are values. A [State] is owned by exactly one trajectory;
// the sim package guards concurrent readers.
package dynamo
