// Package viz renders projectile simulations in the terminal.
//
// The live view is a Bubble Tea program that acts as the frame clock:
// every tick advances the simulation by 1/60 s and redraws the ground,
// the cannon and every recorded path on a braille [Canvas].
//
// # Key Bindings
//
//	Space - Fire
//	R     - Reset
//	←/→   - Launch speed
//	↑/↓   - Launch angle
//	D     - Toggle air resistance
//	P     - Pause/Resume
//	Tab   - Cycle projectile type
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
