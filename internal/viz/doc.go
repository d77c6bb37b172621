// Package viz renders the network scene in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: tick-driven view that draws one scene frame per tick
//   - [Canvas]: Braille-based surface with per-cell color
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Freeze/Resume pulses
//	+ -   - Raise or lower intensity
//	B     - Toggle boost
//	R     - Regenerate the network
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// While recording, frames are also drawn onto a raster image and saved as a
// GIF animation when recording stops or the program quits.
package viz
