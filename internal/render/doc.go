// Package render drives the animated network scene.
//
// A [Scene] owns one visualization instance: the current node generation,
// the live pulses and the viewport. Each call to [Scene.Frame] draws exactly
// one frame onto a [Surface]:
//
//   - apply a pending resize, regenerating the graph
//   - clear the surface
//   - for each node in order: stroke its outgoing edges, running the pulse
//     spawn check on each, then fill the node
//   - advance and retire pulses, then fill the survivors
//
// Frames are driven either by a [Loop] or by an external tick such as the
// bubbletea update loop. Scenes are instance scoped; any number may run side
// by side.
//
// # Thread Safety
//
// Frame must only be called from one goroutine at a time. [Scene.Resize] and the
// [param.Controller] may be written from anywhere; the next frame sees the
// latest values.
package render
