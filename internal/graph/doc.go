// Package graph builds the layered node topology drawn by the visualization.
//
// Layers are laid out left to right across the viewport and every node outside
// the last layer connects to a sparse, randomly sampled subset of the next
// layer:
//
//	nodes, err := graph.Generate([]int{12, 16, 16, 10}, 800, 600, graph.DefaultOptions(src))
//
// Generation is intentionally random. Callers that need reproducible output
// inject a seeded [rng.Source].
package graph
