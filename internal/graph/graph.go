package graph

import (
	"fmt"
	"math"

	"github.com/san-kum/synapse/internal/geom"
	"github.com/san-kum/synapse/internal/rng"
)

const (
	DefaultEdgeProbability = 0.35

	// PaddingX is the horizontal margin on each side, as a fraction of width.
	PaddingX = 0.1
	// WorkingHeight is the vertical span used by each layer, as a fraction of height.
	WorkingHeight = 0.8

	BoundaryRadius = 3.5
	InteriorRadius = 2.5
)

// DefaultLayers is the MLP-shaped layout the visualization ships with.
var DefaultLayers = []int{12, 16, 16, 10}

type Node struct {
	Pos    geom.Point
	Radius float64
	// Phase is a per-node offset in [0, 2π) for pulsing effects.
	Phase float64
	Layer int
	// Targets index into the flat node slice; all of them sit in Layer+1.
	Targets []int
}

type Options struct {
	EdgeProbability float64
	Rand            rng.Source
}

func DefaultOptions(src rng.Source) Options {
	return Options{EdgeProbability: DefaultEdgeProbability, Rand: src}
}

// Validate reports whether layers can be laid out.
func Validate(layers []int) error {
	if len(layers) < 2 {
		return fmt.Errorf("%w: need at least 2 layers, got %d", ErrConfiguration, len(layers))
	}
	for i, n := range layers {
		if n < 1 {
			return fmt.Errorf("%w: layer %d has %d nodes", ErrConfiguration, i, n)
		}
	}
	return nil
}

// LayerStarts returns the flat index of the first node of every layer.
func LayerStarts(layers []int) []int {
	starts := make([]int, len(layers))
	idx := 0
	for i, n := range layers {
		starts[i] = idx
		idx += n
	}
	return starts
}

// Generate lays out len(layers) columns within a width x height viewport and
// samples the sparse edge set. The returned slice is new on every call.
func Generate(layers []int, width, height float64, opts Options) ([]Node, error) {
	if err := Validate(layers); err != nil {
		return nil, err
	}
	if opts.Rand == nil {
		opts.Rand = rng.New(0)
	}

	total := 0
	for _, n := range layers {
		total += n
	}
	nodes := make([]Node, 0, total)

	last := len(layers) - 1
	padX := width * PaddingX
	stepX := (width - 2*padX) / float64(last)
	workH := height * WorkingHeight
	yStart := (height - workH) / 2

	for layer, count := range layers {
		x := padX + stepX*float64(layer)
		stepY := workH / float64(count+1)
		radius := InteriorRadius
		if layer == 0 || layer == last {
			radius = BoundaryRadius
		}
		for i := 0; i < count; i++ {
			nodes = append(nodes, Node{
				Pos:    geom.Point{X: x, Y: yStart + stepY*float64(i+1)},
				Radius: radius,
				Phase:  opts.Rand.Float64() * 2 * math.Pi,
				Layer:  layer,
			})
		}
	}

	connect(nodes, layers, opts)
	return nodes, nil
}

func connect(nodes []Node, layers []int, opts Options) {
	starts := LayerStarts(layers)
	last := len(layers) - 1

	for i := range nodes {
		n := &nodes[i]
		if n.Layer == last {
			continue
		}
		next := n.Layer + 1
		start, count := starts[next], layers[next]

		for j := 0; j < count; j++ {
			if opts.Rand.Float64() < opts.EdgeProbability {
				n.Targets = append(n.Targets, start+j)
			}
		}
		// no orphans: every non-terminal node gets at least one sink
		if len(n.Targets) == 0 {
			n.Targets = append(n.Targets, start+opts.Rand.IntN(count))
		}
	}
}

// EdgeCount returns the number of directed edges in nodes.
func EdgeCount(nodes []Node) int {
	count := 0
	for _, n := range nodes {
		count += len(n.Targets)
	}
	return count
}
