package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/synapse/internal/graph"
	"github.com/san-kum/synapse/internal/render"
)

// Snapshot is the exported topology of one scene generation plus its pulse
// counters.
type Snapshot struct {
	SceneID    uuid.UUID    `json:"scene_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Generation int          `json:"generation"`
	Viewport   ViewportData `json:"viewport"`
	Layers     []int        `json:"layers"`
	Nodes      []NodeData   `json:"nodes"`
	Edges      int          `json:"edges"`
	Frames     int          `json:"frames"`
	Spawned    uint64       `json:"spawned"`
	Retired    uint64       `json:"retired"`
	Live       int          `json:"live"`
}

type ViewportData struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	DeviceRatio float64 `json:"device_ratio"`
	Scale       float64 `json:"scale"`
}

type NodeData struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Phase   float64 `json:"phase"`
	Layer   int     `json:"layer"`
	Targets []int   `json:"targets"`
}

// Capture builds a snapshot of the scene's current generation. frames is
// the number of frames drawn so far.
func Capture(scene *render.Scene, frames int) Snapshot {
	vp := scene.Viewport()
	spawned, retired := scene.Totals()
	snap := Snapshot{
		SceneID:    scene.ID(),
		Timestamp:  time.Now().UTC(),
		Generation: scene.Generation(),
		Viewport: ViewportData{
			Width:       vp.Width,
			Height:      vp.Height,
			DeviceRatio: vp.DeviceRatio,
			Scale:       vp.Scale(),
		},
		Layers:  scene.Config().Layers,
		Edges:   graph.EdgeCount(scene.Nodes()),
		Frames:  frames,
		Spawned: spawned,
		Retired: retired,
		Live:    len(scene.Pulses()),
	}
	for _, n := range scene.Nodes() {
		targets := n.Targets
		if targets == nil {
			targets = []int{}
		}
		snap.Nodes = append(snap.Nodes, NodeData{
			X:       n.Pos.X,
			Y:       n.Pos.Y,
			Radius:  n.Radius,
			Phase:   n.Phase,
			Layer:   n.Layer,
			Targets: targets,
		})
	}
	return snap
}

func ExportJSON(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ExportFile writes the snapshot to path, or to stdout when path is "-".
func ExportFile(path string, snap Snapshot) error {
	if path == "-" {
		return ExportJSON(os.Stdout, snap)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ExportJSON(file, snap); err != nil {
		file.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return file.Close()
}

// Decode reads a snapshot previously written by ExportJSON.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Validate checks that the snapshot describes a well-formed layered graph:
// node counts match the layer sizes, every edge joins a node to one in the
// next layer, and the edge total agrees with the target lists.
func (s Snapshot) Validate() error {
	total := 0
	for _, n := range s.Layers {
		if n < 1 {
			return fmt.Errorf("layer size %d", n)
		}
		total += n
	}
	if total != len(s.Nodes) {
		return fmt.Errorf("layers hold %d nodes, snapshot has %d", total, len(s.Nodes))
	}
	edges := 0
	for i, n := range s.Nodes {
		for _, t := range n.Targets {
			if t < 0 || t >= len(s.Nodes) {
				return fmt.Errorf("node %d: target %d out of range", i, t)
			}
			if s.Nodes[t].Layer != n.Layer+1 {
				return fmt.Errorf("node %d: target %d is in layer %d, want %d", i, t, s.Nodes[t].Layer, n.Layer+1)
			}
		}
		edges += len(n.Targets)
	}
	if edges != s.Edges {
		return fmt.Errorf("edge count %d, targets sum to %d", s.Edges, edges)
	}
	return nil
}
