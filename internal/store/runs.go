package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/synapse/internal/render"
)

// Runs keeps headless benchmark runs on disk, one directory per run holding
// metadata.json and frames.csv.
type Runs struct {
	baseDir string
}

func NewRuns(baseDir string) *Runs {
	return &Runs{baseDir: baseDir}
}

func (s *Runs) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	SceneID   string             `json:"scene_id"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	Layers    []int              `json:"layers"`
	Intensity float64            `json:"intensity"`
	Frozen    bool               `json:"frozen"`
	Frames    int                `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`
}

var frameHeader = []string{"frame", "generation", "edges", "spawned", "retired", "live", "intensity", "frozen"}

// Save writes meta and the per-frame stats and returns the run ID.
func (s *Runs) Save(meta RunMetadata, frames []render.FrameStats) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("run_%d", meta.Timestamp.UnixNano())
	}
	meta.Frames = len(frames)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		row := []string{
			strconv.FormatUint(f.Frame, 10),
			strconv.Itoa(f.Generation),
			strconv.Itoa(f.Edges),
			strconv.Itoa(f.Spawned),
			strconv.Itoa(f.Retired),
			strconv.Itoa(f.Live),
			strconv.FormatFloat(f.Values.Intensity, 'f', 6, 64),
			strconv.FormatBool(f.Values.Frozen),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns the metadata of every readable run. A missing base directory
// is an empty list.
func (s *Runs) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Runs) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads back the live pulse count per frame.
func (s *Runs) LoadFrames(runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	live := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(frameHeader) {
			continue
		}
		v, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			continue
		}
		live = append(live, v)
	}
	return live, nil
}
