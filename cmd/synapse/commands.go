package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/synapse/internal/config"
	"github.com/san-kum/synapse/internal/export"
	"github.com/san-kum/synapse/internal/graph"
	"github.com/san-kum/synapse/internal/metrics"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/raster"
	"github.com/san-kum/synapse/internal/render"
	"github.com/san-kum/synapse/internal/store"
	"github.com/san-kum/synapse/internal/viz"
)

// newScene builds a themed scene from cfg.
func newScene(cfg *config.Config, logger *log.Logger, opts ...render.Option) (*render.Scene, viz.Theme, error) {
	theme, _ := viz.GetTheme(cfg.Theme)
	sc := cfg.SceneConfig()
	sc.Palette = theme.Palette()
	scene, err := render.NewScene(sc, cfg.Controller(), append([]render.Option{render.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, theme, err
	}
	return scene, theme, nil
}

// mount attaches surface at the size given by the command's flags.
func mount(cmd *cobra.Command, scene *render.Scene, surface render.Surface) error {
	w, _ := cmd.Flags().GetFloat64("width")
	h, _ := cmd.Flags().GetFloat64("height")
	ratio, _ := cmd.Flags().GetFloat64("dpr")
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid size %.0fx%.0f", w, h)
	}
	if !scene.Mount(surface, w, h, ratio) {
		return render.ErrNoSurface
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "synapse")
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logger = log.Default()
	}

	scene, theme, err := newScene(cfg, logger)
	if err != nil {
		return err
	}
	return viz.RunLive(scene, viz.Options{FPS: cfg.FPS, Theme: theme, GIFPath: gifPath})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	n, _ := cmd.Flags().GetInt("frames")
	warm, _ := cmd.Flags().GetInt("warmup")

	ext := strings.ToLower(filepath.Ext(out))
	if ext != ".gif" && ext != ".png" {
		return fmt.Errorf("unknown output format %q (use .gif or .png)", ext)
	}
	if n < 1 {
		return fmt.Errorf("frames must be positive, got %d", n)
	}

	scene, theme, err := newScene(cfg, stderrLogger())
	if err != nil {
		return err
	}
	defer scene.Close()

	img := raster.New(theme.BackgroundColor())
	if err := mount(cmd, scene, img); err != nil {
		return err
	}
	for range warm {
		scene.Frame()
	}

	if ext == ".png" {
		scene.Frame()
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := img.EncodePNG(f); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}

	anim := raster.NewAnimation(cfg.FPS)
	for range n {
		scene.Frame()
		anim.Capture(img)
	}
	if err := anim.Save(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", out, anim.Len())
	return nil
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	warm, _ := cmd.Flags().GetInt("warmup")
	braille, _ := cmd.Flags().GetBool("braille")

	scene, theme, err := newScene(cfg, stderrLogger())
	if err != nil {
		return err
	}
	defer scene.Close()

	var output func() string
	if braille {
		canvas := viz.NewCanvas(0, 0)
		canvas.SetDensity(viz.CellDensity)
		canvas.SetBackground(theme.BackgroundColor())
		if err := mount(cmd, scene, canvas); err != nil {
			return err
		}
		output = func() string { return export.CanvasToSVG(canvas, 2, theme.BackgroundColor()) }
	} else {
		doc := export.NewSVG(theme.BackgroundColor())
		if err := mount(cmd, scene, doc); err != nil {
			return err
		}
		output = doc.String
	}
	for range max(warm, 1) {
		scene.Frame()
	}

	if out == "-" {
		_, err := fmt.Fprint(os.Stdout, output())
		return err
	}
	if err := os.WriteFile(out, []byte(output()), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	if in, _ := cmd.Flags().GetString("in"); in != "" {
		return inspectSnapshot(in)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")

	scene, _, err := newScene(cfg, stderrLogger())
	if err != nil {
		return err
	}
	defer scene.Close()

	if err := mount(cmd, scene, &render.Recorder{}); err != nil {
		return err
	}
	return store.ExportFile(out, store.Capture(scene, 0))
}

// inspectSnapshot checks an exported snapshot and prints a summary.
func inspectSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := store.Decode(f)
	if err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tGEN\tLAYERS\tNODES\tEDGES\tVIEWPORT\tSPAWNED\tRETIRED")
	fmt.Fprintf(w, "%s\t%d\t%v\t%d\t%d\t%.0fx%.0f@%.1fx\t%d\t%d\n",
		snap.SceneID, snap.Generation, snap.Layers, len(snap.Nodes), snap.Edges,
		snap.Viewport.Width, snap.Viewport.Height, snap.Viewport.Scale,
		snap.Spawned, snap.Retired)
	return w.Flush()
}

// benchResult is one intensity level of a bench run.
type benchResult struct {
	values   param.Values
	edges    int
	frames   int
	expected float64
	stats    *metrics.Pulses
	history  []render.FrameStats
	elapsed  time.Duration
	sceneID  string
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("frames")

	var wall time.Duration
	if realtime != "" {
		wall, err = time.ParseDuration(realtime)
		if err != nil {
			return fmt.Errorf("realtime: %w", err)
		}
	} else if n < 1 {
		return fmt.Errorf("frames must be positive, got %d", n)
	}

	fmt.Printf("benchmarking layers %v, edge probability %.2f\n\n", cfg.Layers, cfg.EdgeProbability)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTENSITY\tEDGES\tFRAMES\tSPAWNED\tEXPECTED\tRETIRED\tPEAK\tTIME\tFRAMES/SEC")

	results, err := benchLevels(cmd, cfg, n, wall)
	if err != nil {
		return err
	}
	for _, res := range results {
		fmt.Fprintf(w, "%.2f\t%d\t%d\t%d\t%.1f\t%d\t%d\t%v\t%.0f\n",
			res.values.Intensity, res.edges, res.frames, res.stats.Spawned(), res.expected,
			res.stats.Retired(), res.stats.Peak(), res.elapsed.Round(time.Millisecond),
			float64(res.frames)/res.elapsed.Seconds())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(results) > 0 {
		last := results[len(results)-1]
		if hist := last.stats.History(); len(hist) > 1 {
			fmt.Println()
			fmt.Println(asciigraph.Plot(hist,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("live pulses at intensity %.2f", last.values.Intensity)),
			))
		}
	}

	if !saveRun {
		return nil
	}
	runs := store.NewRuns(dataDir)
	if err := runs.Init(); err != nil {
		return err
	}
	for _, res := range results {
		id, err := runs.Save(store.RunMetadata{
			ID:        "run_" + res.sceneID[:8],
			SceneID:   res.sceneID,
			Seed:      cfg.Seed,
			Layers:    cfg.Layers,
			Intensity: res.values.Intensity,
			Frozen:    res.values.Frozen,
			Metrics: map[string]float64{
				"spawned":  float64(res.stats.Spawned()),
				"expected": res.expected,
				"rate":     res.stats.Value(),
				"peak":     float64(res.stats.Peak()),
			},
		}, res.history)
		if err != nil {
			return err
		}
		fmt.Printf("saved run %s\n", id)
	}
	return nil
}

// benchLevels runs every intensity level on its own scene concurrently.
func benchLevels(cmd *cobra.Command, cfg *config.Config, n int, wall time.Duration) ([]benchResult, error) {
	results := make([]benchResult, len(levels))
	errs := make([]error, len(levels))

	var wg sync.WaitGroup
	for i, level := range levels {
		wg.Add(1)
		go func(idx int, level float64) {
			defer wg.Done()

			c := *cfg
			c.Intensity = level
			results[idx], errs[idx] = benchLevel(cmd, &c, n, wall)
		}(i, level)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// benchLevel runs one scene either for n frames as fast as possible or, when
// wall is set, on a real-time frame loop for that long.
func benchLevel(cmd *cobra.Command, cfg *config.Config, n int, wall time.Duration) (benchResult, error) {
	stats := metrics.NewPulses(metrics.DefaultHistory)
	scene, _, err := newScene(cfg, stderrLogger(), render.WithObserver(stats))
	if err != nil {
		return benchResult{}, err
	}
	defer scene.Close()

	if err := mount(cmd, scene, &render.Recorder{}); err != nil {
		return benchResult{}, err
	}

	var history []render.FrameStats
	frame := func() bool {
		fs := scene.Frame()
		if saveRun {
			history = append(history, fs)
		}
		return true
	}

	start := time.Now()
	if wall > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), wall)
		defer cancel()
		loop := render.NewLoop(cfg.FPS, frame)
		if !loop.Start(ctx) {
			return benchResult{}, fmt.Errorf("frame loop did not start")
		}
		<-ctx.Done()
		loop.Stop()
	} else {
		for range n {
			frame()
		}
	}
	elapsed := time.Since(start)

	v := scene.Params().Values()
	edges := graph.EdgeCount(scene.Nodes())
	return benchResult{
		values:   v,
		edges:    edges,
		frames:   int(stats.Frames()),
		expected: float64(stats.Frames()) * float64(edges) * cfg.Tuning.SpawnProbability(v),
		stats:    stats,
		history:  history,
		elapsed:  elapsed,
		sceneID:  scene.ID().String(),
	}, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.NewRuns(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tLAYERS\tINTENSITY\tFRAMES\tSPAWNED\tRATE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%v\t%.2f\t%d\t%.0f\t%.5f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Layers,
			run.Intensity,
			run.Frames,
			run.Metrics["spawned"],
			run.Metrics["rate"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	runs := store.NewRuns(dataDir)
	meta, err := runs.Load(runID)
	if err != nil {
		return err
	}
	live, err := runs.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(live) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.SceneID)
	fmt.Printf("frames: %d\n\n", len(live))
	fmt.Println(asciigraph.Plot(live,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("live pulses at intensity %.2f", meta.Intensity)),
	))
	return nil
}
