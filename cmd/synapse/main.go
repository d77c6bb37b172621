package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/synapse/internal/config"
	"github.com/san-kum/synapse/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	intensity float64
	frozen    bool
	seed      uint64
	frameRate int
	themeName string
	layers    []int
	edgeProb  float64
	shimmer   float64

	logFile  string
	gifPath  string
	saveRun  bool
	realtime string
	levels   []float64
)

// main runs the synapse CLI and exits with status 1 if the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers the synapse commands; with no subcommand the root
// opens the live terminal view.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "synapse",
		Short:        "animated signal pulses on a layered network",
		RunE:         runLive,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".synapse", "data directory for saved runs")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log scene events to stderr")
	rootCmd.PersistentFlags().Float64Var(&intensity, "intensity", 0, "activity level (0 idle, 1 busy)")
	rootCmd.PersistentFlags().BoolVar(&frozen, "frozen", false, "start frozen")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	rootCmd.PersistentFlags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", config.DefaultTheme, "color theme")
	rootCmd.PersistentFlags().IntSliceVar(&layers, "layers", nil, "nodes per layer, e.g. 12,16,16,10")
	rootCmd.PersistentFlags().Float64Var(&edgeProb, "edge-prob", 0.35, "connection probability between adjacent layers")
	rootCmd.PersistentFlags().Float64Var(&shimmer, "shimmer", 0, "node brightness noise in [0, 1]")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().StringVar(&logFile, "log", "", "write logs to this file")
		c.Flags().StringVar(&gifPath, "gif", viz.DefaultGIFPath, "output path for G recordings")
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render frames to an animated GIF or a PNG",
		RunE:  runRender,
	}
	renderCmd.Flags().StringP("out", "o", "synapse.gif", "output file (.gif or .png)")
	renderCmd.Flags().Int("frames", 120, "frames to record")
	renderCmd.Flags().Int("warmup", 60, "frames to run before recording")
	sizeFlags(renderCmd)

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render one frame as SVG",
		RunE:  runSVG,
	}
	svgCmd.Flags().StringP("out", "o", "synapse.svg", "output file (- for stdout)")
	svgCmd.Flags().Int("warmup", 120, "frames to run before the snapshot")
	svgCmd.Flags().Bool("braille", false, "draw through the terminal braille canvas")
	sizeFlags(svgCmd)

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "export the generated network as JSON",
		RunE:  runGraph,
	}
	graphCmd.Flags().StringP("out", "o", "-", "output file (- for stdout)")
	graphCmd.Flags().String("in", "", "check and summarize an exported snapshot instead")
	sizeFlags(graphCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run the simulation headless and report pulse statistics",
		RunE:  runBench,
	}
	benchCmd.Flags().Int("frames", 10000, "frames per intensity level")
	benchCmd.Flags().Float64SliceVar(&levels, "levels", []float64{0, 0.5, 1, 1.5}, "intensity levels to run")
	benchCmd.Flags().StringVar(&realtime, "realtime", "", "run the frame loop in real time for this duration instead (e.g. 5s)")
	benchCmd.Flags().BoolVar(&saveRun, "save", false, "save per-frame stats to the data directory")
	sizeFlags(benchCmd)

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved bench runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the live pulse count of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %-8s %s\n", p, config.DescribePreset(p))
			}
			return nil
		},
	}

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "list color themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range viz.Themes {
				fmt.Printf("  %s\n", viz.GradientText(t.Name, t.Primary, t.Accent))
			}
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, renderCmd, svgCmd, graphCmd, benchCmd, runsCmd, plotCmd, presetsCmd, themesCmd)
	return rootCmd
}

func sizeFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("width", 800, "logical width")
	cmd.Flags().Float64("height", 600, "logical height")
	cmd.Flags().Float64("dpr", 1, "device pixel ratio")
}

// resolveConfig layers the configuration: defaults, then the config file,
// then SYNAPSE_* variables, then the preset, then flags the user set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if preset != "" && !config.ApplyPreset(cfg, preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	flags := cmd.Flags()
	if flags.Changed("intensity") {
		cfg.Intensity = intensity
	}
	if flags.Changed("frozen") {
		cfg.Frozen = frozen
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("layers") {
		cfg.Layers = layers
	}
	if flags.Changed("edge-prob") {
		cfg.EdgeProbability = edgeProb
	}
	if flags.Changed("shimmer") {
		cfg.Shimmer = shimmer
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, ok := viz.GetTheme(cfg.Theme); !ok {
		return nil, fmt.Errorf("unknown theme: %s (available: %v)", cfg.Theme, viz.ThemeNames())
	}
	return cfg, nil
}

func stderrLogger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "synapse: ", log.LstdFlags)
}
