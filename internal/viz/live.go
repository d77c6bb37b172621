package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/synapse/internal/metrics"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/raster"
	"github.com/san-kum/synapse/internal/render"
)

const (
	sidebarWidth = 40

	// CellDensity is the number of device pixels per braille dot.
	CellDensity = 4

	defaultWidth  = 80
	defaultHeight = 24

	IntensityStep  = 0.1
	BoostIntensity = 1.5

	maxRecordFrames = 900
	DefaultGIFPath  = "synapse.gif"
)

type TickMsg time.Time

// Options configures the live model.
type Options struct {
	FPS     int
	Theme   Theme
	GIFPath string
}

// Model drives a scene from the bubbletea update loop: every tick draws one
// frame onto the braille canvas and, while recording, onto a raster image.
type Model struct {
	scene  *render.Scene
	params *param.Controller
	stats  *metrics.Pulses

	canvas  *Canvas
	surface *render.Multi
	theme   Theme
	fps     int

	width, height int
	last          render.FrameStats

	boosted   bool
	unboosted float64
	recording bool
	rec       *raster.Image
	anim      *raster.Animation
	gifPath   string
	notice    string
	showHelp  bool
}

// NewModel mounts scene on a fresh canvas. It fails with render.ErrNoSurface
// if the scene refuses the mount.
func NewModel(scene *render.Scene, opts Options) (Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = render.DefaultFPS
	}
	if opts.Theme.Name == "" {
		opts.Theme = ThemeCyan
	}
	if opts.GIFPath == "" {
		opts.GIFPath = DefaultGIFPath
	}

	canvas := NewCanvas(0, 0)
	canvas.SetDensity(CellDensity)
	canvas.SetBackground(opts.Theme.BackgroundColor())

	m := Model{
		scene:   scene,
		params:  scene.Params(),
		stats:   metrics.NewPulses(metrics.DefaultHistory),
		canvas:  canvas,
		surface: render.NewMulti(canvas),
		theme:   opts.Theme,
		fps:     opts.FPS,
		width:   defaultWidth,
		height:  defaultHeight,
		gifPath: opts.GIFPath,
	}
	scene.SetPalette(m.theme.Palette())

	w, h := m.logicalSize()
	if !scene.Mount(m.surface, w, h, 1) {
		return Model{}, render.ErrNoSurface
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// canvasSize is the canvas area in terminal cells.
func (m Model) canvasSize() (cols, rows int) {
	cols = max(1, m.width-sidebarWidth)
	rows = max(1, m.height-1)
	return cols, rows
}

// logicalSize maps the canvas area to scene pixels at device ratio 1.
func (m Model) logicalSize() (float64, float64) {
	cols, rows := m.canvasSize()
	return float64(cols * CellDensity), float64(rows * 2 * CellDensity)
}

// Update handles input events and draws frames.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.logicalSize()
		m.scene.Resize(w, h, 1)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.stopRecording()
			}
			m.scene.Close()
			return m, tea.Quit
		case " ":
			m.params.ToggleFrozen()
		case "+", "=":
			m.params.AddIntensity(IntensityStep)
		case "-", "_":
			m.params.AddIntensity(-IntensityStep)
		case "b":
			if m.boosted {
				m.params.SetIntensity(m.unboosted)
			} else {
				m.unboosted = m.params.Intensity()
				m.params.SetIntensity(BoostIntensity)
			}
			m.boosted = !m.boosted
		case "r":
			m.scene.Regenerate()
			m.stats.Reset()
		case "t":
			m.theme = m.theme.Next()
			m.scene.SetPalette(m.theme.Palette())
			m.canvas.SetBackground(m.theme.BackgroundColor())
		case "g":
			if m.recording {
				m.stopRecording()
			} else {
				m.startRecording()
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.scene.Closed() {
			return m, nil
		}
		m.last = m.scene.Frame()
		m.stats.OnFrame(m.last)
		if m.recording {
			m.anim.Capture(m.rec)
			if m.anim.Len() >= maxRecordFrames {
				m.stopRecording()
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) startRecording() {
	m.rec = raster.New(m.theme.BackgroundColor())
	m.anim = raster.NewAnimation(m.fps)
	m.surface.Add(m.rec)
	m.recording = true
	m.notice = ""
}

func (m *Model) stopRecording() {
	m.surface.Remove(m.rec)
	m.recording = false
	if err := m.anim.Save(m.gifPath); err != nil {
		m.notice = fmt.Sprintf("gif: %v", err)
	} else {
		m.notice = fmt.Sprintf("saved %s (%d frames)", m.gifPath, m.anim.Len())
	}
	m.rec, m.anim = nil, nil
}

// Theme returns the active theme.
func (m Model) Theme() Theme { return m.theme }

func (m Model) Recording() bool { return m.recording }

func (m Model) Notice() string { return m.notice }

func (m Model) Canvas() *Canvas { return m.canvas }

func (m Model) Stats() *metrics.Pulses { return m.stats }

func (m Model) View() string {
	v := m.params.Values()
	title := lipgloss.NewStyle().Foreground(m.theme.Primary)
	over := lipgloss.NewStyle().Foreground(m.theme.Accent)

	var s strings.Builder
	s.WriteString(GradientText("SYNAPSE", m.theme.Primary, m.theme.Accent) + "\n\n")

	status := StatusRunning.Render("RUNNING")
	if v.Frozen {
		status = StatusFrozen.Render("FROZEN")
	}
	if m.recording {
		status += "  " + StatusRecording.Render(fmt.Sprintf("REC %d", m.anim.Len()))
	}
	s.WriteString(status + "\n\n")

	s.WriteString(labelStyle.Render("Intensity") +
		LevelBar(v.Intensity, BoostIntensity, 12, title, over) +
		valueStyle.Render(fmt.Sprintf(" %.2f", v.Intensity)) + "\n")
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Nodes", fmt.Sprintf("%d", m.last.Nodes))
	row("Edges", fmt.Sprintf("%d", m.last.Edges))
	row("Live", fmt.Sprintf("%d (peak %d)", m.last.Live, m.stats.Peak()))
	row("Spawned", fmt.Sprintf("%d", m.stats.Spawned()))
	row("Retired", fmt.Sprintf("%d", m.stats.Retired()))
	row("Rate", fmt.Sprintf("%.5f/edge", m.stats.Value()))
	row("Gen", fmt.Sprintf("%d", m.last.Generation))
	row("Theme", m.theme.Name)

	if hist := m.stats.History(); len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(sidebarWidth-14), asciigraph.Caption("live pulses"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.notice != "" {
		s.WriteString("\n" + valueStyle.Render(m.notice) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Freeze +/-:Intensity B:Boost\nR:Regen T:Theme G:Record\n?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.Render(), sidebarStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Freeze/Resume pulses     ║
║  + / -    - Intensity up/down (0.1)  ║
║  B        - Toggle boost (1.5)       ║
║  R        - Regenerate network       ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// RunLive runs the interactive view until the user quits. The scene is closed
// on return.
func RunLive(scene *render.Scene, opts Options) error {
	defer scene.Close()
	m, err := NewModel(scene, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
