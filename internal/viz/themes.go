package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/synapse/internal/render"
)

// Theme defines the scene palette and the sidebar colors.
type Theme struct {
	Name       string
	Edge       lipgloss.Color
	Node       lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
}

// Available themes
var (
	ThemeCyan = Theme{
		Name:       "cyan",
		Edge:       lipgloss.Color("#78dcff"),
		Node:       lipgloss.Color("#ffffff"),
		Primary:    lipgloss.Color("#22d3ee"),
		Accent:     lipgloss.Color("#a855f7"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#e0f7ff"),
		Muted:      lipgloss.Color("#4a6a78"),
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Edge:       lipgloss.Color("#00cc00"), // Green phosphor
		Node:       lipgloss.Color("#88ff88"),
		Primary:    lipgloss.Color("#00ff00"),
		Accent:     lipgloss.Color("#ffff00"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Edge:       lipgloss.Color("#cccccc"),
		Node:       lipgloss.Color("#ffffff"),
		Primary:    lipgloss.Color("#ffffff"),
		Accent:     lipgloss.Color("#0088ff"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#888888"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Edge:       lipgloss.Color("#00a8cc"),
		Node:       lipgloss.Color("#e0f0ff"),
		Primary:    lipgloss.Color("#0077be"), // Ocean blue
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4488aa"),
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Edge:       lipgloss.Color("#feca57"),
		Node:       lipgloss.Color("#fff5f5"),
		Primary:    lipgloss.Color("#ff6b6b"), // Coral
		Accent:     lipgloss.Color("#ff9ff3"),
		Background: lipgloss.Color("#2d1b2e"),
		Text:       lipgloss.Color("#fff5f5"),
		Muted:      lipgloss.Color("#8b6b8c"),
	}

	// All available themes
	Themes = []Theme{
		ThemeCyan,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return ThemeCyan, false
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Next returns the theme after t, wrapping around.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// Palette converts the theme into scene colors. Node opacity stays at the
// scene default.
func (t Theme) Palette() render.Palette {
	def := render.DefaultPalette()
	return render.Palette{
		Edge:    toNRGBA(t.Edge, 255),
		Node:    toNRGBA(t.Node, def.Node.A),
		Primary: toNRGBA(t.Primary, 255),
		Accent:  toNRGBA(t.Accent, 255),
	}
}

func (t Theme) BackgroundColor() color.NRGBA { return toNRGBA(t.Background, 255) }

func toNRGBA(c lipgloss.Color, a uint8) color.NRGBA {
	r, g, b := parseHex(string(c))
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: a}
}
