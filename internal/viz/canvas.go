package viz

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/synapse/internal/geom"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille surface: every terminal cell holds 2x4 dots and one
// composited color.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]color.NRGBA

	scale   float64
	density float64
	bg      color.NRGBA
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{scale: 2, density: 1, bg: color.NRGBA{A: 255}}
	c.alloc(w, h)
	return c
}

func (c *Canvas) alloc(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Colors = make([][]color.NRGBA, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]color.NRGBA, w)
	}
	c.Clear()
}

// SetDensity sets how many device pixels share one braille dot. It applies
// from the next Resize.
func (c *Canvas) SetDensity(d float64) {
	if d <= 0 {
		d = 1
	}
	c.density = d
}

// SetBackground sets the color partial alpha is composited over.
func (c *Canvas) SetBackground(bg color.NRGBA) { c.bg = bg }

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return false
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	return true
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = c.bg
		}
	}
}

// line walks a Bresenham line, calling plot for every sub-pixel.
func (c *Canvas) line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Resize reallocates the grid so that width x height logical pixels at scale
// fill it. One logical pixel maps to scale/density sub-pixels.
func (c *Canvas) Resize(width, height, scale float64) {
	if scale <= 0 {
		scale = 2
	}
	c.scale = scale / c.density
	cols := int(math.Ceil(width * c.scale / 2))
	rows := int(math.Ceil(height * c.scale / 4))
	if cols == c.Width && rows == c.Height {
		return
	}
	c.alloc(cols, rows)
}

func (c *Canvas) sub(p geom.Point) (int, int) {
	return int(math.Round(p.X * c.scale)), int(math.Round(p.Y * c.scale))
}

// StrokeLine ignores width: a braille dot is already the thinnest mark.
func (c *Canvas) StrokeLine(a, b geom.Point, _ float64, col color.NRGBA) {
	x0, y0 := c.sub(a)
	x1, y1 := c.sub(b)
	lastCol, lastRow := -1, -1
	c.line(x0, y0, x1, y1, func(x, y int) {
		if !c.Set(x, y) {
			return
		}
		// tint each cell once per stroke
		cx, cy := x/2, y/4
		if cx == lastCol && cy == lastRow {
			return
		}
		lastCol, lastRow = cx, cy
		c.tint(cx, cy, col)
	})
}

func (c *Canvas) FillCircle(center geom.Point, radius float64, col color.NRGBA) {
	cx, cy := center.X*c.scale, center.Y*c.scale
	r := radius * c.scale
	r2 := r * r
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))

	touched := make(map[[2]int]struct{})
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy > r2 {
				continue
			}
			if c.Set(x, y) {
				touched[[2]int{x / 2, y / 4}] = struct{}{}
			}
		}
	}
	// tiny circles can miss every dot center; keep at least one dot
	if len(touched) == 0 {
		x, y := int(cx), int(cy)
		if c.Set(x, y) {
			touched[[2]int{x / 2, y / 4}] = struct{}{}
		}
	}
	for cell := range touched {
		c.tint(cell[0], cell[1], col)
	}
}

// tint composites col over the cell. Terminal cells have no partial
// coverage, so alpha is lifted to keep faint strokes visible.
func (c *Canvas) tint(col, row int, src color.NRGBA) {
	a := math.Sqrt(float64(src.A) / 255)
	dst := c.Colors[row][col]
	mix := func(s, d uint8) uint8 {
		return uint8(float64(s)*a + float64(d)*(1-a) + 0.5)
	}
	c.Colors[row][col] = color.NRGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: 255,
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render returns the canvas with per-cell foreground colors. Runs of equal
// color share one style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] && (row[j] == blank) == (row[start] == blank) {
				continue
			}
			run := string(row[start:j])
			if row[start] == blank {
				b.WriteString(run)
			} else {
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexOf(c.Colors[i][start])))
				b.WriteString(style.Render(run))
			}
			start = j
		}
		if i < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
