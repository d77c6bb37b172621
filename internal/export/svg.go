package export

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/san-kum/synapse/internal/geom"
	"github.com/san-kum/synapse/internal/viz"
)

// SVG is a Surface that records one frame as SVG elements. Clear drops the
// elements of the previous frame.
type SVG struct {
	width, height float64
	scale         float64
	background    color.NRGBA
	elems         []string
}

func NewSVG(bg color.NRGBA) *SVG {
	return &SVG{scale: 1, background: bg}
}

func (s *SVG) Resize(width, height, scale float64) {
	s.width, s.height, s.scale = width, height, scale
}

func (s *SVG) Clear() { s.elems = s.elems[:0] }

func (s *SVG) StrokeLine(a, b geom.Point, width float64, c color.NRGBA) {
	s.elems = append(s.elems, fmt.Sprintf(
		`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`,
		a.X, a.Y, b.X, b.Y, rgba(c), width))
}

func (s *SVG) FillCircle(center geom.Point, radius float64, c color.NRGBA) {
	s.elems = append(s.elems, fmt.Sprintf(
		`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`,
		center.X, center.Y, radius, rgba(c)))
}

// Len is the number of elements in the current frame.
func (s *SVG) Len() int { return len(s.elems) }

// String renders the frame. The document is sized in device pixels with a
// logical viewBox.
func (s *SVG) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, s.width*s.scale, s.height*s.scale, s.width, s.height, rgba(s.background)))

	for _, e := range s.elems {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func rgba(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}

// CanvasToSVG converts a Braille canvas to SVG format, one dot per set
// sub-pixel in its cell color.
func CanvasToSVG(canvas *viz.Canvas, scale float64, bg color.NRGBA) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, rgba(bg)))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			fill := rgba(canvas.Colors[row][col])

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
