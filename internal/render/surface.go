package render

import (
	"image/color"

	"github.com/san-kum/synapse/internal/geom"
)

// Surface is a 2D drawing target in logical pixels. Implementations map
// logical coordinates to their backing store using the scale passed to Resize.
// Drawing calls are assumed infallible.
type Surface interface {
	// Resize sets the logical size; the backing store is width*scale by
	// height*scale.
	Resize(width, height, scale float64)
	Clear()
	StrokeLine(a, b geom.Point, width float64, c color.NRGBA)
	FillCircle(center geom.Point, radius float64, c color.NRGBA)
}

// Palette is the set of colors a scene draws with. Edge alpha is overridden
// per frame; Node alpha is the base node opacity.
type Palette struct {
	Edge    color.NRGBA
	Node    color.NRGBA
	Primary color.NRGBA
	Accent  color.NRGBA
}

func DefaultPalette() Palette {
	return Palette{
		Edge:    color.NRGBA{R: 120, G: 220, B: 255, A: 255},
		Node:    color.NRGBA{R: 255, G: 255, B: 255, A: 230},
		Primary: color.NRGBA{R: 0x22, G: 0xd3, B: 0xee, A: 255},
		Accent:  color.NRGBA{R: 0xa8, G: 0x55, B: 0xf7, A: 255},
	}
}

// WithAlpha returns c with alpha a in [0, 1], clamped.
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}

// Recorder is a Surface that only records what it is asked to draw.
type Recorder struct {
	Width, Height, Scale float64

	Lines   []Line
	Circles []Circle
	Clears  int
	Resizes int
}

type Line struct {
	A, B  geom.Point
	Width float64
	Color color.NRGBA
}

type Circle struct {
	Center geom.Point
	Radius float64
	Color  color.NRGBA
}

func (r *Recorder) Resize(width, height, scale float64) {
	r.Width, r.Height, r.Scale = width, height, scale
	r.Resizes++
}

func (r *Recorder) Clear() {
	r.Lines = r.Lines[:0]
	r.Circles = r.Circles[:0]
	r.Clears++
}

func (r *Recorder) StrokeLine(a, b geom.Point, width float64, c color.NRGBA) {
	r.Lines = append(r.Lines, Line{A: a, B: b, Width: width, Color: c})
}

func (r *Recorder) FillCircle(center geom.Point, radius float64, c color.NRGBA) {
	r.Circles = append(r.Circles, Circle{Center: center, Radius: radius, Color: c})
}
