// Package raster draws scenes into in-memory RGBA images for PNG and GIF
// output.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/san-kum/synapse/internal/geom"
)

// Image is an anti-aliased software Surface backed by an *image.NRGBA.
type Image struct {
	img   *image.NRGBA
	scale float64
	bg    color.NRGBA
}

func New(bg color.NRGBA) *Image {
	return &Image{img: image.NewNRGBA(image.Rect(0, 0, 0, 0)), scale: 1, bg: bg}
}

func (m *Image) Resize(width, height, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	m.scale = scale
	w := int(math.Ceil(width * scale))
	h := int(math.Ceil(height * scale))
	if b := m.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	m.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	m.Clear()
}

func (m *Image) Clear() {
	p := m.img.Pix
	for i := 0; i+3 < len(p); i += 4 {
		p[i], p[i+1], p[i+2], p[i+3] = m.bg.R, m.bg.G, m.bg.B, m.bg.A
	}
}

// StrokeLine draws a Wu anti-aliased line. Widths above one device pixel
// are drawn as parallel passes.
func (m *Image) StrokeLine(a, b geom.Point, width float64, c color.NRGBA) {
	w := width * m.scale
	passes := int(math.Max(1, math.Round(w)))
	alpha := float64(c.A) / 255
	if passes == 1 && w < 1 {
		alpha *= w
	}

	x0, y0 := a.X*m.scale, a.Y*m.scale
	x1, y1 := b.X*m.scale, b.Y*m.scale
	nx, ny := normal(x1-x0, y1-y0)
	for i := 0; i < passes; i++ {
		off := float64(i) - float64(passes-1)/2
		m.wu(x0+nx*off, y0+ny*off, x1+nx*off, y1+ny*off, c, alpha)
	}
}

func normal(dx, dy float64) (float64, float64) {
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	return -dy / l, dx / l
}

func (m *Image) wu(x0, y0, x1, y1 float64, c color.NRGBA, alpha float64) {
	steep := math.Abs(y1-y0) > math.Abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	plot := func(x, y int, cov float64) {
		if steep {
			x, y = y, x
		}
		m.blend(x, y, c, alpha*cov)
	}

	dx := x1 - x0
	grad := 1.0
	if dx != 0 {
		grad = (y1 - y0) / dx
	}
	y := y0 + grad*(math.Round(x0)-x0)
	for x := int(math.Round(x0)); x <= int(math.Round(x1)); x++ {
		fy := math.Floor(y)
		frac := y - fy
		plot(x, int(fy), 1-frac)
		plot(x, int(fy)+1, frac)
		y += grad
	}
}

// FillCircle fills a disc with a one-pixel soft edge.
func (m *Image) FillCircle(center geom.Point, radius float64, c color.NRGBA) {
	cx, cy := center.X*m.scale, center.Y*m.scale
	r := radius * m.scale
	alpha := float64(c.A) / 255
	x0, x1 := int(math.Floor(cx-r-1)), int(math.Ceil(cx+r+1))
	y0, y1 := int(math.Floor(cy-r-1)), int(math.Ceil(cy+r+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			cov := math.Max(0, math.Min(1, r+0.5-d))
			if cov > 0 {
				m.blend(x, y, c, alpha*cov)
			}
		}
	}
}

// blend composites c at alpha a over the pixel at (x, y).
func (m *Image) blend(x, y int, c color.NRGBA, a float64) {
	if a <= 0 || !(image.Point{X: x, Y: y}).In(m.img.Rect) {
		return
	}
	if a > 1 {
		a = 1
	}
	i := m.img.PixOffset(x, y)
	p := m.img.Pix[i : i+4 : i+4]
	da := float64(p[3]) / 255
	oa := a + da*(1-a)
	if oa == 0 {
		return
	}
	mix := func(s, d uint8) uint8 {
		return uint8((float64(s)*a+float64(d)*da*(1-a))/oa + 0.5)
	}
	p[0] = mix(c.R, p[0])
	p[1] = mix(c.G, p[1])
	p[2] = mix(c.B, p[2])
	p[3] = uint8(oa*255 + 0.5)
}

// NRGBA returns the backing image. It is reused across frames.
func (m *Image) NRGBA() *image.NRGBA { return m.img }

func (m *Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, m.img)
}
