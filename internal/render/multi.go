package render

import (
	"image/color"
	"slices"

	"github.com/san-kum/synapse/internal/geom"
)

// Multi fans drawing out to several surfaces. Surfaces added after the first
// Resize are sized immediately so they join at the next frame.
type Multi struct {
	surfaces []Surface

	width, height, scale float64
	sized                bool
}

func NewMulti(surfaces ...Surface) *Multi {
	own := slices.DeleteFunc(slices.Clone(surfaces), func(s Surface) bool { return s == nil })
	return &Multi{surfaces: own}
}

func (m *Multi) Add(s Surface) {
	if s == nil {
		return
	}
	m.surfaces = append(m.surfaces, s)
	if m.sized {
		s.Resize(m.width, m.height, m.scale)
	}
}

// Remove drops s. It reports whether s was attached.
func (m *Multi) Remove(s Surface) bool {
	i := slices.Index(m.surfaces, s)
	if i < 0 {
		return false
	}
	m.surfaces = slices.Delete(m.surfaces, i, i+1)
	return true
}

func (m *Multi) Len() int { return len(m.surfaces) }

func (m *Multi) Resize(width, height, scale float64) {
	m.width, m.height, m.scale, m.sized = width, height, scale, true
	for _, s := range m.surfaces {
		s.Resize(width, height, scale)
	}
}

func (m *Multi) Clear() {
	for _, s := range m.surfaces {
		s.Clear()
	}
}

func (m *Multi) StrokeLine(a, b geom.Point, width float64, c color.NRGBA) {
	for _, s := range m.surfaces {
		s.StrokeLine(a, b, width, c)
	}
}

func (m *Multi) FillCircle(center geom.Point, radius float64, c color.NRGBA) {
	for _, s := range m.surfaces {
		s.FillCircle(center, radius, c)
	}
}
