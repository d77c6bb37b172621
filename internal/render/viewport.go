package render

import "math"

// MinPixelRatio keeps rendering crisp on low-density displays.
const MinPixelRatio = 2.0

// Viewport is the logical surface size plus the device pixel ratio the host
// reported for it.
type Viewport struct {
	Width       float64
	Height      float64
	DeviceRatio float64
}

// Valid reports whether v describes a drawable area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 &&
		!math.IsNaN(v.Width) && !math.IsNaN(v.Height) &&
		!math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0)
}

// Scale is the backing-store scale for v.
func (v Viewport) Scale() float64 { return PixelRatio(v.DeviceRatio) }

// PixelRatio clamps a reported device ratio to at least MinPixelRatio.
// Missing or non-positive ratios count as 1.
func PixelRatio(device float64) float64 {
	if device <= 0 || math.IsNaN(device) {
		device = 1
	}
	return math.Max(device, MinPixelRatio)
}
