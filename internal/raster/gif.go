package raster

import (
	"errors"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"
)

var ErrNoFrames = errors.New("raster: no frames recorded")

// Animation accumulates quantized frames for an animated GIF. Every frame
// has the size of the first one; later frames of another size are centered,
// cropped or padded with the image background.
type Animation struct {
	// Delay per frame in hundredths of a second.
	Delay  int
	bounds image.Rectangle
	frames []*image.Paletted
}

func NewAnimation(fps int) *Animation {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	return &Animation{Delay: delay}
}

// Capture quantizes the image's current frame and appends it. Empty images
// are skipped.
func (a *Animation) Capture(img *Image) {
	src := img.NRGBA()
	if src == nil || src.Rect.Empty() {
		return
	}
	if len(a.frames) == 0 {
		a.bounds = src.Rect
	}

	dst := image.NewPaletted(a.bounds, palette.Plan9)
	if src.Rect.Size() != a.bounds.Size() {
		draw.Draw(dst, a.bounds, image.NewUniform(img.bg), image.Point{}, draw.Src)
	}
	off := image.Pt(
		a.bounds.Min.X+(a.bounds.Dx()-src.Rect.Dx())/2-src.Rect.Min.X,
		a.bounds.Min.Y+(a.bounds.Dy()-src.Rect.Dy())/2-src.Rect.Min.Y,
	)
	r := src.Rect.Add(off).Intersect(a.bounds)
	draw.FloydSteinberg.Draw(dst, r, src, r.Min.Sub(off))
	a.frames = append(a.frames, dst)
}

func (a *Animation) Len() int { return len(a.frames) }

// Bounds is the frame size fixed by the first capture.
func (a *Animation) Bounds() image.Rectangle { return a.bounds }

func (a *Animation) Encode(w io.Writer) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range a.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, a.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the animation to path.
func (a *Animation) Save(path string) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
