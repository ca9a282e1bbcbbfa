// Package export encodes rendered animation frames to GIF and Motion-JPEG
// AVI files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrNoFrames = errors.New("export: no frames")

// FrameSource renders the frames of an animation on demand.
type FrameSource interface {
	Len() int
	Render(i int) (image.Image, error)
}

// Options control encoding. Zero values select the defaults.
type Options struct {
	FPS int
	// Width scales frames to this many pixels wide, keeping the aspect
	// ratio. Zero keeps the rendered size.
	Width int
	// Quality is the JPEG quality used for AVI frames (1-100).
	Quality int
	// Stamp, when set, labels frame i in its top-left corner.
	Stamp func(i int) string
}

func (o Options) fps() int {
	if o.FPS <= 0 {
		return 10
	}
	return o.FPS
}

func (o Options) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return 90
	}
	return o.Quality
}

// frame renders frame i and applies scaling and the stamp.
func (o Options) frame(src FrameSource, i int) (*image.RGBA, error) {
	img, err := src.Render(i)
	if err != nil {
		return nil, fmt.Errorf("export: render frame %d: %w", i, err)
	}
	out := Scale(img, o.Width)
	if o.Stamp != nil {
		if label := o.Stamp(i); label != "" {
			Stamp(out, label)
		}
	}
	return out, nil
}

// Scale returns img resized to width pixels wide as RGBA. A width of zero
// or the current width copies the image unchanged.
func Scale(img image.Image, width int) *image.RGBA {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() {
		out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
		return out
	}
	height := max(1, b.Dy()*width/b.Dx())
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}

// Stamp writes label in the top-left corner of img.
func Stamp(img *image.RGBA, label string) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, label).Ceil()
	box := image.Rect(2, 2, 2+w+6, 2+face.Height+4)
	xdraw.Draw(img, box, image.NewUniform(color.RGBA{255, 255, 255, 200}), image.Point{}, xdraw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(box.Min.X+3, box.Min.Y+2+face.Ascent),
	}
	d.DrawString(label)
}
