package export

import (
	"image"
	"image/color/palette"
	"image/gif"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// WriteGIF encodes every frame of src as a looping animated GIF.
func WriteGIF(w io.Writer, src FrameSource, opts Options) error {
	n := src.Len()
	if n == 0 {
		return ErrNoFrames
	}
	delay := max(1, 100/opts.fps())
	anim := gif.GIF{LoopCount: 0}
	for i := 0; i < n; i++ {
		img, err := opts.frame(src, i)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, quantize(img))
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

// SaveGIF writes the animation to path.
func SaveGIF(path string, src FrameSource, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteGIF(f, src, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func quantize(img image.Image) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), palette.Plan9)
	xdraw.FloydSteinberg.Draw(out, img.Bounds(), img, img.Bounds().Min)
	return out
}
