package export

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// WriteAVI encodes every frame of src as JPEG into a Motion-JPEG AVI at
// path. All frames take the size of the first.
func WriteAVI(path string, src FrameSource, opts Options) (err error) {
	n := src.Len()
	if n == 0 {
		return ErrNoFrames
	}
	first, err := opts.frame(src, 0)
	if err != nil {
		return err
	}
	size := first.Bounds()

	aw, err := mjpeg.New(path, int32(size.Dx()), int32(size.Dy()), int32(opts.fps()))
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer func() {
		if cerr := aw.Close(); err == nil {
			err = cerr
		}
	}()

	var buf bytes.Buffer
	jopts := &jpeg.Options{Quality: opts.quality()}
	for i := 0; i < n; i++ {
		img := first
		if i > 0 {
			if img, err = opts.frame(src, i); err != nil {
				return err
			}
			if img.Bounds() != size {
				img = Scale(img, size.Dx())
			}
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, img, jopts); err != nil {
			return fmt.Errorf("export: encode frame %d: %w", i, err)
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			return fmt.Errorf("export: write frame %d: %w", i, err)
		}
	}
	return nil
}
