// Package debug captures the window framebuffer to disk.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capturer writes RGBA framebuffer reads as timestamped PNG files.
type Capturer struct {
	Dir    string
	Prefix string
}

func NewCapturer(dir, prefix string) *Capturer {
	return &Capturer{Dir: dir, Prefix: prefix}
}

// Capture encodes pixels, read bottom row first as glReadPixels returns
// them, and returns the written path.
func (c *Capturer) Capture(pixels []byte, width, height int, at time.Time) (string, error) {
	img, err := FramebufferImage(pixels, width, height)
	if err != nil {
		return "", err
	}
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return "", fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	path := filepath.Join(c.Dir, c.filename(at))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close screenshot: %w", err)
	}
	return path, nil
}

func (c *Capturer) filename(at time.Time) string {
	// milliseconds keep two captures in one second apart
	return fmt.Sprintf("%s_%s.png", c.Prefix, at.Format("2006-01-02_15-04-05.000"))
}

// FramebufferImage flips a bottom-up RGBA read into a top-down image.
func FramebufferImage(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}
