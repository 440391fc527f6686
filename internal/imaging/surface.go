package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/ironsheep/canvas-heightmap/internal/pixels"
)

// ErrInvalidRegion is returned for a region with a negative width or
// height, or one too large to read.
var ErrInvalidRegion = errors.New("invalid region")

// MaxReadPixels caps the pixel count of a single ReadPixels call (1 GiB of
// RGBA).
const MaxReadPixels = 1 << 28

// RenderOptions controls how a source is drawn onto a surface.
type RenderOptions struct {
	// Smooth is the radius of a Gaussian blur applied while drawing.
	// Zero draws the source unchanged.
	Smooth float64
}

// Surface is an off-screen drawing surface holding non-premultiplied RGBA
// pixels. Its origin is always (0,0).
type Surface struct {
	img *image.NRGBA
}

// NewSurface creates a transparent black surface of the given size.
func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Render draws src at (0,0) onto a new surface sized to src.
func Render(src image.Image, opts RenderOptions) *Surface {
	b := src.Bounds()
	if opts.Smooth <= 0 {
		// Clone keeps non-premultiplied sources exact.
		return &Surface{img: imaging.Clone(src)}
	}

	s := NewSurface(b.Dx(), b.Dy())
	blurred := blur.Gaussian(src, opts.Smooth)
	draw.Draw(s.img, s.img.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
	return s
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	return s.img.Bounds().Dy()
}

// Bounds returns the surface rectangle.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Image returns the surface pixels. Callers must not modify it.
func (s *Surface) Image() *image.NRGBA {
	return s.img
}

// ReadPixels copies region r into a new buffer of exactly 4*r.W*r.H bytes.
//
// Pixels of r outside the surface are transparent black (0,0,0,0).
// Regions with a negative size, more than MaxReadPixels pixels, or an
// edge past the int range are rejected.
func (s *Surface) ReadPixels(r pixels.Region) ([]byte, error) {
	if r.W < 0 || r.H < 0 {
		return nil, fmt.Errorf("%w: %v has negative size", ErrInvalidRegion, r)
	}
	if r.W > 0 && r.H > MaxReadPixels/r.W {
		return nil, fmt.Errorf("%w: %v exceeds %d pixels", ErrInvalidRegion, r, MaxReadPixels)
	}
	if r.X > math.MaxInt-r.W || r.Y > math.MaxInt-r.H {
		return nil, fmt.Errorf("%w: %v extends past the coordinate range", ErrInvalidRegion, r)
	}
	out := make([]byte, r.BufferLen())

	visible := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H).Intersect(s.img.Bounds())
	n := 4 * visible.Dx()
	for y := visible.Min.Y; y < visible.Max.Y; y++ {
		src := s.img.PixOffset(visible.Min.X, y)
		dst := 4 * ((y-r.Y)*r.W + (visible.Min.X - r.X))
		copy(out[dst:dst+n], s.img.Pix[src:src+n])
	}
	return out, nil
}
