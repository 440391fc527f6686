package heightmap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/canvas-heightmap/internal/imaging"
	"github.com/ironsheep/canvas-heightmap/internal/logging"
	"github.com/ironsheep/canvas-heightmap/internal/pixels"
)

var (
	// ErrSourceNotSet is returned by Draw before a source has been set.
	ErrSourceNotSet = errors.New("source is not specified")

	// ErrNotReady is returned by extraction methods before Draw.
	ErrNotReady = errors.New("surface is not ready")

	// ErrUnknownSourceType is returned by Use for a source that is not a
	// URL, an image or a surface.
	ErrUnknownSourceType = errors.New("unknown source type")
)

// State is the lifecycle stage of a Heightmap.
type State int

const (
	Unset State = iota
	Sourced
	Rendered
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Sourced:
		return "sourced"
	case Rendered:
		return "rendered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Loader resolves a reference to a decoded image and describes it.
type Loader interface {
	LoadInfo(ctx context.Context, ref string) (image.Image, *imaging.SourceInfo, error)
}

// Heightmap holds a source and the surface it was rendered onto.
//
// It is safe for concurrent use. Extractions run in parallel; Use and
// Draw are serialized against them.
type Heightmap struct {
	mu      sync.RWMutex
	loader  Loader
	opts    imaging.RenderOptions
	source  image.Image
	info    *imaging.SourceInfo
	surface *imaging.Surface
	width   int
	height  int
}

// New creates an unset Heightmap. A nil loader uses an imaging.Loader
// with default options. opts apply to every Draw.
func New(loader Loader, opts imaging.RenderOptions) *Heightmap {
	if loader == nil {
		loader = imaging.NewLoader(imaging.LoaderOptions{})
	}
	return &Heightmap{loader: loader, opts: opts}
}

// State reports the current lifecycle stage.
func (h *Heightmap) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch {
	case h.surface != nil:
		return Rendered
	case h.source != nil:
		return Sourced
	default:
		return Unset
	}
}

// Width returns the width of the rendered surface, or 0 before Draw.
func (h *Heightmap) Width() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.width
}

// Height returns the height of the rendered surface, or 0 before Draw.
func (h *Heightmap) Height() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.height
}

// Use resolves src and makes it the current source.
//
// URL sources are loaded through the Heightmap's Loader; failures are
// returned as *imaging.LoadError. On success any previous surface is
// discarded and the state becomes Sourced. On failure the Heightmap is
// left unchanged.
func (h *Heightmap) Use(ctx context.Context, src Source) (image.Image, error) {
	img, info, err := h.resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.source = img
	h.info = info
	h.surface = nil
	h.width, h.height = 0, 0
	h.mu.Unlock()

	b := img.Bounds()
	logging.Debugf("using %s source %dx%d", src.Kind, b.Dx(), b.Dy())
	return img, nil
}

func (h *Heightmap) resolve(ctx context.Context, src Source) (image.Image, *imaging.SourceInfo, error) {
	switch src.Kind {
	case KindURL:
		return h.loader.LoadInfo(ctx, src.Ref)
	case KindImage:
		if src.Image != nil {
			return src.Image, nil, nil
		}
	case KindSurface:
		if src.Surface != nil {
			return src.Surface.Image(), nil, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSourceType, src.Kind)
}

// Info describes the current source when it was loaded from a URL. It is
// nil for image and surface sources and before Use.
func (h *Heightmap) Info() *imaging.SourceInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.info
}

// Draw renders the current source with the Heightmap's render options.
func (h *Heightmap) Draw() (*imaging.Surface, error) {
	return h.DrawWith(h.opts)
}

// DrawWith renders the current source onto a new surface sized to it and
// moves to Rendered. It fails with ErrSourceNotSet when no source is set.
func (h *Heightmap) DrawWith(opts imaging.RenderOptions) (*imaging.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.source == nil {
		return nil, ErrSourceNotSet
	}
	s := imaging.Render(h.source, opts)
	h.surface = s
	h.width = s.Width()
	h.height = s.Height()
	logging.Debugf("rendered %dx%d surface (smooth %.2f)", h.width, h.height, opts.Smooth)
	return s, nil
}

// read returns the pixel buffer for r resolved against the rendered extent.
func (h *Heightmap) read(r *pixels.Region) ([]byte, pixels.Region, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.surface == nil {
		return nil, pixels.Region{}, ErrNotReady
	}
	reg := pixels.ResolveRegion(r, h.width, h.height)
	buf, err := h.surface.ReadPixels(reg)
	if err != nil {
		return nil, reg, err
	}
	return buf, reg, nil
}

func checkChannel(ch pixels.Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %v", pixels.ErrUnknownChannel, ch)
	}
	return nil
}
