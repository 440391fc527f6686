package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/canvas-heightmap/internal/logging"
)

// LoadError reports a source that could not be fetched or decoded.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SourceInfo describes a loaded source.
type SourceInfo struct {
	// Ref is the reference the source was loaded from.
	Ref string `json:"ref"`

	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by the image package, e.g. "png".
	Format string `json:"format"`

	// HasAlpha is false only when every pixel is known to be opaque.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the encoded size of the source.
	SizeBytes int64 `json:"size_bytes"`
}

type loaded struct {
	img  image.Image
	info SourceInfo
}

// LoaderOptions configures a Loader. Zero values select defaults.
type LoaderOptions struct {
	// Timeout bounds a single URL fetch. Default 30s.
	Timeout time.Duration

	// MaxBytes caps the encoded size of a source. Default 64 MiB.
	MaxBytes int64

	// NoCache disables caching of decoded sources.
	NoCache bool

	// Client overrides the HTTP client used for URL sources.
	Client *http.Client
}

// Loader resolves source references to decoded images and caches them by
// reference.
//
// Loader is safe for concurrent use by multiple goroutines.
type Loader struct {
	mu       sync.RWMutex
	images   map[string]*loaded
	client   *http.Client
	maxBytes int64
	noCache  bool
}

// NewLoader creates a Loader with an empty cache.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 64 << 20
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Loader{
		images:   make(map[string]*loaded),
		client:   client,
		maxBytes: opts.MaxBytes,
		noCache:  opts.NoCache,
	}
}

// Load returns the decoded image for ref, fetching and decoding it unless
// it is cached.
//
// Any failure is returned as a *LoadError. A load completes or fails
// exactly once; it is never retried.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	e, err := l.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// LoadInfo loads ref like Load and also returns its metadata. The image
// and the metadata come from the same fetch.
func (l *Loader) LoadInfo(ctx context.Context, ref string) (image.Image, *SourceInfo, error) {
	e, err := l.load(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	info := e.info
	return e.img, &info, nil
}

func (l *Loader) load(ctx context.Context, ref string) (*loaded, error) {
	l.mu.RLock()
	if e, ok := l.images[ref]; ok {
		l.mu.RUnlock()
		return e, nil
	}
	l.mu.RUnlock()

	data, err := l.read(ctx, ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: fmt.Errorf("failed to decode image: %w", err)}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: fmt.Errorf("failed to decode image: %w", err)}
	}

	hasAlpha := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		hasAlpha = !o.Opaque()
	}
	bounds := img.Bounds()
	e := &loaded{
		img: img,
		info: SourceInfo{
			Ref:       ref,
			Width:     bounds.Dx(),
			Height:    bounds.Dy(),
			Format:    format,
			HasAlpha:  hasAlpha,
			SizeBytes: int64(len(data)),
		},
	}
	logging.Debugf("loaded %s: %dx%d %s (%s), declared %dx%d", ref, bounds.Dx(), bounds.Dy(),
		format, humanize.Bytes(uint64(len(data))), cfg.Width, cfg.Height)

	if !l.noCache {
		l.mu.Lock()
		l.images[ref] = e
		l.mu.Unlock()
	}
	return e, nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l.fetch(ctx, ref)
		case "file":
			return l.readFile(u.Path)
		}
	}
	return l.readFile(ref)
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("image exceeds %s limit", humanize.Bytes(uint64(l.maxBytes)))
	}
	return data, nil
}

// Clear removes all sources from the cache.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.images = make(map[string]*loaded)
	l.mu.Unlock()
}

// Evict removes one source from the cache. Unknown refs are ignored.
func (l *Loader) Evict(ref string) {
	l.mu.Lock()
	delete(l.images, ref)
	l.mu.Unlock()
}

// Cached reports whether ref is in the cache.
func (l *Loader) Cached(ref string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.images[ref]
	return ok
}
