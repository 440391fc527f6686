package heightmap

import (
	"image"

	"github.com/ironsheep/canvas-heightmap/internal/imaging"
)

// SourceKind discriminates the variants of Source.
type SourceKind int

const (
	// KindInvalid is the zero Source. Use rejects it.
	KindInvalid SourceKind = iota
	// KindURL is an http(s) URL, file:// URL or file path to load.
	KindURL
	// KindImage is an already decoded image.
	KindImage
	// KindSurface is a surface rendered earlier.
	KindSurface
)

func (k SourceKind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindImage:
		return "image"
	case KindSurface:
		return "surface"
	default:
		return "invalid"
	}
}

// Source is what a Heightmap draws from. Build one with URL, Image or
// FromSurface; only the field matching Kind is read.
type Source struct {
	Kind    SourceKind
	Ref     string
	Image   image.Image
	Surface *imaging.Surface
}

// URL returns a source loaded from ref.
func URL(ref string) Source {
	return Source{Kind: KindURL, Ref: ref}
}

// Image returns a source backed by a decoded image.
func Image(img image.Image) Source {
	return Source{Kind: KindImage, Image: img}
}

// FromSurface returns a source backed by a rendered surface.
func FromSurface(s *imaging.Surface) Source {
	return Source{Kind: KindSurface, Surface: s}
}
