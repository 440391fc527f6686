package pixels

import "fmt"

// Region is a rectangle in surface coordinates.
//
// (X, Y) is the top-left corner and (W, H) the size in pixels. A region
// may extend past the surface; it is not clipped here.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Full returns the region covering a whole width by height surface.
func Full(width, height int) Region {
	return Region{X: 0, Y: 0, W: width, H: height}
}

// Len returns the number of pixels in the region.
func (r Region) Len() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// BufferLen returns the size in bytes of the region's RGBA pixel buffer.
func (r Region) BufferLen() int {
	return 4 * r.Len()
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// ResolveRegion returns *r, or the full width by height extent when r is
// nil.
func ResolveRegion(r *Region, width, height int) Region {
	if r == nil {
		return Full(width, height)
	}
	return *r
}

// RegionSpec is a region whose fields may each be omitted.
//
// Omitted offsets default to 0. Omitted sizes default to the full surface
// width or height, not to the area remaining after the offset.
type RegionSpec struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

// Resolve fills the omitted fields of s against a width by height surface.
// A nil spec resolves to the full extent.
func (s *RegionSpec) Resolve(width, height int) Region {
	r := Full(width, height)
	if s == nil {
		return r
	}
	if s.X != nil {
		r.X = *s.X
	}
	if s.Y != nil {
		r.Y = *s.Y
	}
	if s.W != nil {
		r.W = *s.W
	}
	if s.H != nil {
		r.H = *s.H
	}
	return r
}
