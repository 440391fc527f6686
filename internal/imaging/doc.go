// Package imaging loads image sources and renders them onto an off-screen
// RGBA surface from which pixel buffers are read.
//
// # Sources
//
// A source reference is either an http(s) URL, a file:// URL or a plain
// file path. Decoding supports PNG, JPEG and GIF from the standard library
// plus BMP, TIFF and WebP from golang.org/x/image. JPEG EXIF orientation
// is applied while decoding.
//
// # Coordinate System
//
// Surface coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. A region is given by its
// top-left corner and its size.
//
// # Pixel Reads
//
// Surface.ReadPixels returns exactly 4*w*h bytes for a w by h region,
// non-premultiplied RGBA in row-major order. Pixels of the region that lie
// outside the surface read as transparent black, so a region may extend
// past the surface edges without error.
//
// # Thread Safety
//
// Loader is safe for concurrent use. A Surface is never written after
// Render returns, so concurrent reads need no locking.
package imaging
