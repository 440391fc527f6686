// Package pixels derives height data views from a flat RGBA pixel buffer.
//
// A pixel buffer is a []byte of length 4*w*h holding one (R, G, B, A)
// tuple per pixel in row-major order: row 0 left to right, then row 1,
// and so on. This is the layout returned by an off-screen surface's
// pixel read for a region of w by h pixels.
//
// # Views
//
// From one buffer the package derives:
//   - FlatChannel: one byte per pixel for a single channel
//   - FlatAverage: one byte per pixel, the truncated mean of R, G and B
//   - FlatRGBA: one RGBA tuple per pixel
//   - Rows: any flat view reshaped into rows of the region width
//
// # Thread Safety
//
// Every function is pure. Outputs are freshly allocated and inputs are
// never written, so concurrent calls on the same buffer need no locking.
package pixels
