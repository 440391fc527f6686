package pixels

import "fmt"

// RGBA is one pixel: red, green, blue and alpha bytes in that order.
type RGBA [4]uint8

// Average returns the truncated mean of the red, green and blue bytes.
// Alpha is ignored.
func (p RGBA) Average() uint8 {
	return uint8((uint16(p[0]) + uint16(p[1]) + uint16(p[2])) / 3)
}

// pixelCount is the number of whole pixels in buf. Trailing bytes that
// do not form a full tuple are ignored.
func pixelCount(buf []byte) int {
	return len(buf) / 4
}

// FlatChannel extracts one channel from an RGBA buffer, one byte per
// pixel in row-major order.
//
// Byte j of the result is buf[4*j+ch.Offset()]. A channel outside Red
// through Alpha fails with ErrUnknownChannel.
func FlatChannel(buf []byte, ch Channel) ([]byte, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownChannel, ch)
	}
	n := pixelCount(buf)
	out := make([]byte, n)
	off := ch.Offset()
	for j := 0; j < n; j++ {
		out[j] = buf[4*j+off]
	}
	return out, nil
}

// FlatAverage reduces each pixel of an RGBA buffer to floor((R+G+B)/3).
func FlatAverage(buf []byte) []byte {
	n := pixelCount(buf)
	out := make([]byte, n)
	for j := 0; j < n; j++ {
		i := 4 * j
		out[j] = uint8((uint16(buf[i]) + uint16(buf[i+1]) + uint16(buf[i+2])) / 3)
	}
	return out
}

// FlatRGBA groups an RGBA buffer into one tuple per pixel.
func FlatRGBA(buf []byte) []RGBA {
	n := pixelCount(buf)
	out := make([]RGBA, n)
	for j := 0; j < n; j++ {
		copy(out[j][:], buf[4*j:4*j+4])
	}
	return out
}

// Rows partitions a flat row-major view into rows of width elements.
//
// Row i holds flat[i*width : (i+1)*width]. When len(flat) is not a
// multiple of width the final row is shorter; it is never padded. A
// width of zero or less yields no rows. Rows are copies, so the result
// does not alias flat.
func Rows[T any](flat []T, width int) [][]T {
	if width <= 0 || len(flat) == 0 {
		return [][]T{}
	}
	n := (len(flat) + width - 1) / width
	rows := make([][]T, 0, n)
	for i := 0; i < len(flat); i += width {
		end := i + width
		if end > len(flat) {
			end = len(flat)
		}
		row := make([]T, end-i)
		copy(row, flat[i:end])
		rows = append(rows, row)
	}
	return rows
}
