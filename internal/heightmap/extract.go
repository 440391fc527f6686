package heightmap

import "github.com/ironsheep/canvas-heightmap/internal/pixels"

// FlatArray returns the raw RGBA bytes of r, 4*w*h long.
func (h *Heightmap) FlatArray(r *pixels.Region) ([]byte, error) {
	buf, _, err := h.read(r)
	return buf, err
}

// FlatChannelArray returns one byte per pixel of r for channel ch.
// The channel is checked before the surface is read.
func (h *Heightmap) FlatChannelArray(ch pixels.Channel, r *pixels.Region) ([]byte, error) {
	if err := checkChannel(ch); err != nil {
		return nil, err
	}
	buf, _, err := h.read(r)
	if err != nil {
		return nil, err
	}
	return pixels.FlatChannel(buf, ch)
}

// FlatAverageArray returns floor((R+G+B)/3) for each pixel of r.
func (h *Heightmap) FlatAverageArray(r *pixels.Region) ([]byte, error) {
	buf, _, err := h.read(r)
	if err != nil {
		return nil, err
	}
	return pixels.FlatAverage(buf), nil
}

// FlatRGBAArray returns one RGBA tuple per pixel of r.
func (h *Heightmap) FlatRGBAArray(r *pixels.Region) ([]pixels.RGBA, error) {
	buf, _, err := h.read(r)
	if err != nil {
		return nil, err
	}
	return pixels.FlatRGBA(buf), nil
}

// ChannelArray returns channel ch of r as rows of the region width.
func (h *Heightmap) ChannelArray(ch pixels.Channel, r *pixels.Region) ([][]byte, error) {
	if err := checkChannel(ch); err != nil {
		return nil, err
	}
	buf, reg, err := h.read(r)
	if err != nil {
		return nil, err
	}
	flat, err := pixels.FlatChannel(buf, ch)
	if err != nil {
		return nil, err
	}
	return pixels.Rows(flat, reg.W), nil
}

// AverageArray returns the RGB averages of r as rows of the region width.
func (h *Heightmap) AverageArray(r *pixels.Region) ([][]byte, error) {
	buf, reg, err := h.read(r)
	if err != nil {
		return nil, err
	}
	return pixels.Rows(pixels.FlatAverage(buf), reg.W), nil
}

// RGBAArray returns the pixels of r as rows of RGBA tuples.
func (h *Heightmap) RGBAArray(r *pixels.Region) ([][]pixels.RGBA, error) {
	buf, reg, err := h.read(r)
	if err != nil {
		return nil, err
	}
	return pixels.Rows(pixels.FlatRGBA(buf), reg.W), nil
}

// Sample returns the pixel at (x, y). Points outside the surface are
// transparent black.
func (h *Heightmap) Sample(x, y int) (pixels.RGBA, error) {
	buf, _, err := h.read(&pixels.Region{X: x, Y: y, W: 1, H: 1})
	if err != nil {
		return pixels.RGBA{}, err
	}
	var p pixels.RGBA
	copy(p[:], buf)
	return p, nil
}
