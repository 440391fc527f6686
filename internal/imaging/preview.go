package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreviewResult contains a height grid rendered as a grayscale PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// GrayImage converts a height grid into a grayscale image, one pixel per
// cell. Short rows are padded with black.
func GrayImage(grid [][]byte) *image.Gray {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	img := image.NewGray(image.Rect(0, 0, width, len(grid)))
	for y, row := range grid {
		copy(img.Pix[y*img.Stride:], row)
	}
	return img
}

func previewImage(grid [][]byte, scale float64) (image.Image, error) {
	img := GrayImage(grid)
	if img.Bounds().Empty() {
		return nil, errors.New("empty height grid")
	}

	var out image.Image = img
	if scale != 1.0 && scale > 0 {
		w := int(float64(img.Bounds().Dx()) * scale)
		h := int(float64(img.Bounds().Dy()) * scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		out = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}
	return out, nil
}

// Preview encodes a height grid as a base64 grayscale PNG, optionally
// scaled.
func Preview(grid [][]byte, scale float64) (*PreviewResult, error) {
	img, err := previewImage(grid, scale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SavePreview writes a height grid to path. The format follows the file
// extension.
func SavePreview(grid [][]byte, path string) error {
	img, err := previewImage(grid, 1.0)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}
