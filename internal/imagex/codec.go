// Package imagex decodes, resizes and re-encodes the raster formats the
// upload client accepts (JPEG, PNG, GIF).
package imagex

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// Codec is the default image codec. The zero value is not usable; call New.
type Codec struct {
	scaler draw.Scaler
}

// Option configures a Codec.
type Option func(*Codec)

// WithScaler overrides the resampling kernel (CatmullRom by default).
func WithScaler(s draw.Scaler) Option {
	return func(c *Codec) { c.scaler = s }
}

// New returns a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{scaler: draw.CatmullRom}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Decode reads any registered image format.
func (c *Codec) Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Resize scales img to exactly width x height.
func (c *Codec) Resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	c.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img in the format named by contentType. quality (1-100)
// drives JPEG quality; PNG is always written at best compression and GIF
// ignores it.
func (c *Codec) Encode(w io.Writer, img image.Image, contentType string, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = common.DefaultImageQuality
	}

	switch common.NormalizeContentType(contentType) {
	case "image/jpeg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "image/png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "image/gif":
		if err := gif.Encode(w, img, &gif.Options{NumColors: 256}); err != nil {
			return fmt.Errorf("failed to encode GIF: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format: %s", contentType)
	}
	return nil
}
