package services

import (
	"bytes"
	"context"
	"image"
	"io"
	"math"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
)

// ImageCodec decodes, scales and encodes raster images.
type ImageCodec interface {
	Decode(r io.Reader) (image.Image, error)
	Resize(img image.Image, width, height int) image.Image
	Encode(w io.Writer, img image.Image, contentType string, quality int) error
}

// Compressor downsizes and re-encodes images before transfer. It never
// fails: anything it cannot handle is returned unchanged.
type Compressor struct {
	codec ImageCodec
	log   logging.Logger
}

func NewCompressor(codec ImageCodec, log logging.Logger) *Compressor {
	if log == nil {
		log = logging.Nop()
	}
	return &Compressor{codec: codec, log: log}
}

// Compress returns a re-encoded copy of an image only when it was resized
// to maxWidth or came out smaller than the original; otherwise the original
// is returned unchanged. Resizing keeps the aspect ratio, re-encoding uses
// quality, and name and content type are preserved.
func (c *Compressor) Compress(file models.File, maxWidth, quality int) models.File {
	if c.codec == nil || !common.IsImageContentType(file.ContentType) {
		return file
	}

	ctx := context.Background()

	img, err := c.codec.Decode(bytes.NewReader(file.Data))
	if err != nil {
		c.log.Debug(ctx, "image decode failed, sending original", "file", file.Name, "error", err)
		return file
	}

	resized := false
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if maxWidth > 0 && w > maxWidth {
		nw, nh := fitWidth(w, h, maxWidth)
		img = c.codec.Resize(img, nw, nh)
		resized = true
	}

	var buf bytes.Buffer
	if err := c.codec.Encode(&buf, img, file.ContentType, quality); err != nil {
		c.log.Debug(ctx, "image encode failed, sending original", "file", file.Name, "error", err)
		return file
	}

	if !resized && buf.Len() >= len(file.Data) {
		return file
	}

	c.log.Debug(ctx, "image compressed",
		"file", file.Name, "from_bytes", len(file.Data), "to_bytes", buf.Len(),
		"from_width", w, "to_width", img.Bounds().Dx())

	return models.File{Name: file.Name, ContentType: file.ContentType, Data: buf.Bytes()}
}

func fitWidth(w, h, maxWidth int) (int, int) {
	nh := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if nh < 1 {
		nh = 1
	}
	return maxWidth, nh
}
