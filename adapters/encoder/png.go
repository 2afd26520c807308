package encoder

import (
	"bytes"
	"context"
	"image/png"

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
)

// PNG encodes pixel buffers to PNG with the standard library.  PNG is
// lossless, so the quality parameter is ignored.  The stdlib encoder emits no
// ancillary text chunks, which is what makes the output metadata-free.
type PNG struct{}

// NewPNG returns an initialised PNG encoder.
func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanEncode(format core.Format) bool { return format == core.FormatPNG }

func (p *PNG) MIMEType() string { return "image/png" }

func (p *PNG) Encode(ctx context.Context, px *core.PixelBuffer, _ float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	if px == nil || px.RGBA == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "png.encode", apperrors.ErrEmptyInput)
	}

	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, px.RGBA); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	return buf.Bytes(), nil
}
