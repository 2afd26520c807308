package encoder

import (
	"bytes"
	"context"

	"github.com/chai2010/webp"

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/utils"
)

// WebP encodes pixel buffers to lossy WebP via chai2010/webp.  The RIFF
// container is written without EXIF or XMP chunks.
type WebP struct{}

// NewWebP returns an initialised WebP encoder.
func NewWebP() *WebP { return &WebP{} }

func (w *WebP) CanEncode(format core.Format) bool { return format == core.FormatWebP }

func (w *WebP) MIMEType() string { return "image/webp" }

func (w *WebP) Encode(ctx context.Context, px *core.PixelBuffer, quality float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "webp.encode", err)
	}
	if px == nil || px.RGBA == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "webp.encode", apperrors.ErrEmptyInput)
	}

	var buf bytes.Buffer
	err := webp.Encode(&buf, px.RGBA, &webp.Options{
		Quality: float32(utils.QualityToPercent(quality)),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "webp.encode", err)
	}
	return buf.Bytes(), nil
}

var _ core.Encoder = (*JPEG)(nil)
var _ core.Encoder = (*PNG)(nil)
var _ core.Encoder = (*WebP)(nil)
