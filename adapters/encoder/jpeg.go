// Package encoder provides re-encoders emitting metadata-free containers.
// Every encoder starts from a bare RGBA buffer, so the output carries nothing
// beyond minimal structural headers.
package encoder

import (
	"bytes"
	"context"

	"github.com/gen2brain/jpegli"

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/utils"
)

// JPEG encodes pixel buffers to JPEG via jpegli.  Quality is clamped to
// [0, 1] before use; out-of-range values are never rejected.
type JPEG struct{}

// NewJPEG returns an initialised JPEG encoder.
func NewJPEG() *JPEG { return &JPEG{} }

func (j *JPEG) CanEncode(format core.Format) bool { return format == core.FormatJPEG }

func (j *JPEG) MIMEType() string { return "image/jpeg" }

func (j *JPEG) Encode(ctx context.Context, px *core.PixelBuffer, quality float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}
	if px == nil || px.RGBA == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "jpeg.encode", apperrors.ErrEmptyInput)
	}

	var buf bytes.Buffer
	err := jpegli.Encode(&buf, px.RGBA, &jpegli.EncodingOptions{
		Quality: utils.QualityToPercent(quality),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}
	return buf.Bytes(), nil
}
