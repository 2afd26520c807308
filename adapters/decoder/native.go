// Package decoder provides container decoders producing RGBA pixel buffers.
package decoder

import (
	"context"
	"image"
	"image/draw"

	_ "image/jpeg" // register JPEG with image.Decode
	_ "image/png"  // register PNG with image.Decode

	_ "golang.org/x/image/webp" // register WebP with image.Decode

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/utils"
)

// Native decodes standard bitmap containers (JPEG, PNG, WebP) with the
// stdlib image registry and draws the result into a fresh RGBA buffer, the
// off-screen surface the re-encoder starts from.
type Native struct{}

// NewNative returns an initialised Native decoder.
func NewNative() *Native { return &Native{} }

func (n *Native) CanDecode(format core.Format) bool {
	switch format {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatUnknown:
		return true
	}
	return false
}

func (n *Native) Decode(ctx context.Context, data []byte) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "native.decode", err)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "native.decode", apperrors.ErrEmptyInput)
	}

	img, _, err := image.Decode(utils.BytesReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "native.decode", err)
	}
	return core.NewPixelBuffer(toRGBA(img)), nil
}

// toRGBA draws img into a zero-origin RGBA surface sized to its bounds.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
