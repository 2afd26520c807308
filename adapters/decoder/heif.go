package decoder

import (
	"context"
	"image"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/metawipe/metawipe/config"
	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
)

// HEIF decodes HEIC/HEIF/AVIF still images via libvips.  The ISO-BMFF item
// table is pre-scanned so a container with zero image items is reported
// distinctly from a codec failure.  Only the primary image item is decoded;
// animation and burst sequences are out of scope.
type HEIF struct{}

// NewHEIF initialises libvips and returns a ready HEIF decoder.  Call
// Shutdown() once at process exit.
func NewHEIF(cfg config.VipsConfig) *HEIF {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: workers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
	})
	return &HEIF{}
}

// Shutdown releases all libvips resources.
func (h *HEIF) Shutdown() {
	govips.Shutdown()
}

func (h *HEIF) CanDecode(format core.Format) bool {
	return format == core.FormatHEIF
}

func (h *HEIF) Decode(ctx context.Context, data []byte) (*core.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "heif.decode", err)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "heif.decode", apperrors.ErrEmptyInput)
	}

	if countImageItems(data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "heif.decode", apperrors.ErrNoImagesInContainer)
	}

	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "heif.decode", err)
	}
	runtime.SetFinalizer(ref, func(r *govips.ImageRef) { r.Close() })

	width, height := ref.Width(), ref.Height()
	if width <= 0 || height <= 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "heif.decode", apperrors.ErrNoPixelData)
	}

	if err := ref.ToColorSpace(govips.InterpretationSRGB); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "heif.colorspace", err)
	}
	if !ref.HasAlpha() {
		if err := ref.AddAlpha(); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryDecode, "heif.alpha", err)
		}
	}

	raw, err := ref.ToBytes()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "heif.render", err)
	}
	if len(raw) != width*height*4 {
		// The render callback handed back nothing (or a short buffer);
		// report it as missing pixel data, not a silent default.
		return nil, apperrors.New(apperrors.CategoryDecode, "heif.render", apperrors.ErrNoPixelData)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(rgba.Pix, raw)
	return core.NewPixelBuffer(rgba), nil
}

var _ core.Decoder = (*HEIF)(nil)
var _ core.Decoder = (*Native)(nil)
