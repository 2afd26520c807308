package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/metadata"
)

func newPixels(t *testing.T, w, h int) *core.PixelBuffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: 90, A: 255})
		}
	}
	return core.NewPixelBuffer(img)
}

func TestJPEG_Encode(t *testing.T) {
	data, err := NewJPEG().Encode(context.Background(), newPixels(t, 64, 48), 0.9)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output is not a JPEG")
	}
	if snap := metadata.Inspect(data); !snap.Clean() {
		t.Errorf("fresh JPEG encode carries metadata: exif=%t xmp=%t iptc=%t",
			snap.HasExif, snap.HasXmp, snap.HasIptc)
	}
}

func TestPNG_Encode(t *testing.T) {
	data, err := NewPNG().Encode(context.Background(), newPixels(t, 20, 20), 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x89, 0x50, 0x4E, 0x47}
	if !bytes.HasPrefix(data, want) {
		t.Error("output is not a PNG")
	}
}

func TestWebP_Encode(t *testing.T) {
	data, err := NewWebP().Encode(context.Background(), newPixels(t, 32, 32), 0.8)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Error("output is not a WebP container")
	}
}

// Out-of-range quality is clamped, not rejected: 1.5 must behave exactly
// like 1.0 and -0.2 like 0.0.
func TestJPEG_QualityClamp(t *testing.T) {
	px := newPixels(t, 40, 40)
	ctx := context.Background()
	enc := NewJPEG()

	tests := []struct {
		requested, clamped float64
	}{
		{1.5, 1.0},
		{-0.2, 0.0},
	}
	for _, tc := range tests {
		a, err := enc.Encode(ctx, px, tc.requested)
		if err != nil {
			t.Fatalf("Encode(%v): %v", tc.requested, err)
		}
		b, err := enc.Encode(ctx, px, tc.clamped)
		if err != nil {
			t.Fatalf("Encode(%v): %v", tc.clamped, err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("quality %v and %v produced different output (%d vs %d bytes)",
				tc.requested, tc.clamped, len(a), len(b))
		}
	}
}

// PNG is lossless; quality must not influence the output at all.
func TestPNG_IgnoresQuality(t *testing.T) {
	px := newPixels(t, 24, 24)
	ctx := context.Background()
	enc := NewPNG()

	low, err := enc.Encode(ctx, px, 0.1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	high, err := enc.Encode(ctx, px, 0.9)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(low, high) {
		t.Error("PNG output varies with quality")
	}
}

// Repeated encodes with the same clamped quality are byte-stable.
func TestEncode_Deterministic(t *testing.T) {
	px := newPixels(t, 40, 40)
	ctx := context.Background()

	for _, enc := range []core.Encoder{NewJPEG(), NewPNG(), NewWebP()} {
		a, err := enc.Encode(ctx, px, 0.85)
		if err != nil {
			t.Fatalf("%s: %v", enc.MIMEType(), err)
		}
		b, err := enc.Encode(ctx, px, 0.85)
		if err != nil {
			t.Fatalf("%s: %v", enc.MIMEType(), err)
		}
		if len(a) != len(b) {
			t.Errorf("%s: repeated encode size %d then %d", enc.MIMEType(), len(a), len(b))
		}
	}
}

func TestEncode_NilPixels(t *testing.T) {
	ctx := context.Background()
	for _, enc := range []core.Encoder{NewJPEG(), NewPNG(), NewWebP()} {
		_, err := enc.Encode(ctx, nil, 0.9)
		if err == nil {
			t.Errorf("%s: nil pixel buffer encoded", enc.MIMEType())
		}
		if !apperrors.IsCategory(err, apperrors.CategoryEncode) {
			t.Errorf("%s: err = %v, want encode category", enc.MIMEType(), err)
		}
	}
}
