package utils

import (
	"bytes"
	"net/http"
)

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatWebP    = "webp"
	formatHEIF    = "heif"
	formatUnknown = "unknown"
)

// ftyp major brands that identify HEIC/HEIF/AVIF still-image containers.
var heifBrands = [][]byte{
	[]byte("heic"), []byte("heix"), []byte("heim"), []byte("heis"),
	[]byte("hevc"), []byte("hevm"), []byte("hevs"),
	[]byte("mif1"), []byte("msf1"),
	[]byte("avif"), []byte("avis"),
}

// DetectFormat sniffs magic bytes and returns the image format name.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return formatUnknown
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return formatJPEG
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return formatPNG
	}
	// WebP: RIFF....WEBP
	if len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return formatWebP
	}
	// ISO-BMFF: size(4) "ftyp" brand(4)
	if len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) {
		brand := data[8:12]
		for _, b := range heifBrands {
			if bytes.Equal(brand, b) {
				return formatHEIF
			}
		}
	}
	// Fallback to net/http sniffing.
	ct := http.DetectContentType(data)
	switch ct {
	case "image/jpeg":
		return formatJPEG
	case "image/png":
		return formatPNG
	case "image/webp":
		return formatWebP
	}
	return formatUnknown
}

// ClampQuality confines q to [0, 1].  Out-of-range values are clamped, not
// rejected; the encoders rely on this before mapping to their native scale.
func ClampQuality(q float64) float64 {
	if q < 0 {
		return 0
	}
	if q > 1 {
		return 1
	}
	return q
}

// QualityToPercent maps a clamped [0, 1] quality to the 1-100 scale used by
// the JPEG and WebP codecs.
func QualityToPercent(q float64) int {
	q = ClampQuality(q)
	p := int(q*99 + 0.5)
	return p + 1
}

// CloneBytes returns a copy of b (safe for use after the source buffer is
// released).  A nil input stays nil.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// BytesReader creates an io.Reader backed by b without allocation.
func BytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
