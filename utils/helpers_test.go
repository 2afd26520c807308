package utils

import (
	"bytes"
	"testing"
)

func ftyp(brand string) []byte {
	payload := append([]byte(brand), 0, 0, 0, 0)
	buf := []byte{0, 0, 0, byte(8 + len(payload))}
	buf = append(buf, []byte("ftyp")...)
	return append(buf, payload...)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0}, "jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"webp", append([]byte("RIFF\x10\x00\x00\x00WEBP"), make([]byte, 8)...), "webp"},
		{"heic brand", ftyp("heic"), "heif"},
		{"heix brand", ftyp("heix"), "heif"},
		{"avif brand", ftyp("avif"), "heif"},
		{"mif1 brand", ftyp("mif1"), "heif"},
		{"non-image ftyp", ftyp("isom"), "unknown"},
		{"empty", nil, "unknown"},
		{"short", []byte{0xFF}, "unknown"},
		{"text", []byte("hello, world. this is not an image at all"), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFormat(tc.data); got != tc.want {
				t.Errorf("DetectFormat = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClampQuality(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.2, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
	}
	for _, tc := range tests {
		if got := ClampQuality(tc.in); got != tc.want {
			t.Errorf("ClampQuality(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestQualityToPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-1, 1},
		{0, 1},
		{0.5, 51},
		{0.92, 92},
		{1, 100},
		{2, 100},
	}
	for _, tc := range tests {
		if got := QualityToPercent(tc.in); got != tc.want {
			t.Errorf("QualityToPercent(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCloneBytes(t *testing.T) {
	if CloneBytes(nil) != nil {
		t.Error("CloneBytes(nil) != nil")
	}
	if empty := CloneBytes([]byte{}); empty == nil || len(empty) != 0 {
		t.Error("empty input did not clone to a non-nil empty slice")
	}
	src := []byte{1, 2, 3}
	dst := CloneBytes(src)
	if !bytes.Equal(src, dst) {
		t.Fatalf("clone = %v", dst)
	}
	dst[0] = 99
	if src[0] != 1 {
		t.Error("clone aliases source")
	}
}
