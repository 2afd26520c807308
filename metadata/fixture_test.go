package metadata

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// ── TIFF/EXIF fixture builder ─────────────────────────────────────────────────
//
// Builds a little-endian TIFF blob with a main IFD, an EXIF sub-IFD, and a
// GPS sub-IFD, suitable for embedding in a JPEG APP1 segment.

const (
	tagMake             = 0x010F
	tagModel            = 0x0110
	tagSoftware         = 0x0131
	tagDateTime         = 0x0132
	tagExifIFDPointer   = 0x8769
	tagGPSIFDPointer    = 0x8825
	tagDateTimeOriginal = 0x9003

	tagGPSLatitudeRef  = 0x0001
	tagGPSLatitude     = 0x0002
	tagGPSLongitudeRef = 0x0003
	tagGPSLongitude    = 0x0004

	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte // raw value bytes; stored inline when <= 4 bytes
}

func asciiEntry(tag uint16, s string) ifdEntry {
	v := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(v)), value: v}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return ifdEntry{tag: tag, typ: typeLong, count: 1, value: b}
}

func rationalEntry(tag uint16, pairs ...[2]uint32) ifdEntry {
	b := make([]byte, 0, 8*len(pairs))
	for _, p := range pairs {
		b = binary.LittleEndian.AppendUint32(b, p[0])
		b = binary.LittleEndian.AppendUint32(b, p[1])
	}
	return ifdEntry{tag: tag, typ: typeRational, count: uint32(len(pairs)), value: b}
}

func padEven(n int) int {
	if n%2 == 1 {
		return n + 1
	}
	return n
}

// ifdBlockSize returns the serialised size of an IFD: entry count, entry
// table, next-IFD offset, and the out-of-line value area.
func ifdBlockSize(entries []ifdEntry) int {
	size := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.value) > 4 {
			size += padEven(len(e.value))
		}
	}
	return size
}

// serialiseIFD writes entries as an IFD starting at offset within the TIFF.
func serialiseIFD(entries []ifdEntry, offset int) []byte {
	var buf bytes.Buffer
	valueOff := offset + 2 + 12*len(entries) + 4
	var valueArea bytes.Buffer

	b2 := make([]byte, 2)
	binary.LittleEndian.PutUint16(b2, uint16(len(entries)))
	buf.Write(b2)

	for _, e := range entries {
		binary.LittleEndian.PutUint16(b2, e.tag)
		buf.Write(b2)
		binary.LittleEndian.PutUint16(b2, e.typ)
		buf.Write(b2)
		b4 := make([]byte, 4)
		binary.LittleEndian.PutUint32(b4, e.count)
		buf.Write(b4)

		if len(e.value) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.value)
			buf.Write(inline)
		} else {
			binary.LittleEndian.PutUint32(b4, uint32(valueOff+valueArea.Len()))
			buf.Write(b4)
			valueArea.Write(e.value)
			if len(e.value)%2 == 1 {
				valueArea.WriteByte(0)
			}
		}
	}
	buf.Write([]byte{0, 0, 0, 0}) // next IFD offset
	buf.Write(valueArea.Bytes())
	return buf.Bytes()
}

// buildTIFF assembles the full fixture: Make/Model/Software/DateTime in the
// main IFD, DateTimeOriginal in the EXIF sub-IFD, and a Paris coordinate in
// the GPS sub-IFD.
func buildTIFF(t *testing.T) []byte {
	t.Helper()

	exifEntries := []ifdEntry{
		asciiEntry(tagDateTimeOriginal, "2021:07:04 12:30:00"),
	}
	gpsEntries := []ifdEntry{
		asciiEntry(tagGPSLatitudeRef, "N"),
		rationalEntry(tagGPSLatitude, [2]uint32{48, 1}, [2]uint32{51, 1}, [2]uint32{2376, 100}),
		asciiEntry(tagGPSLongitudeRef, "E"),
		rationalEntry(tagGPSLongitude, [2]uint32{2, 1}, [2]uint32{21, 1}, [2]uint32{792, 100}),
	}

	// Main IFD size must be known before the sub-IFD pointers are final.
	mainEntries := func(exifOff, gpsOff uint32) []ifdEntry {
		return []ifdEntry{
			asciiEntry(tagMake, "Canon"),
			asciiEntry(tagModel, "EOS 5D"),
			asciiEntry(tagSoftware, "darktable 4.2"),
			asciiEntry(tagDateTime, "2021:07:04 12:31:00"),
			longEntry(tagExifIFDPointer, exifOff),
			longEntry(tagGPSIFDPointer, gpsOff),
		}
	}

	mainSize := ifdBlockSize(mainEntries(0, 0))
	exifOff := 8 + mainSize
	gpsOff := exifOff + ifdBlockSize(exifEntries)

	var buf bytes.Buffer
	buf.WriteString("II")
	buf.Write([]byte{42, 0})
	buf.Write([]byte{8, 0, 0, 0}) // IFD0 offset
	buf.Write(serialiseIFD(mainEntries(uint32(exifOff), uint32(gpsOff)), 8))
	buf.Write(serialiseIFD(exifEntries, exifOff))
	buf.Write(serialiseIFD(gpsEntries, gpsOff))
	return buf.Bytes()
}

// newBaseJPEG encodes a small solid-colour JPEG with the stdlib encoder.
func newBaseJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

// jpegWithEXIF splices an APP1 Exif segment directly after the SOI marker.
func jpegWithEXIF(t *testing.T, base, tiffData []byte) []byte {
	t.Helper()
	if len(base) < 2 || base[0] != 0xFF || base[1] != 0xD8 {
		t.Fatal("base is not a JPEG")
	}
	payload := append([]byte("Exif\x00\x00"), tiffData...)
	segLen := len(payload) + 2
	if segLen > 0xFFFF {
		t.Fatal("exif segment too large")
	}

	var out bytes.Buffer
	out.Write(base[:2])
	out.Write([]byte{0xFF, 0xE1, byte(segLen >> 8), byte(segLen & 0xFF)})
	out.Write(payload)
	out.Write(base[2:])
	return out.Bytes()
}

// newEXIFJPEG is the canonical fixture: a decodable JPEG carrying GPS,
// DateTimeOriginal, and Make/Model tags.
func newEXIFJPEG(t *testing.T) []byte {
	t.Helper()
	return jpegWithEXIF(t, newBaseJPEG(t, 32, 32), buildTIFF(t))
}
