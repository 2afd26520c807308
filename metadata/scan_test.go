package metadata

import "testing"

func TestContainsMarker(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		needle string
		want   bool
	}{
		{"empty needle always matches", []byte{}, "", true},
		{"empty needle on data", []byte("abc"), "", true},
		{"needle longer than data", []byte("Ex"), "Exif", false},
		{"exact match", []byte("Exif"), "Exif", true},
		{"match mid-buffer", []byte("\x00\x01Exif\x02"), "Exif", true},
		{"match at end", []byte("....8BIM"), "8BIM", true},
		{"case sensitive", []byte("exif"), "Exif", false},
		{"repeated first byte", []byte("EEEExif"), "Exif", true},
		{"partial then full", []byte("ExiExif"), "Exif", true},
		{"absent", []byte("plain pixel data"), "Exif", false},
		{"binary needle bytes", []byte{0xFF, 'I', 'P', 'T', 'C', 0x00}, "IPTC", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContainsMarker(tc.data, tc.needle); got != tc.want {
				t.Errorf("ContainsMarker(%q, %q) = %t, want %t", tc.data, tc.needle, got, tc.want)
			}
		})
	}
}

func TestScanMarkers_Battery(t *testing.T) {
	tests := []struct {
		name                        string
		data                        []byte
		wantExif, wantXmp, wantIptc bool
	}{
		{"clean", []byte("nothing to see"), false, false, false},
		{"exif literal", []byte("..Exif\x00\x00II"), true, false, false},
		{"xmp packet", []byte("<x:xmpmeta xmlns:x='adobe:ns:meta/'>"), false, true, false},
		{"xmp namespace uri", []byte("http://ns.adobe.com/xap/1.0/\x00"), false, true, false},
		{"dublin core uri", []byte("http://purl.org/dc/elements/1.1/"), false, true, false},
		{"photoshop header", []byte("Photoshop 3.0\x008BIM"), false, false, true},
		{"8bim alone", []byte("....8BIM...."), false, false, true},
		{"iptc literal", []byte("..IPTC.."), false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exif, xmp, iptc := scanMarkers(tc.data)
			if exif != tc.wantExif || xmp != tc.wantXmp || iptc != tc.wantIptc {
				t.Errorf("scanMarkers = exif=%t xmp=%t iptc=%t, want exif=%t xmp=%t iptc=%t",
					exif, xmp, iptc, tc.wantExif, tc.wantXmp, tc.wantIptc)
			}
		})
	}
}

// Scanning is a pure function: running it twice over the same bytes must
// yield identical booleans.
func TestScanMarkers_Idempotent(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("Exif"),
		[]byte("<x:xmpmeta"),
		newEXIFJPEG(t),
		{0x00, 0xFF, 0x45, 0x78, 0x69},
	}
	for _, data := range inputs {
		e1, x1, i1 := scanMarkers(data)
		e2, x2, i2 := scanMarkers(data)
		if e1 != e2 || x1 != x2 || i1 != i2 {
			t.Errorf("scanMarkers not idempotent for %d-byte input", len(data))
		}
	}
}
