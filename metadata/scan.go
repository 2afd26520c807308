// Package metadata detects embedded EXIF, XMP, and IPTC blocks in raw image
// bytes and normalises what it finds into a Snapshot.
package metadata

// Metadata signatures scanned for.  XMP and IPTC are detected only by these
// literal markers; a hit on any one signature of a group flags that group.
var (
	exifMarker = "Exif"

	xmpMarkers = []string{
		"<x:xmpmeta",
		"http://ns.adobe.com/xap/1.0/",
		"http://purl.org/dc/elements/1.1/",
	}

	iptcMarkers = []string{
		"Photoshop 3.0",
		"IPTC",
		"8BIM",
	}
)

// ContainsMarker reports whether needle occurs in data as a contiguous byte
// run.  Comparison is case-sensitive and byte-wise; an empty needle always
// matches.  Single pass with a first-byte filter, no allocation.
func ContainsMarker(data []byte, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(data) < len(needle) {
		return false
	}
	first := needle[0]
	limit := len(data) - len(needle)
	for i := 0; i <= limit; i++ {
		if data[i] != first {
			continue
		}
		j := 1
		for ; j < len(needle); j++ {
			if data[i+j] != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return true
		}
	}
	return false
}

// containsAny reports whether any of the needles occurs in data.
func containsAny(data []byte, needles []string) bool {
	for _, n := range needles {
		if ContainsMarker(data, n) {
			return true
		}
	}
	return false
}

// scanMarkers runs the fixed signature battery over data.  This is a
// deliberately permissive pre-filter: the literal bytes could in rare cases
// occur in unrelated pixel data, but a well-formed file carrying one of these
// blocks always contains its signature.
func scanMarkers(data []byte) (exif, xmp, iptc bool) {
	return ContainsMarker(data, exifMarker),
		containsAny(data, xmpMarkers),
		containsAny(data, iptcMarkers)
}
