package metadata

// GPS is a decoded coordinate pair from the GPS sub-directory.
type GPS struct {
	Latitude  float64
	Longitude float64
}

// Snapshot is the result of inspecting one byte sequence.  HasXmp and HasIptc
// come from literal marker scanning only and are lower-confidence than the
// EXIF fields, which are backed by a structural parse.
type Snapshot struct {
	HasExif bool
	HasXmp  bool
	HasIptc bool

	// All tag names found across the main, EXIF, and GPS directories,
	// lexicographically sorted and deduplicated.
	ExifKeys []string

	GPS              *GPS
	DateTimeOriginal string
	Make             string
	Model            string
	Software         string
}

// Inspect scans data for metadata markers and attempts a structural EXIF
// parse, combining both into a Snapshot.  HasExif is the logical OR of the
// two detection paths: a raw "Exif" marker hit, or a non-empty structured tag
// set (some HEIC/AVIF embeddings carry a TIFF directory without the literal
// ASCII marker).  A structural parse failure never fails the inspection; the
// snapshot simply carries less.
func Inspect(data []byte) Snapshot {
	exifHit, xmpHit, iptcHit := scanMarkers(data)

	snap := Snapshot{
		HasExif: exifHit,
		HasXmp:  xmpHit,
		HasIptc: iptcHit,
	}

	ext := extractEXIF(data)
	if len(ext.keys) > 0 {
		snap.HasExif = true
	}
	snap.ExifKeys = ext.keys
	snap.GPS = ext.gps
	snap.DateTimeOriginal = ext.dateTimeOriginal
	snap.Make = ext.make
	snap.Model = ext.model
	snap.Software = ext.software
	return snap
}

// Clean reports whether the snapshot found no metadata at all.
func (s Snapshot) Clean() bool {
	return !s.HasExif && !s.HasXmp && !s.HasIptc
}
