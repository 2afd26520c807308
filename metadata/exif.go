package metadata

import (
	"sort"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/metawipe/metawipe/utils"
)

// extraction is the structural parse result before projection into a Snapshot.
type extraction struct {
	keys             []string
	gps              *GPS
	dateTimeOriginal string
	make             string
	model            string
	software         string
}

// tagCollector flattens every parsed IFD (main + EXIF + GPS) into one
// tag-name → tag mapping, preserving the original tag names.
type tagCollector struct {
	fields map[string]*tiff.Tag
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.fields[string(name)] = tag
	return nil
}

// extractEXIF parses an embedded TIFF/EXIF directory out of raw image bytes.
// Malformed or absent metadata degrades to an empty extraction; the marker
// scanner's heuristic result still stands on its own.
func extractEXIF(data []byte) extraction {
	var out extraction

	defer func() {
		// goexif can panic on pathological tag tables; detection is
		// best-effort, so a blown parse means less is known, not failure.
		_ = recover()
	}()

	x, err := exif.Decode(utils.BytesReader(data))
	if err != nil || x == nil {
		return out
	}

	collector := &tagCollector{fields: make(map[string]*tiff.Tag)}
	if err := x.Walk(collector); err != nil || len(collector.fields) == 0 {
		return out
	}

	out.keys = sortedKeys(collector.fields)
	out.gps = readGPS(x, collector.fields)
	out.dateTimeOriginal = lookupString(collector.fields,
		"DateTimeOriginal", "dateTimeOriginal", "DateTime", "dateTime", "Date/Time Original")
	out.make = lookupString(collector.fields, "Make", "make")
	out.model = lookupString(collector.fields, "Model", "model")
	out.software = lookupString(collector.fields, "Software", "software")
	return out
}

func sortedKeys(fields map[string]*tiff.Tag) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookupString tries each name in order and returns the first decodable
// string value.
func lookupString(fields map[string]*tiff.Tag, names ...string) string {
	for _, name := range names {
		tag, ok := fields[name]
		if !ok || tag == nil {
			continue
		}
		if v, err := tag.StringVal(); err == nil && v != "" {
			return v
		}
		// Non-ASCII tag types stringify with surrounding quotes.
		v := tag.String()
		if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
			v = v[1 : len(v)-1]
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// readGPS reads latitude/longitude from the GPS sub-directory.  The combined
// LatLong helper needs both coordinates; when it fails, each coordinate is
// decoded individually so a single valid axis still yields a GPS value.
func readGPS(x *exif.Exif, fields map[string]*tiff.Tag) *GPS {
	if lat, long, err := x.LatLong(); err == nil {
		return &GPS{Latitude: lat, Longitude: long}
	}

	lat, latOK := coordinate(fields, "GPSLatitude", "gpslatitude", "GPSLatitudeRef", "S")
	long, longOK := coordinate(fields, "GPSLongitude", "gpslongitude", "GPSLongitudeRef", "W")
	if !latOK && !longOK {
		return nil
	}
	return &GPS{Latitude: lat, Longitude: long}
}

// coordinate decodes one degrees/minutes/seconds rational triplet, applying
// the sign from the reference tag.
func coordinate(fields map[string]*tiff.Tag, name, alias, refName, negRef string) (float64, bool) {
	tag, ok := fields[name]
	if !ok {
		tag, ok = fields[alias]
	}
	if !ok || tag == nil || tag.Count < 1 {
		return 0, false
	}

	var value float64
	divisors := []float64{1, 60, 3600}
	decoded := false
	for i := 0; i < int(tag.Count) && i < 3; i++ {
		rat, err := tag.Rat(i)
		if err != nil || rat == nil {
			continue
		}
		f, _ := rat.Float64()
		value += f / divisors[i]
		decoded = true
	}
	if !decoded {
		return 0, false
	}

	if ref, ok := fields[refName]; ok && ref != nil {
		if v, err := ref.StringVal(); err == nil && v == negRef {
			value = -value
		}
	}
	return value, true
}
