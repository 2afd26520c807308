package decoder

import "encoding/binary"

// Item types in an HEIF/AVIF 'iinf' box that carry image payloads.  Metadata
// items ("Exif", "mime", "uri ") are excluded on purpose: a container whose
// only items are metadata holds no image to decode.
var imageItemTypes = map[string]bool{
	"hvc1": true, // HEVC coded image (HEIC)
	"hev1": true,
	"av01": true, // AV1 coded image (AVIF)
	"avc1": true,
	"jpeg": true,
	"grid": true, // derived image assembled from tiles
	"iovl": true,
	"iden": true,
}

// countImageItems walks the ISO-BMFF box tree of data and counts the image
// items declared in meta/iinf.  A malformed tree yields 0; the distinction
// between "no items" and "unreadable container" is left to the vips decode
// that follows.
func countImageItems(data []byte) int {
	meta := findBox(data, "meta")
	if meta == nil {
		return 0
	}
	// 'meta' is a FullBox: 1 byte version + 3 bytes flags before children.
	if len(meta) < 4 {
		return 0
	}
	iinf := findBox(meta[4:], "iinf")
	if iinf == nil || len(iinf) < 4 {
		return 0
	}

	version := iinf[0]
	body := iinf[4:]
	// entry_count: 16-bit in version 0, 32-bit afterwards.
	if version == 0 {
		if len(body) < 2 {
			return 0
		}
		body = body[2:]
	} else {
		if len(body) < 4 {
			return 0
		}
		body = body[4:]
	}

	count := 0
	walkBoxes(body, func(boxType string, payload []byte) {
		if boxType != "infe" {
			return
		}
		if t, ok := infeItemType(payload); ok && imageItemTypes[t] {
			count++
		}
	})
	return count
}

// infeItemType extracts the item_type field from an 'infe' FullBox payload.
// Only version >= 2 entries declare an item_type.
func infeItemType(payload []byte) (string, bool) {
	if len(payload) < 4 {
		return "", false
	}
	version := payload[0]
	if version < 2 {
		return "", false
	}
	// version + flags (4), item_ID (2 for v2, 4 for v3+), protection index (2).
	offset := 4 + 2 + 2
	if version >= 3 {
		offset = 4 + 4 + 2
	}
	if len(payload) < offset+4 {
		return "", false
	}
	return string(payload[offset : offset+4]), true
}

// findBox scans sibling boxes in data and returns the payload of the first
// box with the given type, or nil.
func findBox(data []byte, boxType string) []byte {
	var found []byte
	walkBoxes(data, func(t string, payload []byte) {
		if found == nil && t == boxType {
			found = payload
		}
	})
	return found
}

// walkBoxes iterates the sibling boxes in data, invoking fn with each box's
// type and payload.  Stops quietly on a truncated or corrupt header.
func walkBoxes(data []byte, fn func(boxType string, payload []byte)) {
	offset := 0
	for offset+8 <= len(data) {
		size := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		boxType := string(data[offset+4 : offset+8])
		headerLen := 8

		switch size {
		case 0:
			// Box extends to the end of the enclosing container.
			size = len(data) - offset
		case 1:
			// 64-bit largesize follows the type.
			if offset+16 > len(data) {
				return
			}
			size64 := binary.BigEndian.Uint64(data[offset+8 : offset+16])
			if size64 > uint64(len(data)-offset) {
				return
			}
			size = int(size64)
			headerLen = 16
		}

		if size < headerLen || offset+size > len(data) {
			return
		}
		fn(boxType, data[offset+headerLen:offset+size])
		offset += size
	}
}
