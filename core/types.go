package core

import (
	"image"
	"strings"

	"github.com/metawipe/metawipe/metadata"
	"github.com/metawipe/metawipe/utils"
)

// Format identifies an image container/codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatHEIF    Format = "heif" // covers HEIC, HEIF, and AVIF
	FormatUnknown Format = "unknown"
)

// MIMEType returns the canonical MIME string for a format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatHEIF:
		return "image/heif"
	}
	return "application/octet-stream"
}

// FormatFromMIME maps a declared MIME type to a Format.
func FormatFromMIME(mime string) Format {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return FormatJPEG
	case "image/png":
		return FormatPNG
	case "image/webp":
		return FormatWebP
	case "image/heic", "image/heif", "image/heic-sequence", "image/heif-sequence", "image/avif":
		return FormatHEIF
	}
	return FormatUnknown
}

// ResolveFormat applies the dispatch rule: a file name extension or MIME type
// containing "heic", "heif", or "avif" (case-insensitive) selects the HEIF
// path; otherwise the declared MIME decides, falling back to magic-byte
// sniffing when the MIME is empty or unrecognised.  Callers must supply at
// least one recognisable hint for HEIF-family files or they will be routed to
// the native decode path and fail there.
func ResolveFormat(mime, fileName string, data []byte) Format {
	hint := strings.ToLower(mime + " " + fileName)
	for _, probe := range []string{"heic", "heif", "avif"} {
		if strings.Contains(hint, probe) {
			return FormatHEIF
		}
	}
	if f := FormatFromMIME(mime); f != FormatUnknown {
		return f
	}
	return Format(utils.DetectFormat(data))
}

// RawImage is an immutable input: raw bytes plus the caller's declared MIME
// type and file name.  The pipeline never mutates it.
type RawImage struct {
	FileName string
	MIMEType string
	Bytes    []byte
}

// PixelBuffer is an uncompressed decoded raster: width, height, and a
// row-major RGBA sample buffer.  It is produced once per scrub, owned by the
// re-encode step until consumed, then discarded.
type PixelBuffer struct {
	Width  int
	Height int
	RGBA   *image.RGBA
}

// NewPixelBuffer wraps an RGBA image.
func NewPixelBuffer(rgba *image.RGBA) *PixelBuffer {
	b := rgba.Bounds()
	return &PixelBuffer{Width: b.Dx(), Height: b.Dy(), RGBA: rgba}
}

// CleanedImage is the success payload of a scrub.
type CleanedImage struct {
	Bytes    []byte
	MIMEType string
	Before   metadata.Snapshot
	After    metadata.Snapshot
}

// ScrubResult is a tagged union: exactly one of Cleaned or Err is set.
type ScrubResult struct {
	Cleaned *CleanedImage
	Err     error
}

// OK reports whether the result is the success variant.
func (r ScrubResult) OK() bool { return r.Err == nil && r.Cleaned != nil }

// ScrubSuccess builds the success variant.
func ScrubSuccess(c *CleanedImage) ScrubResult { return ScrubResult{Cleaned: c} }

// ScrubFailure builds the failure variant.
func ScrubFailure(err error) ScrubResult { return ScrubResult{Err: err} }

// Status is the batch-item lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// BatchItem wraps one RawImage with its processing state.  It is mutated only
// by the orchestrator while a scrub is in flight; Done and Error are terminal
// until an explicit batch reset.
type BatchItem struct {
	ID     string
	Raw    RawImage
	Status Status
	Result *ScrubResult // set once Status is done or error
}

// ScrubJob is the unit of work flowing through the pipeline steps.  Fields
// are populated stage by stage: Before by inspection, Pixels by decode,
// Cleaned* by encode, After by verification.
type ScrubJob struct {
	Source       RawImage
	SourceFormat Format
	OutputFormat Format
	Quality      float64 // 0-1, clamped by the encoder

	Before metadata.Snapshot
	Pixels *PixelBuffer

	CleanedBytes    []byte
	CleanedMIMEType string
	After           metadata.Snapshot
}

// Request is one scrub request sent to the worker.  The byte buffer is handed
// over with the request; the sender must not reuse it afterwards.
type Request struct {
	ID           string
	FileName     string
	MIMEType     string
	Bytes        []byte
	OutputFormat Format
	Quality      float64
}

// Response is the worker's reply, matched to its Request purely by ID.
// Failure is always represented as data; no error crosses the channel as a
// panic or a Go error value.
type Response struct {
	ID string
	OK bool

	// Success variant.
	CleanedBytes    []byte
	CleanedMIMEType string
	Before          metadata.Snapshot
	After           metadata.Snapshot

	// Failure variant.
	Err string
}

// Result converts the wire response into a ScrubResult, re-wrapping the
// failure message.
func (r Response) Result() ScrubResult {
	if !r.OK {
		return ScrubFailure(&ResponseError{Message: r.Err})
	}
	return ScrubSuccess(&CleanedImage{
		Bytes:    r.CleanedBytes,
		MIMEType: r.CleanedMIMEType,
		Before:   r.Before,
		After:    r.After,
	})
}

// ResponseError carries a failure message received over the worker channel.
type ResponseError struct {
	Message string
}

func (e *ResponseError) Error() string { return e.Message }
