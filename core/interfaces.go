package core

import (
	"context"
	"io"
	"time"
)

// Decoder turns raw container bytes into an uncompressed pixel buffer.
// Implementations live in adapters/decoder/.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (*PixelBuffer, error)
	// CanDecode reports whether this decoder handles the given format.
	CanDecode(format Format) bool
}

// Encoder serialises a pixel buffer into a target container format.  Encoding
// starts from bare RGBA samples, so the output structurally cannot carry any
// metadata block from the source.  Implementations live in adapters/encoder/.
type Encoder interface {
	Encode(ctx context.Context, px *PixelBuffer, quality float64) ([]byte, error)
	MIMEType() string
	CanEncode(format Format) bool
}

// Step is a pipeline stage operating on a ScrubJob.
type Step interface {
	Name() string
	Execute(ctx context.Context, job *ScrubJob) (*ScrubJob, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, job *ScrubJob)
	AfterStep(ctx context.Context, stepName string, job *ScrubJob, d time.Duration, err error)
}

// Runner abstracts the assembled scrub pipeline so core does not import the
// pipeline package (avoiding a circular dependency).
type Runner interface {
	Run(ctx context.Context, job *ScrubJob) (*ScrubJob, error)
}

// Registry maps Format values to Decoder/Encoder implementations.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
}

// CleanedStore persists cleaned outputs and their verification reports.
// Implementations live in adapters/storage/.
type CleanedStore interface {
	Put(ctx context.Context, key StorageKey, r io.Reader, report map[string]string) error
	Get(ctx context.Context, key StorageKey) (io.ReadCloser, error)
	Delete(ctx context.Context, key StorageKey) error
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// StorageKey uniquely identifies a stored cleaned image.
type StorageKey struct {
	Bucket string
	Path   string
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d time.Duration)
	RecordThroughput(bytes int64)
	RecordError(stepName string, category string)
}
