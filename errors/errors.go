package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryDecode    Category = "decode"
	CategoryEncode    Category = "encode"
	CategoryExtract   Category = "extract"
	CategoryPipeline  Category = "pipeline"
	CategoryTransport Category = "transport"
	CategoryStorage   Category = "storage"
	CategoryConfig    Category = "config"
	CategoryInput     Category = "input"
)

// ScrubError is the structured error type used throughout the module.
type ScrubError struct {
	Category  Category
	Op        string // operation name
	Err       error
	Retryable bool
}

func (e *ScrubError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ScrubError) Unwrap() error { return e.Err }

// New creates a non-retryable ScrubError.
func New(category Category, op string, err error) *ScrubError {
	return &ScrubError{Category: category, Op: op, Err: err}
}

// Transient creates a retryable ScrubError.
func Transient(op string, err error) *ScrubError {
	return &ScrubError{Category: CategoryTransport, Op: op, Err: err, Retryable: true}
}

// Wrap wraps an existing error with context.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsRetryable reports whether err represents a transient failure.
func IsRetryable(err error) bool {
	var se *ScrubError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var se *ScrubError
	if errors.As(err, &se) {
		return se.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat   = errors.New("unsupported image format")
	ErrEmptyInput          = errors.New("empty input")
	ErrNoImagesInContainer = errors.New("no image items found in container")
	ErrNoPixelData         = errors.New("decoder produced no pixel data")
	ErrWorkerNotStarted    = errors.New("scrub worker not started")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)
