// Package pipeline provides the built-in scrub steps.
package pipeline

import (
	"context"
	"fmt"

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/metadata"
)

// ── Inspect ──────────────────────────────────────────────────────────────────

// InspectStep records the before-snapshot: marker scan plus structured EXIF
// extraction over the original bytes.
type InspectStep struct{}

func (s *InspectStep) Name() string { return "inspect" }

func (s *InspectStep) Execute(ctx context.Context, job *core.ScrubJob) (*core.ScrubJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	out := *job
	out.Before = metadata.Inspect(job.Source.Bytes)
	return &out, nil
}

// ── Decode ───────────────────────────────────────────────────────────────────

// DecodeStep resolves the container format from the declared MIME type and
// file name, then decodes the raw bytes into a pixel buffer via the registry.
type DecodeStep struct {
	Registry core.Registry
}

func (s *DecodeStep) Name() string { return "decode" }

func (s *DecodeStep) Execute(ctx context.Context, job *core.ScrubJob) (*core.ScrubJob, error) {
	if len(job.Source.Bytes) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(), apperrors.ErrEmptyInput)
	}

	format := core.ResolveFormat(job.Source.MIMEType, job.Source.FileName, job.Source.Bytes)
	dec, ok := s.Registry.DecoderFor(format)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryDecode, s.Name(),
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}

	px, err := dec.Decode(ctx, job.Source.Bytes)
	if err != nil {
		return nil, err
	}

	out := *job
	out.SourceFormat = format
	out.Pixels = px
	return &out, nil
}

// ── Encode ───────────────────────────────────────────────────────────────────

// EncodeStep serialises the pixel buffer into the target format.  The buffer
// is consumed here: it is dropped from the job once encoding succeeds.
type EncodeStep struct {
	Registry core.Registry
}

func (s *EncodeStep) Name() string { return "encode" }

func (s *EncodeStep) Execute(ctx context.Context, job *core.ScrubJob) (*core.ScrubJob, error) {
	if job.Pixels == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, s.Name(), apperrors.ErrEmptyInput)
	}

	enc, ok := s.Registry.EncoderFor(job.OutputFormat)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryEncode, s.Name(),
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, job.OutputFormat))
	}

	data, err := enc.Encode(ctx, job.Pixels, job.Quality)
	if err != nil {
		return nil, err
	}

	out := *job
	out.CleanedBytes = data
	out.CleanedMIMEType = enc.MIMEType()
	out.Pixels = nil
	return &out, nil
}

// ── Verify ───────────────────────────────────────────────────────────────────

// VerifyStep re-runs detection over the cleaned bytes to produce the
// after-snapshot.  It reports what it finds without adjustment: if a platform
// encoder reinserted something a scanner flags, the snapshot says so.
type VerifyStep struct{}

func (s *VerifyStep) Name() string { return "verify" }

func (s *VerifyStep) Execute(ctx context.Context, job *core.ScrubJob) (*core.ScrubJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	if len(job.CleanedBytes) == 0 {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), apperrors.ErrEmptyInput)
	}
	out := *job
	out.After = metadata.Inspect(job.CleanedBytes)
	return &out, nil
}

// ── Constructors ─────────────────────────────────────────────────────────────

// Inspect returns the before-snapshot step.
func Inspect() core.Step { return &InspectStep{} }

// Decode returns a decode step bound to the given registry.
func Decode(reg core.Registry) core.Step { return &DecodeStep{Registry: reg} }

// Encode returns an encode step bound to the given registry.
func Encode(reg core.Registry) core.Step { return &EncodeStep{Registry: reg} }

// Verify returns the after-snapshot step.
func Verify() core.Step { return &VerifyStep{} }

// Scrub assembles the full scrub-and-verify pipeline.
func Scrub(reg core.Registry) []core.Step {
	return []core.Step{Inspect(), Decode(reg), Encode(reg), Verify()}
}
