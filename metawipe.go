// Package metawipe removes embedded metadata (EXIF, XMP, IPTC) from images
// by decoding pixel data and re-encoding into a clean container, then proves
// the result by re-running detection on both the original and the output.
package metawipe

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/metawipe/metawipe/adapters/decoder"
	"github.com/metawipe/metawipe/adapters/encoder"
	"github.com/metawipe/metawipe/adapters/storage"
	"github.com/metawipe/metawipe/config"
	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/metadata"
	"github.com/metawipe/metawipe/pipeline"
	"github.com/metawipe/metawipe/utils"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
	HEIF = core.FormatHEIF
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Scrubber is the primary entry point.  It owns the codec registry, the
// single-flight scrub worker, and the batch orchestrator.
type Scrubber struct {
	cfg    config.Config
	reg    *core.DefaultRegistry
	pipe   *pipeline.Pipeline
	worker *core.Worker
	orch   *core.Orchestrator
	heif   *decoder.HEIF
}

// New creates a fully wired Scrubber with the native JPEG/PNG/WebP codecs
// registered.  HEIC/HEIF/AVIF decoding is opted into with EnableHEIF, since
// it brings up the libvips runtime.
func New(cfg config.Config) (*Scrubber, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryConfig, "new", err)
	}

	reg := core.NewRegistry()
	native := decoder.NewNative()
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatUnknown} {
		reg.RegisterDecoder(f, native)
	}
	reg.RegisterEncoder(core.FormatJPEG, encoder.NewJPEG())
	reg.RegisterEncoder(core.FormatPNG, encoder.NewPNG())
	reg.RegisterEncoder(core.FormatWebP, encoder.NewWebP())

	pipe := pipeline.New().
		Use(pipeline.Scrub(reg)...).
		WithRetry(cfg.MaxRetries, cfg.RetryDelay)

	worker := core.NewWorker(pipe, cfg.JobTimeout)
	orch := core.NewOrchestrator(worker)

	s := &Scrubber{
		cfg:    cfg,
		reg:    reg,
		pipe:   pipe,
		worker: worker,
		orch:   orch,
	}
	if err := s.wireStorage(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scrubber) wireStorage() error {
	switch s.cfg.Storage {
	case config.StorageNone:
		return nil
	case config.StorageLocal:
		store, err := storage.NewLocal(s.cfg.Local.RootDir, 0)
		if err != nil {
			return apperrors.Wrap(apperrors.CategoryStorage, "new", err)
		}
		s.orch.SetStore(store)
		return nil
	case config.StorageS3:
		// The S3 client is injected separately; see SetStore.
		return nil
	}
	return nil
}

// EnableHEIF registers the libvips-backed HEIC/HEIF/AVIF decoder.  Call
// once, before Start.
func (s *Scrubber) EnableHEIF() {
	s.heif = decoder.NewHEIF(s.cfg.Vips)
	s.reg.RegisterDecoder(core.FormatHEIF, s.heif)
}

// SetLogger attaches a structured logger to the worker and orchestrator.
func (s *Scrubber) SetLogger(l core.Logger) {
	s.worker.SetLogger(l)
	s.orch.SetLogger(l)
}

// SetStore overrides the cleaned-output store (e.g. an S3 adapter built with
// an injected client).
func (s *Scrubber) SetStore(store core.CleanedStore) { s.orch.SetStore(store) }

// AddHook registers an observer for scrub step events.
func (s *Scrubber) AddHook(h core.Hook) { s.pipe.AddHook(h) }

// Registry exposes the codec registry so callers can register custom
// decoders or encoders.
func (s *Scrubber) Registry() core.Registry { return s.reg }

// Start launches the scrub worker.
func (s *Scrubber) Start() { s.worker.Start() }

// Stop shuts the worker down and releases codec resources.
func (s *Scrubber) Stop() {
	s.worker.Stop()
	if s.heif != nil {
		s.heif.Shutdown()
	}
}

// OnProgress registers a callback invoked after each batch item reaches a
// terminal status.
func (s *Scrubber) OnProgress(fn func(index int, item *core.BatchItem)) {
	s.orch.Progress = fn
}

// ScrubOne runs a single image through the scrub-and-verify pipeline via the
// worker and returns its result.  All failure is data: decode and encode
// errors come back in the failure variant, never as a Go panic.
func (s *Scrubber) ScrubOne(ctx context.Context, raw core.RawImage, out core.Format, quality float64) core.ScrubResult {
	req := core.Request{
		ID:           uuid.NewString(),
		FileName:     raw.FileName,
		MIMEType:     raw.MIMEType,
		Bytes:        utils.CloneBytes(raw.Bytes),
		OutputFormat: out,
		Quality:      quality,
	}
	resp, err := s.worker.Do(ctx, req)
	if err != nil {
		return core.ScrubFailure(err)
	}
	return resp.Result()
}

// NewBatch wraps raw images into a pending batch.
func (s *Scrubber) NewBatch(raws []core.RawImage) *core.Batch { return core.NewBatch(raws) }

// Run processes every pending batch item sequentially, isolating per-item
// failures.
func (s *Scrubber) Run(ctx context.Context, b *core.Batch, out core.Format, quality float64) error {
	return s.orch.Run(ctx, b, out, quality)
}

// Inspect runs metadata detection over raw bytes without scrubbing.
func (s *Scrubber) Inspect(data []byte) metadata.Snapshot { return metadata.Inspect(data) }

// Defaults returns the configured default output format and quality.
func (s *Scrubber) Defaults() (core.Format, float64) {
	return core.Format(s.cfg.DefaultFormat), s.cfg.DefaultQuality
}

// ── Source constructors ───────────────────────────────────────────────────────

// FromReader drains r into a RawImage, honouring the configured size limit.
func (s *Scrubber) FromReader(ctx context.Context, r io.Reader, fileName, mimeType string) (core.RawImage, error) {
	limited := utils.LimitReader(r, s.cfg.MaxImageBytes)
	buf, err := utils.DrainReader(ctx, limited, s.cfg.ChunkSize)
	if err != nil {
		return core.RawImage{}, apperrors.Wrap(apperrors.CategoryInput, "from_reader", err)
	}
	raw := core.RawImage{
		FileName: fileName,
		MIMEType: mimeType,
		Bytes:    utils.CloneBytes(buf.Bytes()),
	}
	utils.ReleaseBuffer(buf)
	return raw, nil
}
