package core

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	apperrors "github.com/metawipe/metawipe/errors"
	"github.com/metawipe/metawipe/utils"
)

// Batch is an ordered list of items to scrub.
type Batch struct {
	items []*BatchItem
}

// NewBatch wraps raw images into pending batch items, assigning each a
// unique id.
func NewBatch(raws []RawImage) *Batch {
	items := make([]*BatchItem, len(raws))
	for i, raw := range raws {
		items[i] = &BatchItem{
			ID:     uuid.NewString(),
			Raw:    raw,
			Status: StatusPending,
		}
	}
	return &Batch{items: items}
}

// Items returns the batch items in input order.
func (b *Batch) Items() []*BatchItem { return b.items }

// Len returns the number of items.
func (b *Batch) Len() int { return len(b.items) }

// Statuses returns the per-item statuses in input order.
func (b *Batch) Statuses() []Status {
	out := make([]Status, len(b.items))
	for i, it := range b.items {
		out[i] = it.Status
	}
	return out
}

// Reset returns every item to pending and discards prior results.  This is
// the only way out of the terminal done/error states.
func (b *Batch) Reset() {
	for _, it := range b.items {
		it.Status = StatusPending
		it.Result = nil
	}
}

// Orchestrator sequences per-file scrub requests over a single worker.
// Processing is strictly one item at a time in input order; a failed item is
// recorded and never aborts the rest of the queue.
type Orchestrator struct {
	worker *Worker
	store  CleanedStore
	logger Logger

	// Progress, when set, is called after each item reaches a terminal
	// status.
	Progress func(index int, item *BatchItem)
}

// NewOrchestrator creates an Orchestrator over a started worker.
func NewOrchestrator(w *Worker) *Orchestrator {
	return &Orchestrator{worker: w}
}

// SetLogger attaches a structured logger.
func (o *Orchestrator) SetLogger(l Logger) { o.logger = l }

// SetStore enables persistence of cleaned outputs.
func (o *Orchestrator) SetStore(s CleanedStore) { o.store = s }

// Run processes every pending item of b.  It returns an error only for
// transport failures (worker not started, context cancelled between items);
// per-item decode/encode failures land in the item's Result.
func (o *Orchestrator) Run(ctx context.Context, b *Batch, out Format, quality float64) error {
	for i, item := range b.items {
		if item.Status != StatusPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			return apperrors.Wrap(apperrors.CategoryTransport, "orchestrator.run", err)
		}

		item.Status = StatusProcessing
		if o.logger != nil {
			o.logger.Debug("scrub.item.start", "index", i, "file", item.Raw.FileName)
		}

		// The request buffer is handed over to the worker; clone so the
		// caller-owned RawImage stays untouched.
		req := Request{
			ID:           item.ID,
			FileName:     item.Raw.FileName,
			MIMEType:     item.Raw.MIMEType,
			Bytes:        utils.CloneBytes(item.Raw.Bytes),
			OutputFormat: out,
			Quality:      quality,
		}

		resp, err := o.worker.Do(ctx, req)
		if err != nil {
			return err
		}

		result := resp.Result()
		item.Result = &result
		if result.OK() {
			item.Status = StatusDone
			o.persist(ctx, item)
		} else {
			item.Status = StatusError
			if o.logger != nil {
				o.logger.Warn("scrub.item.error", "index", i, "file", item.Raw.FileName, "error", result.Err.Error())
			}
		}

		if o.Progress != nil {
			o.Progress(i, item)
		}
	}
	return nil
}

// persist writes the cleaned bytes and a verification report to the
// configured store.  Storage failures are logged, not propagated: the scrub
// itself succeeded.
func (o *Orchestrator) persist(ctx context.Context, item *BatchItem) {
	if o.store == nil || item.Result == nil || !item.Result.OK() {
		return
	}
	cleaned := item.Result.Cleaned
	key := StorageKey{Path: cleanedName(item.Raw.FileName, cleaned.MIMEType)}
	report := map[string]string{
		"source":      item.Raw.FileName,
		"mime":        cleaned.MIMEType,
		"before_exif": fmt.Sprintf("%t", cleaned.Before.HasExif),
		"before_xmp":  fmt.Sprintf("%t", cleaned.Before.HasXmp),
		"before_iptc": fmt.Sprintf("%t", cleaned.Before.HasIptc),
		"after_exif":  fmt.Sprintf("%t", cleaned.After.HasExif),
		"after_xmp":   fmt.Sprintf("%t", cleaned.After.HasXmp),
		"after_iptc":  fmt.Sprintf("%t", cleaned.After.HasIptc),
	}
	if err := o.store.Put(ctx, key, utils.BytesReader(cleaned.Bytes), report); err != nil {
		if o.logger != nil {
			o.logger.Error("scrub.persist.error", "file", item.Raw.FileName, "error", err.Error())
		}
	}
}

// cleanedName derives the stored file name from the source name and the
// output MIME type.
func cleanedName(source, mime string) string {
	base := source
	if ext := path.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		base = "image"
	}
	switch mime {
	case "image/png":
		return base + ".clean.png"
	case "image/webp":
		return base + ".clean.webp"
	default:
		return base + ".clean.jpg"
	}
}
