package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/metawipe/metawipe/errors"
)

// Worker executes scrub requests strictly sequentially on a single dedicated
// goroutine.  The request and response channels both have capacity 1; only
// one request is ever in flight because callers await each response before
// sending the next.  There is no cancellation primitive for an in-flight
// request: discarding the worker abandons, but does not interrupt, a running
// decode.
type Worker struct {
	run     Runner
	timeout time.Duration
	logger  Logger

	requests  chan Request
	responses chan Response
	shutdown  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	wg        sync.WaitGroup
}

// NewWorker creates a Worker around the given pipeline runner.  timeout
// bounds a single scrub; 0 means no bound.
func NewWorker(run Runner, timeout time.Duration) *Worker {
	return &Worker{
		run:       run,
		timeout:   timeout,
		requests:  make(chan Request, 1),
		responses: make(chan Response, 1),
		shutdown:  make(chan struct{}),
	}
}

// SetLogger attaches a structured logger.
func (w *Worker) SetLogger(l Logger) { w.logger = l }

// Start launches the worker goroutine.  Idempotent.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		w.wg.Add(1)
		go w.loop()
	})
}

// Stop shuts the worker down after any in-flight request completes.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.shutdown)
		w.wg.Wait()
	})
}

// Send hands a request to the worker.  The request's byte buffer is
// transferred with it; the caller must not touch it afterwards.  Returns a
// transport error when the worker is not running.
func (w *Worker) Send(req Request) error {
	if !w.started.Load() {
		return apperrors.New(apperrors.CategoryTransport, "worker.send", apperrors.ErrWorkerNotStarted)
	}
	select {
	case <-w.shutdown:
		return apperrors.New(apperrors.CategoryTransport, "worker.send", apperrors.ErrWorkerNotStarted)
	case w.requests <- req:
		return nil
	}
}

// Responses exposes the response channel.  Responses are matched to requests
// purely by ID equality.
func (w *Worker) Responses() <-chan Response { return w.responses }

// Do sends req and blocks until the response carrying the same ID arrives or
// ctx is done.  This is the synchronous single-flight path used by the
// orchestrator.
func (w *Worker) Do(ctx context.Context, req Request) (Response, error) {
	if err := w.Send(req); err != nil {
		return Response{}, err
	}
	for {
		select {
		case <-ctx.Done():
			return Response{}, apperrors.Wrap(apperrors.CategoryTransport, "worker.do", ctx.Err())
		case resp := <-w.responses:
			if resp.ID == req.ID {
				return resp, nil
			}
			// A stale response from an abandoned wait; drop it and keep
			// waiting for ours.
			if w.logger != nil {
				w.logger.Warn("worker.response.unmatched", "got", resp.ID, "want", req.ID)
			}
		}
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.shutdown:
			return
		case req := <-w.requests:
			resp := w.handle(req)
			select {
			case <-w.shutdown:
				return
			case w.responses <- resp:
			}
		}
	}
}

// handle runs one request through the pipeline.  All failure is converted to
// the ok:false response variant; a panic in a codec must not cross the
// channel boundary as anything but data.
func (w *Worker) handle(req Request) (resp Response) {
	resp.ID = req.ID

	defer func() {
		if r := recover(); r != nil {
			resp.OK = false
			resp.Err = fmt.Sprintf("internal: %v", r)
			if w.logger != nil {
				w.logger.Error("worker.panic", "id", req.ID, "file", req.FileName, "panic", r)
			}
		}
	}()

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	job := &ScrubJob{
		Source: RawImage{
			FileName: req.FileName,
			MIMEType: req.MIMEType,
			Bytes:    req.Bytes,
		},
		OutputFormat: req.OutputFormat,
		Quality:      req.Quality,
	}

	done, err := w.run.Run(ctx, job)
	if err != nil {
		resp.OK = false
		resp.Err = err.Error()
		return resp
	}

	resp.OK = true
	resp.CleanedBytes = done.CleanedBytes
	resp.CleanedMIMEType = done.CleanedMIMEType
	resp.Before = done.Before
	resp.After = done.After
	return resp
}
