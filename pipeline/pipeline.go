// Package pipeline wires scrub steps together, runs hooks, and retries
// transient failures.
package pipeline

import (
	"context"
	"time"

	"github.com/metawipe/metawipe/core"
	apperrors "github.com/metawipe/metawipe/errors"
)

// Pipeline executes a sequence of Steps with hook and retry support.
type Pipeline struct {
	steps      []core.Step
	hooks      []core.Hook
	maxRetries int
	retryDelay time.Duration
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Use appends steps.  Returns the same Pipeline for chaining.
func (p *Pipeline) Use(s ...core.Step) *Pipeline {
	p.steps = append(p.steps, s...)
	return p
}

// AddHook registers an observer.
func (p *Pipeline) AddHook(h core.Hook) *Pipeline {
	p.hooks = append(p.hooks, h)
	return p
}

// WithRetry sets the maximum retry count and delay for transient failures.
func (p *Pipeline) WithRetry(maxRetries int, delay time.Duration) *Pipeline {
	p.maxRetries = maxRetries
	p.retryDelay = delay
	return p
}

// Run executes the pipeline on job and returns the final ScrubJob.
func (p *Pipeline) Run(ctx context.Context, job *core.ScrubJob) (*core.ScrubJob, error) {
	current := job
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryPipeline, step.Name(), err)
		}
		result, err := p.runStep(ctx, step, current)
		if err != nil {
			return nil, err
		}
		current = result
	}
	return current, nil
}

// runStep executes a single step, calling hooks and retrying transient errors.
func (p *Pipeline) runStep(ctx context.Context, step core.Step, job *core.ScrubJob) (*core.ScrubJob, error) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, step.Name(), job)
	}

	var (
		result *core.ScrubJob
		err    error
	)

	attempts := p.maxRetries + 1
	start := time.Now()
	for i := 0; i < attempts; i++ {
		result, err = step.Execute(ctx, job)
		if err == nil || !apperrors.IsRetryable(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			err = apperrors.Wrap(apperrors.CategoryPipeline, step.Name(), ctx.Err())
			i = attempts
		case <-time.After(p.retryDelay):
		}
	}
	elapsed := time.Since(start)

	for _, h := range p.hooks {
		h.AfterStep(ctx, step.Name(), result, elapsed, err)
	}
	return result, err
}

var _ core.Runner = (*Pipeline)(nil)
