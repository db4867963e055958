// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives submitted jobs through the conflict gate and the
// conversion dispatcher, one job at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pdiddy/docconvert/internal/conflict"
	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/internal/format"
	"github.com/pdiddy/docconvert/internal/queue"
	"github.com/pdiddy/docconvert/pkg/types"
)

// ErrAlreadyRunning is returned by StartAll while a previous run has not
// finished.
var ErrAlreadyRunning = errors.New("batch already running")

// EventType names a job state transition.
type EventType string

const (
	EventJobStarted      EventType = "job_started"
	EventProgress        EventType = "progress"
	EventConflictPending EventType = "conflict_pending"
	EventCompleted       EventType = "completed"
	EventFailed          EventType = "failed"
	EventBatchSummary    EventType = "batch_summary"
)

// Summary aggregates one StartAll run.
type Summary struct {
	Completed int `json:"completed" yaml:"completed"`
	Failed    int `json:"failed" yaml:"failed"`
	Total     int `json:"total" yaml:"total"`
}

// Event reports one transition. Job is a snapshot taken when the event was
// emitted.
type Event struct {
	Type     EventType
	Job      types.Job
	Decision *conflict.Decision // EventConflictPending only
	Err      error              // EventFailed only
	Summary  Summary            // EventBatchSummary only
}

// Dispatcher runs one conversion.
type Dispatcher interface {
	Dispatch(ctx context.Context, req convert.Request, progress convert.ProgressFunc) convert.Outcome
}

// Notifier is told about every successfully produced output.
type Notifier interface {
	NotifyCompleted(path string) error
}

// Options configures a Coordinator.
type Options struct {
	// OutputDir receives outputs. Empty means alongside each input.
	OutputDir string
	Notifier  Notifier
	Logger    *slog.Logger
}

// Coordinator is the caller-facing batch API.
type Coordinator struct {
	queue     *queue.Queue
	dispatch  Dispatcher
	resolver  *conflict.Resolver
	notifier  Notifier
	outputDir string
	log       *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New returns a Coordinator over q.
func New(q *queue.Queue, d Dispatcher, r *conflict.Resolver, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		queue:     q,
		dispatch:  d,
		resolver:  r,
		notifier:  opts.Notifier,
		outputDir: opts.OutputDir,
		log:       logger,
	}
}

// Submit enqueues paths as waiting jobs, all or none. A file name shared
// within paths or with a queued job fails with DuplicateInBatch.
func (c *Coordinator) Submit(paths []string) ([]types.JobID, error) {
	ids, err := c.queue.EnqueueAll(paths)
	if err != nil {
		return nil, err
	}
	c.log.Info("submitted", "jobs", len(ids))
	return ids, nil
}

// StartAll processes waiting jobs in FIFO order, converting each to f, and
// returns the event stream. The stream ends with EventBatchSummary and is
// then closed. The caller must drain it; the run blocks on each send.
// Processing stops early when ctx is done or CancelInFlight is called.
func (c *Coordinator) StartAll(ctx context.Context, f types.Format) (<-chan Event, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()

	events := make(chan Event)
	go func() {
		defer close(events)
		defer func() {
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
		}()
		c.loop(ctx, f, events)
	}()
	return events, nil
}

func (c *Coordinator) loop(ctx context.Context, f types.Format, events chan<- Event) {
	emit := func(e Event) { events <- e }
	var sum Summary

	for first := true; first || !c.queue.Halted(); first = false {
		if ctx.Err() != nil {
			break
		}
		var jobErr error
		job, ok := c.queue.ProcessNext(ctx, func(ctx context.Context, job types.Job, progress func(float64)) (string, error) {
			out, err := c.run(ctx, f, job, progress, emit)
			jobErr = err
			return out, err
		})
		if !ok {
			break
		}

		sum.Total++
		switch job.Status {
		case types.JobCompleted:
			sum.Completed++
			c.log.Info("job completed", "job", job.ID, "input", job.InputPath, "output", job.OutputPath)
			c.notify(job.OutputPath)
			emit(Event{Type: EventCompleted, Job: job})
		default:
			sum.Failed++
			if jobErr == nil || convert.KindOf(jobErr) != convert.Kind(job.ErrorKind) {
				jobErr = convert.NewError(convert.Kind(job.ErrorKind), job.InputPath, job.Error, nil)
			}
			c.log.Warn("job failed", "job", job.ID, "input", job.InputPath, "error", jobErr)
			emit(Event{Type: EventFailed, Job: job, Err: jobErr})
		}
	}

	c.log.Info("batch finished", "completed", sum.Completed, "failed", sum.Failed, "total", sum.Total)
	emit(Event{Type: EventBatchSummary, Summary: sum})
}

// run takes one converting job through the pre-flight checks, the conflict
// gate, and the dispatcher.
func (c *Coordinator) run(ctx context.Context, f types.Format, job types.Job, progress func(float64), emit func(Event)) (string, error) {
	jobCtx, cancel := context.WithCancel(ctx)
	c.setCancel(cancel)
	defer func() {
		c.setCancel(nil)
		cancel()
	}()

	emit(Event{Type: EventJobStarted, Job: job})

	src := types.FormatFromPath(job.InputPath)
	if src == f {
		return "", convert.NewError(convert.KindSameFormatRequested, job.InputPath,
			fmt.Sprintf("file is already %s", f), nil)
	}

	output := convert.OutputPathFor(job.InputPath, c.outputDir, f)
	kind := format.Classify(src, f)
	if kind != format.Unsupported {
		gatePath := output
		if kind == format.RasterizeToImage {
			gatePath = convert.FirstPagePath(output)
		}
		err := c.resolver.Gate(jobCtx, job.ID, gatePath, func(d *conflict.Decision) {
			snap, _ := c.queue.Job(job.ID)
			emit(Event{Type: EventConflictPending, Job: snap, Decision: d})
		})
		if err != nil {
			return "", err
		}
	}

	outcome := c.dispatch.Dispatch(jobCtx, convert.Request{
		JobID:        job.ID,
		InputPath:    job.InputPath,
		OutputFormat: f,
		OutputPath:   output,
	}, func(v float64) {
		progress(v)
		if snap, ok := c.queue.Job(job.ID); ok && snap.Status == types.JobConverting {
			emit(Event{Type: EventProgress, Job: snap})
		}
	})
	if !outcome.Success {
		return "", outcome.Err
	}
	return outcome.OutputLocation, nil
}

func (c *Coordinator) notify(path string) {
	if c.notifier == nil || path == "" {
		return
	}
	if err := c.notifier.NotifyCompleted(path); err != nil {
		c.log.Warn("recording completed conversion", "path", path, "error", err)
	}
}

func (c *Coordinator) setCancel(cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = cancel
}

// CancelInFlight fails the converting job with UserCancelled, stops its
// strategy, and halts the run after it. Waiting jobs stay waiting.
func (c *Coordinator) CancelInFlight() (types.JobID, bool) {
	id, ok := c.queue.CancelInFlight()
	if !ok {
		return "", false
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	return id, true
}

// Resolve answers a pending conflict decision by id.
func (c *Coordinator) Resolve(decisionID string, res conflict.Resolution) error {
	return c.resolver.ResolveID(decisionID, res)
}

// Running reports whether a StartAll run is in progress.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Jobs returns snapshots of every job in FIFO order.
func (c *Coordinator) Jobs() []types.Job { return c.queue.Jobs() }

// RemoveJob removes a job that is not converting.
func (c *Coordinator) RemoveJob(id types.JobID) error { return c.queue.Remove(id) }

// ClearCompleted removes completed jobs.
func (c *Coordinator) ClearCompleted() int { return c.queue.ClearCompleted() }

// ClearAll removes every job that is not converting.
func (c *Coordinator) ClearAll() int { return c.queue.ClearAll() }
