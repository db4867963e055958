// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package queue holds submitted conversion jobs in FIFO order and runs them
// one at a time.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/pkg/types"
)

var (
	// ErrNotFound is returned for job ids the queue does not hold.
	ErrNotFound = errors.New("job not found")
	// ErrJobActive is returned when removing the job that is converting.
	ErrJobActive = errors.New("job is converting")
)

// RunFunc converts job, reporting progress, and returns the output
// location. It is called with the job already in the converting state.
type RunFunc func(ctx context.Context, job types.Job, progress func(float64)) (string, error)

// Queue owns its jobs. Callers only see snapshots and change jobs through
// Queue methods.
type Queue struct {
	log *slog.Logger
	now func() time.Time

	mu      sync.Mutex
	jobs    []*types.Job
	current *types.Job
	halted  bool
	subs    map[int]chan types.Job
	nextSub int
}

// New returns an empty queue.
func New(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		log:  logger,
		now:  func() time.Time { return time.Now().UTC() },
		subs: make(map[int]chan types.Job),
	}
}

// Enqueue adds a waiting job for path. It fails with DuplicateInBatch when
// a job with the same file name is already queued.
func (q *Queue) Enqueue(path string) (types.JobID, error) {
	ids, err := q.EnqueueAll([]string{path})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// EnqueueAll adds waiting jobs for paths in order, or none of them. It fails
// with DuplicateInBatch when two paths share a file name or a file name is
// already queued.
func (q *Queue) EnqueueAll(paths []string) ([]types.JobID, error) {
	q.mu.Lock()

	seen := make(map[string]string, len(q.jobs)+len(paths))
	for _, j := range q.jobs {
		seen[filepath.Base(j.InputPath)] = j.InputPath
	}
	for _, p := range paths {
		name := filepath.Base(p)
		if prev, dup := seen[name]; dup {
			q.mu.Unlock()
			return nil, convert.NewError(convert.KindDuplicateInBatch, p,
				fmt.Sprintf("file name %s already used by %s", name, prev), nil)
		}
		seen[name] = p
	}

	ids := make([]types.JobID, len(paths))
	added := make([]types.Job, len(paths))
	for i, p := range paths {
		j := &types.Job{
			ID:          types.JobID(uuid.NewString()),
			InputPath:   p,
			Status:      types.JobWaiting,
			SubmittedAt: q.now(),
		}
		q.jobs = append(q.jobs, j)
		ids[i] = j.ID
		added[i] = *j
	}
	q.mu.Unlock()

	for _, j := range added {
		q.publish(j)
	}
	return ids, nil
}

// ProcessNext moves the first waiting job to converting, runs it to a
// terminal status, and returns its final snapshot. It returns false when no
// job is waiting or another job is converting. Calling it clears a halt
// left by CancelInFlight.
func (q *Queue) ProcessNext(ctx context.Context, run RunFunc) (types.Job, bool) {
	q.mu.Lock()
	if q.current != nil {
		q.mu.Unlock()
		return types.Job{}, false
	}
	q.halted = false
	var job *types.Job
	for _, j := range q.jobs {
		if j.Status == types.JobWaiting {
			job = j
			break
		}
	}
	if job == nil {
		q.mu.Unlock()
		return types.Job{}, false
	}
	job.Status = types.JobConverting
	q.current = job
	started := *job
	q.mu.Unlock()

	q.log.Debug("job started", "job", started.ID, "input", started.InputPath)
	q.publish(started)

	output, err := run(ctx, started, func(v float64) { q.setProgress(job, v) })

	q.mu.Lock()
	q.current = nil
	// CancelInFlight may already have failed the job.
	if job.Status == types.JobConverting {
		if err != nil {
			job.Status = types.JobFailed
			job.ErrorKind = string(convert.KindOf(err))
			job.Error = err.Error()
		} else {
			job.Status = types.JobCompleted
			job.Progress = 1
			job.OutputPath = output
		}
		job.FinishedAt = q.now()
	}
	final := *job
	q.mu.Unlock()

	q.log.Debug("job finished", "job", final.ID, "status", final.Status, "error_kind", final.ErrorKind)
	q.publish(final)
	return final, true
}

func (q *Queue) setProgress(job *types.Job, v float64) {
	if v > 1 {
		v = 1
	}
	q.mu.Lock()
	if job.Status != types.JobConverting || v <= job.Progress {
		q.mu.Unlock()
		return
	}
	job.Progress = v
	snap := *job
	q.mu.Unlock()
	q.publish(snap)
}

// CancelInFlight fails the converting job with UserCancelled and halts
// automatic advancement. Waiting jobs stay waiting. It returns false when
// nothing is converting.
func (q *Queue) CancelInFlight() (types.JobID, bool) {
	q.mu.Lock()
	job := q.current
	if job == nil || job.Status != types.JobConverting {
		q.mu.Unlock()
		return "", false
	}
	job.Status = types.JobFailed
	job.ErrorKind = string(convert.KindUserCancelled)
	job.Error = convert.NewError(convert.KindUserCancelled, job.InputPath, "cancelled by user", nil).Error()
	job.FinishedAt = q.now()
	q.halted = true
	snap := *job
	q.mu.Unlock()

	q.log.Info("job cancelled", "job", snap.ID, "input", snap.InputPath)
	q.publish(snap)
	return snap.ID, true
}

// Halted reports whether CancelInFlight has stopped automatic advancement.
func (q *Queue) Halted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.halted
}

// Remove deletes a job that is not converting.
func (q *Queue) Remove(id types.JobID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, j := range q.jobs {
		if j.ID != id {
			continue
		}
		if j == q.current {
			return ErrJobActive
		}
		q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// ClearCompleted removes completed jobs and returns how many were removed.
func (q *Queue) ClearCompleted() int {
	return q.removeWhere(func(j *types.Job) bool { return j.Status == types.JobCompleted })
}

// ClearAll removes every job except the one converting and returns how
// many were removed.
func (q *Queue) ClearAll() int {
	return q.removeWhere(func(*types.Job) bool { return true })
}

func (q *Queue) removeWhere(match func(*types.Job) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.jobs[:0]
	removed := 0
	for _, j := range q.jobs {
		if j != q.current && match(j) {
			removed++
			continue
		}
		kept = append(kept, j)
	}
	for i := len(kept); i < len(q.jobs); i++ {
		q.jobs[i] = nil
	}
	q.jobs = kept
	return removed
}

// Jobs returns snapshots of every job in FIFO order.
func (q *Queue) Jobs() []types.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]types.Job, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = *j
	}
	return out
}

// Job returns a snapshot of the job with id.
func (q *Queue) Job(id types.JobID) (types.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.ID == id {
			return *j, true
		}
	}
	return types.Job{}, false
}

// Waiting returns the number of waiting jobs.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Status == types.JobWaiting {
			n++
		}
	}
	return n
}

// Subscribe returns a channel receiving a snapshot after every job change.
// Snapshots are dropped when the channel buffer is full. The returned func
// unsubscribes and closes the channel.
func (q *Queue) Subscribe(buffer int) (<-chan types.Job, func()) {
	ch := make(chan types.Job, buffer)
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = ch
	q.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			delete(q.subs, id)
			q.mu.Unlock()
			close(ch)
		})
	}
}

func (q *Queue) publish(j types.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, ch := range q.subs {
		select {
		case ch <- j:
		default:
		}
	}
}
