// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conflict gates jobs whose destination file already exists until
// the caller decides to replace it or cancel the job.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/pkg/types"
)

// Resolution is the caller's answer to a pending conflict.
type Resolution string

const (
	Replace Resolution = "replace"
	Cancel  Resolution = "cancel"
)

// ParseResolution accepts "replace"/"r" and "cancel"/"c".
func ParseResolution(s string) (Resolution, error) {
	switch s {
	case "replace", "r", "R", "Replace":
		return Replace, nil
	case "cancel", "c", "C", "Cancel":
		return Cancel, nil
	default:
		return "", fmt.Errorf("unknown resolution %q: use replace or cancel", s)
	}
}

var (
	// ErrAlreadyResolved is returned when a decision is resolved twice.
	ErrAlreadyResolved = errors.New("conflict decision already resolved")
	// ErrUnknownDecision is returned for decisions the resolver is not
	// holding, e.g. one abandoned by a cancelled job.
	ErrUnknownDecision = errors.New("unknown conflict decision")
	// ErrInvalidResolution is returned for resolutions other than Replace
	// or Cancel.
	ErrInvalidResolution = errors.New("invalid resolution")
)

// Decision is a one-shot record of a detected conflict. It is consumed by
// exactly one Resolve call.
type Decision struct {
	ID           string
	JobID        types.JobID
	ExistingPath string
	CreatedAt    time.Time

	done       chan struct{}
	resolution Resolution
	resolved   bool
}

// Wait blocks until the decision is resolved or ctx is done.
func (d *Decision) Wait(ctx context.Context) (Resolution, error) {
	select {
	case <-d.done:
		return d.resolution, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolver tracks pending decisions.
type Resolver struct {
	log *slog.Logger

	mu      sync.Mutex
	pending map[string]*Decision
}

// NewResolver returns a Resolver with no pending decisions.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{log: logger, pending: make(map[string]*Decision)}
}

// Check returns nil when path does not exist, so the caller proceeds
// without pausing. Otherwise it registers and returns a pending Decision.
func (r *Resolver) Check(jobID types.JobID, path string) *Decision {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	d := &Decision{
		ID:           uuid.NewString(),
		JobID:        jobID,
		ExistingPath: path,
		CreatedAt:    time.Now().UTC(),
		done:         make(chan struct{}),
	}
	r.mu.Lock()
	r.pending[d.ID] = d
	r.mu.Unlock()

	r.log.Info("destination exists, awaiting decision", "job", jobID, "path", path, "decision", d.ID)
	return d
}

// Resolve consumes d with res. A second call returns ErrAlreadyResolved.
func (r *Resolver) Resolve(d *Decision, res Resolution) error {
	if res != Replace && res != Cancel {
		return fmt.Errorf("%w: %q", ErrInvalidResolution, res)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d.resolved {
		return ErrAlreadyResolved
	}
	if _, ok := r.pending[d.ID]; !ok {
		return ErrUnknownDecision
	}
	delete(r.pending, d.ID)
	d.resolution = res
	d.resolved = true
	close(d.done)

	r.log.Info("conflict resolved", "job", d.JobID, "path", d.ExistingPath, "resolution", res)
	return nil
}

// ResolveID resolves the pending decision with the given id.
func (r *Resolver) ResolveID(id string, res Resolution) error {
	r.mu.Lock()
	d, ok := r.pending[id]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownDecision
	}
	return r.Resolve(d, res)
}

// Pending returns the unresolved decisions, oldest first.
func (r *Resolver) Pending() []*Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Decision, 0, len(r.pending))
	for _, d := range r.pending {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// abandon drops d without resolving it.
func (r *Resolver) abandon(d *Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, d.ID)
}

// Gate checks path and, when it exists, hands the decision to notify and
// blocks until it is resolved. It returns nil when the job may write to
// path. Cancel yields a UserCancelledReplace error; a done ctx yields
// UserCancelled.
func (r *Resolver) Gate(ctx context.Context, jobID types.JobID, path string, notify func(*Decision)) error {
	d := r.Check(jobID, path)
	if d == nil {
		return nil
	}
	if notify != nil {
		notify(d)
	}

	res, err := d.Wait(ctx)
	if err != nil {
		r.abandon(d)
		return convert.NewError(convert.KindUserCancelled, path, "cancelled while awaiting replace decision", err)
	}
	if res == Cancel {
		return convert.NewError(convert.KindUserCancelledReplace, path, "existing file kept", nil)
	}
	return nil
}
