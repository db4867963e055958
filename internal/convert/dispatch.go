// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/docconvert/internal/format"
	"github.com/pdiddy/docconvert/pkg/types"
)

// Strategies binds each dispatchable StrategyKind to its implementation.
type Strategies struct {
	Rasterize StrategyFunc
	Embed     StrategyFunc
	Copy      StrategyFunc
	External  StrategyFunc
}

// Request describes one dispatch.
type Request struct {
	JobID        types.JobID
	InputPath    string
	OutputFormat types.Format

	// OutputPath is the destination file. Empty means OutputPathFor(input,
	// "", format).
	OutputPath string
}

// Dispatcher classifies a request and runs the matching strategy. It allows
// at most one in-flight dispatch per job; requests without a JobID are not
// tracked.
type Dispatcher struct {
	table map[format.StrategyKind]StrategyFunc
	log   *slog.Logger

	mu       sync.Mutex
	inFlight map[types.JobID]struct{}
}

// NewDispatcher returns a Dispatcher over s.
func NewDispatcher(s Strategies, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		table: map[format.StrategyKind]StrategyFunc{
			format.RasterizeToImage:     s.Rasterize,
			format.EmbedImageAsDocument: s.Embed,
			format.CopyDocument:         s.Copy,
			format.ExternalToolConvert:  s.External,
		},
		log:      logger,
		inFlight: make(map[types.JobID]struct{}),
	}
}

// OutputPathFor returns <dir>/<base>.<format> for input. An empty dir means
// the input's own directory.
func OutputPathFor(input, dir string, f types.Format) string {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+"."+string(f))
}

// Dispatch runs the strategy for req. Unsupported pairs fail without
// touching the filesystem. Progress passed to the strategy is clamped to
// [0, 1] and never decreases; a successful run always ends at 1.0.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request, progress ProgressFunc) Outcome {
	src := types.FormatFromPath(req.InputPath)
	kind := format.Classify(src, req.OutputFormat)
	if kind == format.Unsupported {
		return failed(NewError(KindUnsupportedConversion, req.InputPath,
			fmt.Sprintf("%s to %s is not supported", src, req.OutputFormat), nil))
	}
	strategy := d.table[kind]
	if strategy == nil {
		return failed(NewError(KindUnsupportedConversion, req.InputPath,
			fmt.Sprintf("no %s strategy configured", kind), nil))
	}

	if !d.acquire(req.JobID) {
		return failed(NewError(KindDispatchInProgress, req.InputPath,
			fmt.Sprintf("job %s is already converting", req.JobID), nil))
	}
	defer d.release(req.JobID)

	output := req.OutputPath
	if output == "" {
		output = OutputPathFor(req.InputPath, "", req.OutputFormat)
	}

	d.log.Debug("dispatching", "job", req.JobID, "strategy", kind, "input", req.InputPath, "output", output)

	tracker := &progressTracker{report: progress}
	outcome := strategy(ctx, req.InputPath, output, tracker.update)
	if !outcome.Success {
		if outcome.Err == nil {
			outcome.Err = NewError(KindWriteFailed, output, "strategy reported failure without an error", nil)
		}
		outcome.Err = normalize(outcome.Err, req.InputPath)
		outcome.OutputLocation = ""
		return outcome
	}
	tracker.update(1.0)
	return outcome
}

func (d *Dispatcher) acquire(id types.JobID) bool {
	if id == "" {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[id]; busy {
		return false
	}
	d.inFlight[id] = struct{}{}
	return true
}

func (d *Dispatcher) release(id types.JobID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, id)
}

// progressTracker forwards monotonically non-decreasing values in [0, 1].
type progressTracker struct {
	report ProgressFunc
	last   float64
	seen   bool
}

func (p *progressTracker) update(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if p.seen && v <= p.last {
		return
	}
	p.last, p.seen = v, true
	if p.report != nil {
		p.report(v)
	}
}
