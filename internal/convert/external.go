// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/docconvert/internal/office"
)

// Coarse milestones reported while the external tool runs; the process
// exposes no finer progress.
const (
	progressInvoked  = 0.1
	progressExited   = 0.8
	progressVerified = 1.0
)

// ToolLocator finds the external conversion tool. Available is the
// capability probe consulted before any process is spawned.
type ToolLocator interface {
	Available() bool
	Locate() (office.Tool, error)
}

// ExternalConverter delegates office-document conversion to an installed
// external tool and reconciles the file it produces with the requested
// output path.
type ExternalConverter struct {
	tools ToolLocator
	log   *slog.Logger
}

// NewExternalConverter returns an ExternalConverter using tools.
func NewExternalConverter(tools ToolLocator, logger *slog.Logger) *ExternalConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExternalConverter{tools: tools, log: logger}
}

// Convert runs the tool on input with output's directory as the target and
// blocks until it exits. If the tool named its file differently, the first
// newly created PDF in the directory is moved to output.
func (x *ExternalConverter) Convert(ctx context.Context, input, output string, progress ProgressFunc) Outcome {
	if !x.tools.Available() {
		return failed(NewError(KindToolNotInstalled, input, "", office.ErrNotInstalled))
	}
	tool, err := x.tools.Locate()
	if err != nil {
		return failed(NewError(KindToolNotInstalled, input, "", err))
	}

	outDir := filepath.Dir(output)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return failed(NewError(KindWriteFailed, outDir, "creating output directory", err))
	}
	// A stale file at output would pass the existence check below.
	if err := os.Remove(output); err != nil && !errors.Is(err, os.ErrNotExist) {
		return failed(NewError(KindWriteFailed, output, "removing existing output", err))
	}

	before, err := snapshotPDFs(outDir)
	if err != nil {
		return failed(NewError(KindWriteFailed, outDir, "listing output directory", err))
	}

	x.log.Info("invoking external tool", "tool", tool.Path(), "input", input, "outdir", outDir)
	progress(progressInvoked)

	runErr := tool.ConvertToPDF(ctx, input, outDir)
	if ctx.Err() != nil {
		x.discardNew(outDir, before)
		return failed(NewError(KindUserCancelled, input, "external tool stopped", ctx.Err()))
	}
	if runErr != nil {
		return failed(NewError(KindExternalToolError, input, "", runErr))
	}
	progress(progressExited)

	if err := reconcileOutput(input, output, before); err != nil {
		return failed(err)
	}

	if pages, err := PageCount(output); err != nil {
		x.log.Warn("external tool output does not open as PDF", "output", output, "error", err)
	} else {
		x.log.Info("external tool conversion verified", "output", output, "pages", pages)
	}
	progress(progressVerified)
	return succeeded(output)
}

// discardNew removes PDFs that appeared in dir since before was taken.
func (x *ExternalConverter) discardNew(dir string, before map[string]time.Time) {
	for _, path := range newPDFs(dir, before) {
		if err := os.Remove(path); err != nil {
			x.log.Warn("removing partial output", "path", path, "error", err)
		}
	}
}

// reconcileOutput checks for output first and otherwise moves the first new
// PDF in output's directory into place, preferring one named after input.
func reconcileOutput(input, output string, before map[string]time.Time) *Error {
	if fileExists(output) {
		return nil
	}

	dir := filepath.Dir(output)
	candidates := newPDFs(dir, before)
	if len(candidates) == 0 {
		return NewError(KindOutputNotProduced, output, "no PDF found in "+dir, nil)
	}

	pick := candidates[0]
	expected := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".pdf"
	for _, c := range candidates {
		if filepath.Base(c) == expected {
			pick = c
			break
		}
	}

	if err := os.Rename(pick, output); err != nil {
		return NewError(KindWriteFailed, output, "moving "+pick, err)
	}
	return nil
}

// snapshotPDFs records the modification time of each PDF in dir.
func snapshotPDFs(dir string) (map[string]time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	snap := make(map[string]time.Time)
	for _, e := range entries {
		if e.IsDir() || !isPDFName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snap[e.Name()] = info.ModTime()
	}
	return snap, nil
}

// newPDFs lists PDFs in dir, sorted by name, that are absent from before or
// modified since.
func newPDFs(dir string, before map[string]time.Time) []string {
	after, err := snapshotPDFs(dir)
	if err != nil {
		return nil
	}
	var out []string
	for name, mod := range after {
		prev, seen := before[name]
		if !seen || mod.After(prev) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf") && !strings.HasPrefix(name, ".")
}
