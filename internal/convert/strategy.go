// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements the conversion strategies and the dispatcher
// that selects one for a (source, destination) format pair.
package convert

import (
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
)

// ProgressFunc receives fractional progress in [0, 1].
type ProgressFunc func(float64)

// Outcome is the result of one strategy run. On success OutputLocation is
// the written file, or the output directory for multi-page raster output.
type Outcome struct {
	Success        bool
	OutputLocation string
	Err            error
}

// Kind returns the failure kind, or "" on success.
func (o Outcome) Kind() Kind {
	return KindOf(o.Err)
}

func succeeded(location string) Outcome {
	return Outcome{Success: true, OutputLocation: location}
}

func failed(err *Error) Outcome {
	return Outcome{Err: err}
}

// StrategyFunc converts input into output, reporting progress.
type StrategyFunc func(ctx context.Context, input, output string, progress ProgressFunc) Outcome

// DocumentEngine opens paged documents for rendering and re-serialization.
type DocumentEngine interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document is an opened paged document.
type Document interface {
	// PageCount returns the number of pages (N >= 0).
	PageCount() int

	// RenderPage rasterizes page index (0-based) at scale times the nominal
	// page size.
	RenderPage(ctx context.Context, index int, scale float64) (image.Image, error)

	// Save re-serializes the document to w.
	Save(w io.Writer) error

	Close() error
}

// writeAtomic writes to a temp file next to path and renames it into place,
// replacing any existing file.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	writeErr := write(tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return closeErr
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
