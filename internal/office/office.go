// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package office locates and runs the external document-conversion tool
// (LibreOffice soffice) in headless mode.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNotInstalled is returned when no candidate install path exists.
var ErrNotInstalled = errors.New("external conversion tool not installed")

// DefaultPaths lists the known install locations, checked in order.
var DefaultPaths = []string{
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	"/usr/bin/soffice",
	"/usr/local/bin/soffice",
	"/usr/bin/libreoffice",
	"/usr/lib/libreoffice/program/soffice",
	"/opt/libreoffice/program/soffice",
	"/snap/bin/libreoffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
}

// Tool converts a document to PDF with the external converter.
type Tool interface {
	// Path returns the executable used for conversions.
	Path() string

	// ConvertToPDF runs the tool headless, writing a PDF for input into
	// outDir, and blocks until the process exits. Cancelling ctx kills the
	// process and its children.
	ConvertToPDF(ctx context.Context, input, outDir string) error
}

// ExitError reports a non-zero exit status from the tool.
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %s", e.Code, e.Output)
}

// executor abstracts filesystem probing and process execution for testing.
type executor interface {
	Exists(path string) bool
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	configureProcessGroup(cmd)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// soffice implements Tool for a located LibreOffice binary.
type soffice struct {
	path string
	exec executor
}

func (s *soffice) Path() string { return s.path }

func (s *soffice) ConvertToPDF(ctx context.Context, input, outDir string) error {
	args := []string{
		"--headless",
		"--nologo",
		"--nofirststartwizard",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		input,
	}
	out, err := s.exec.Run(ctx, s.path, args)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("running %s: %w", s.path, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Output: strings.TrimSpace(string(out))}
	}
	return fmt.Errorf("running %s: %w", s.path, err)
}

// Locator finds the tool among a fixed list of candidate paths.
type Locator struct {
	paths []string
	exec  executor
}

var defaultExec = &osExecutor{}

// NewLocator returns a Locator over paths, or DefaultPaths when paths is
// empty.
func NewLocator(paths []string) *Locator {
	return newLocator(defaultExec, paths)
}

func newLocator(exec executor, paths []string) *Locator {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	return &Locator{paths: paths, exec: exec}
}

// Available reports whether any candidate path exists. It never spawns a
// process.
func (l *Locator) Available() bool {
	_, ok := l.find()
	return ok
}

// Locate returns the tool at the first existing candidate path.
func (l *Locator) Locate() (Tool, error) {
	path, ok := l.find()
	if !ok {
		return nil, fmt.Errorf("%w: checked %s", ErrNotInstalled, strings.Join(l.paths, ", "))
	}
	return &soffice{path: path, exec: l.exec}, nil
}

// Paths returns the candidate list in search order.
func (l *Locator) Paths() []string {
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

func (l *Locator) find() (string, bool) {
	for _, p := range l.paths {
		if l.exec.Exists(p) {
			return p, true
		}
	}
	return "", false
}
