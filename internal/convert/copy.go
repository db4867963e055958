// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"log/slog"
)

// Copier re-serializes a document to a new path, validating that it opens.
type Copier struct {
	engine DocumentEngine
	log    *slog.Logger
}

// NewCopier returns a Copier using engine to open and save documents.
func NewCopier(engine DocumentEngine, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Copier{engine: engine, log: logger}
}

// Convert opens input and writes it to output.
func (c *Copier) Convert(ctx context.Context, input, output string, progress ProgressFunc) Outcome {
	doc, err := c.engine.Open(ctx, input)
	if err != nil {
		return failed(NewError(KindSourceUnreadable, input, "", err))
	}
	defer doc.Close()

	if err := writeAtomic(output, doc.Save); err != nil {
		return failed(NewError(KindWriteFailed, output, "", err))
	}

	c.log.Debug("document copied", "input", input, "output", output, "pages", doc.PageCount())
	progress(1.0)
	return succeeded(output)
}
