// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"log/slog"

	"github.com/pdiddy/docconvert/internal/batch"
	"github.com/pdiddy/docconvert/internal/conflict"
	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/internal/office"
	"github.com/pdiddy/docconvert/internal/pdfium"
	"github.com/pdiddy/docconvert/internal/queue"
	"github.com/pdiddy/docconvert/internal/recent"
	"github.com/pdiddy/docconvert/pkg/types"
)

// pipeline owns the resources behind one coordinator.
type pipeline struct {
	coord  *batch.Coordinator
	engine *pdfium.Engine
	store  *recent.Store
}

// newPipeline wires the strategies, dispatcher, queue and resolver. A
// recent store that cannot be opened is logged and skipped.
func newPipeline(cfg types.ConverterConfig, logger *slog.Logger) *pipeline {
	engine := pdfium.NewEngine()
	tools := office.NewLocator(cfg.Paths)

	d := convert.NewDispatcher(convert.Strategies{
		Rasterize: convert.NewRasterizer(engine, cfg.RenderConfig, logger).Convert,
		Embed:     convert.NewEmbedder(logger).Convert,
		Copy:      convert.NewCopier(engine, logger).Convert,
		External:  convert.NewExternalConverter(tools, logger).Convert,
	}, logger)

	p := &pipeline{engine: engine}
	opts := batch.Options{OutputDir: cfg.OutputDir, Logger: logger}
	if cfg.DBPath != "" {
		store, err := recent.NewStore(cfg.RecentConfig, logger)
		if err != nil {
			logger.Warn("recent conversions disabled", "error", err)
		} else {
			p.store = store
			opts.Notifier = store
		}
	}

	p.coord = batch.New(queue.New(logger), d, conflict.NewResolver(logger), opts)
	return p
}

func (p *pipeline) Close() error {
	var errs []error
	if p.store != nil {
		errs = append(errs, p.store.Close())
	}
	errs = append(errs, p.engine.Close())
	return errors.Join(errs...)
}
