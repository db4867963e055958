// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfium opens, renders and re-serializes PDFs with PDFium running
// as WebAssembly.
package pdfium

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"

	"github.com/pdiddy/docconvert/internal/convert"
)

// nominalDPI is the resolution at which a PDF page has its nominal size.
const nominalDPI = 72

const instanceTimeout = 30 * time.Second

// Engine implements convert.DocumentEngine. The WebAssembly pool is started
// on first use and shared by every document the engine opens.
type Engine struct {
	once    sync.Once
	pool    pdfium.Pool
	poolErr error
}

// NewEngine returns an Engine. No PDFium instance is started until Open.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) init() {
	e.pool, e.poolErr = webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
}

// Close shuts down the PDFium pool.
func (e *Engine) Close() error {
	if e.pool == nil {
		return nil
	}
	return e.pool.Close()
}

// Open loads the PDF at path and reads its page count.
func (e *Engine) Open(ctx context.Context, path string) (convert.Document, error) {
	e.once.Do(e.init)
	if e.poolErr != nil {
		return nil, fmt.Errorf("init pdfium: %w", e.poolErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := e.pool.GetInstance(instanceTimeout)
	if err != nil {
		return nil, fmt.Errorf("get pdfium instance: %w", err)
	}

	doc, err := instance.OpenDocument(&requests.OpenDocument{FilePath: &path})
	if err != nil {
		instance.Close()
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}

	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		instance.Close()
		return nil, fmt.Errorf("get page count of %s: %w", path, err)
	}

	return &document{
		instance: instance,
		handle:   doc.Document,
		pages:    count.PageCount,
	}, nil
}

// document is an open PDF bound to one PDFium instance until Close.
type document struct {
	instance pdfium.Pdfium
	handle   references.FPDF_DOCUMENT
	pages    int
}

func (d *document) PageCount() int { return d.pages }

func (d *document) RenderPage(ctx context.Context, index int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rendered, err := d.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: d.handle,
				Index:    index,
			},
		},
		DPI: int(math.Round(nominalDPI * scale)),
	})
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index+1, err)
	}
	defer rendered.Cleanup()

	// The rendered buffer is released by Cleanup, so copy it out.
	src := rendered.Result.Image
	img := image.NewRGBA(src.Bounds())
	copy(img.Pix, src.Pix)
	return img, nil
}

func (d *document) Save(w io.Writer) error {
	_, err := d.instance.FPDF_SaveAsCopy(&requests.FPDF_SaveAsCopy{
		Document:   d.handle,
		FileWriter: w,
	})
	if err != nil {
		return fmt.Errorf("save PDF: %w", err)
	}
	return nil
}

func (d *document) Close() error {
	_, closeErr := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: d.handle})
	if err := d.instance.Close(); err != nil {
		return err
	}
	return closeErr
}
