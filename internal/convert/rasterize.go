// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/pdiddy/docconvert/pkg/types"
)

type encodeFunc func(w io.Writer, img image.Image) error

// Rasterizer renders each page of a document to its own image file.
type Rasterizer struct {
	engine   DocumentEngine
	scale    float64
	encoders map[types.Format]encodeFunc
	log      *slog.Logger
}

// NewRasterizer returns a Rasterizer rendering through engine. The scale is
// raised to types.MinRenderScale when lower.
func NewRasterizer(engine DocumentEngine, cfg types.RenderConfig, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	scale := cfg.Scale
	if scale < types.MinRenderScale {
		scale = types.MinRenderScale
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	encodeJPEG := func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}
	return &Rasterizer{
		engine: engine,
		scale:  scale,
		encoders: map[types.Format]encodeFunc{
			types.FormatPNG:  png.Encode,
			types.FormatJPG:  encodeJPEG,
			types.FormatJPEG: encodeJPEG,
			types.FormatGIF: func(w io.Writer, img image.Image) error {
				return gif.Encode(w, img, nil)
			},
			types.FormatBMP: bmp.Encode,
			types.FormatTIFF: func(w io.Writer, img image.Image) error {
				return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
			},
			types.FormatWEBP: func(w io.Writer, img image.Image) error {
				return nativewebp.Encode(w, img, nil)
			},
		},
		log: logger,
	}
}

// PageFileName returns the name of the raster file for a 1-based page.
func PageFileName(base string, page int, f types.Format) string {
	return fmt.Sprintf("%s_page%d.%s", base, page, f)
}

// FirstPagePath returns the path of the first page file that rasterizing
// into output would write.
func FirstPagePath(output string) string {
	dir, base, f := splitOutput(output)
	return filepath.Join(dir, PageFileName(base, 1, f))
}

func splitOutput(output string) (dir, base string, f types.Format) {
	name := filepath.Base(output)
	ext := filepath.Ext(name)
	return filepath.Dir(output), strings.TrimSuffix(name, ext), types.ParseFormat(ext)
}

// Convert renders every page of input to <dir>/<base>_page<i>.<ext>, where
// dir, base and ext come from output. On success the outcome location is
// the directory. Pages that fail are skipped; the run succeeds when at least
// one page was written.
func (r *Rasterizer) Convert(ctx context.Context, input, output string, progress ProgressFunc) Outcome {
	dir, base, f := splitOutput(output)
	encode, ok := r.encoders[f]
	if !ok {
		return failed(NewError(KindWriteFailed, output, fmt.Sprintf("no raster encoder for %s", f), nil))
	}

	doc, err := r.engine.Open(ctx, input)
	if err != nil {
		return failed(NewError(KindSourceUnreadable, input, "", err))
	}
	defer doc.Close()

	n := doc.PageCount()
	if n <= 0 {
		return failed(NewError(KindSourceUnreadable, input, "document has no pages", nil))
	}

	success := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return failed(NewError(KindUserCancelled, input, fmt.Sprintf("cancelled after %d of %d pages", i, n), err))
		}

		pagePath := filepath.Join(dir, PageFileName(base, i+1, f))
		img, err := doc.RenderPage(ctx, i, r.scale)
		if err != nil {
			r.log.Warn("rendering page failed", "input", input, "page", i+1, "error", err)
			continue
		}
		err = writeAtomic(pagePath, func(w io.Writer) error { return encode(w, img) })
		if err != nil {
			r.log.Warn("writing page failed", "path", pagePath, "error", err)
			continue
		}

		success++
		r.log.Debug("page written", "path", pagePath, "page", i+1, "pages", n)
		progress(float64(success) / float64(n))
	}

	if success == 0 {
		return failed(NewError(KindNoPagesConverted, input, fmt.Sprintf("0 of %d pages converted", n), nil))
	}
	if success < n {
		r.log.Warn("partial rasterization", "input", input, "converted", success, "pages", n)
		progress(1.0)
	}
	return succeeded(dir)
}
