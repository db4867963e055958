// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const embeddedImageName = "page1"

// Embedder wraps a single image as page 1 of a new PDF. The page size
// matches the image at one point per pixel.
type Embedder struct {
	log *slog.Logger
}

// NewEmbedder returns an Embedder.
func NewEmbedder(logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{log: logger}
}

// Convert decodes the image at input and writes a one-page PDF to output.
func (e *Embedder) Convert(ctx context.Context, input, output string, progress ProgressFunc) Outcome {
	img, err := decodeImage(input)
	if err != nil {
		return failed(NewError(KindSourceUnreadable, input, "", err))
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return failed(NewError(KindSourceUnreadable, input, "re-encoding image", err))
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(embeddedImageName, opts, &encoded)
	pdf.ImageOptions(embeddedImageName, 0, 0, w, h, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return failed(NewError(KindWriteFailed, output, "building PDF", err))
	}

	if err := ctx.Err(); err != nil {
		return failed(NewError(KindUserCancelled, input, "", err))
	}
	if err := writeAtomic(output, pdf.Output); err != nil {
		return failed(NewError(KindWriteFailed, output, "", err))
	}

	e.log.Debug("image embedded", "input", input, "output", output, "width", b.Dx(), "height", b.Dy())
	progress(1.0)
	return succeeded(output)
}

// decodeImage sniffs the content of path and decodes it as an image.
func decodeImage(path string) (image.Image, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting content type: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("content is %s, not an image", mt.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", mt.String(), err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	return img, nil
}
