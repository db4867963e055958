// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconvert/pkg/types"
)

func TestEmbedder_WritesSinglePagePDF(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "photo.png", 40, 30)
	output := filepath.Join(dir, "photo.pdf")

	var p progressRecorder
	out := NewEmbedder(nil).Convert(context.Background(), input, output, p.record)

	require.True(t, out.Success, "outcome error: %v", out.Err)
	assert.Equal(t, output, out.OutputLocation)
	assert.Equal(t, []float64{1.0}, p.values)

	pages, err := PageCount(output)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestEmbedder_ReplacesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "photo.png", 8, 8)
	output := filepath.Join(dir, "photo.pdf")
	require.NoError(t, os.WriteFile(output, []byte("old contents"), 0o644))

	out := NewEmbedder(nil).Convert(context.Background(), input, output, func(float64) {})
	require.True(t, out.Success)

	pages, err := PageCount(output)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestEmbedder_UnreadableSource(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"text file", []byte("this is not an image")},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00")},
		{"empty file", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "photo.png")
			require.NoError(t, os.WriteFile(input, tt.content, 0o644))

			var p progressRecorder
			out := NewEmbedder(nil).Convert(context.Background(), input, filepath.Join(dir, "photo.pdf"), p.record)

			assert.Equal(t, KindSourceUnreadable, out.Kind())
			assert.Empty(t, p.values)
			assert.Equal(t, []string{"photo.png"}, listDir(t, dir))
		})
	}
}

func TestEmbedder_WriteFailed(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "photo.png", 4, 4)
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	out := NewEmbedder(nil).Convert(context.Background(), input, filepath.Join(blocker, "photo.pdf"), func(float64) {})
	assert.Equal(t, KindWriteFailed, out.Kind())
}

// pdfEngine opens real PDFs for their page count and renders blank pages.
type pdfEngine struct{}

func (pdfEngine) Open(ctx context.Context, path string) (Document, error) {
	n, err := PageCount(path)
	if err != nil {
		return nil, err
	}
	return &fakeDoc{engine: &fakeEngine{}, pages: n}, nil
}

func TestEmbedThenRasterize_OnePage(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "photo.png", 12, 12)
	pdfPath := filepath.Join(dir, "photo.pdf")

	out := NewEmbedder(nil).Convert(context.Background(), input, pdfPath, func(float64) {})
	require.True(t, out.Success)

	rasterDir := filepath.Join(dir, "raster")
	out = NewRasterizer(pdfEngine{}, types.RenderConfig{}, nil).
		Convert(context.Background(), pdfPath, filepath.Join(rasterDir, "photo.png"), func(float64) {})
	require.True(t, out.Success, "outcome error: %v", out.Err)
	assert.Equal(t, []string{"photo_page1.png"}, listDir(t, rasterDir))
}

func TestDecodeImage_Dimensions(t *testing.T) {
	dir := t.TempDir()
	img, err := decodeImage(writePNG(t, dir, "a.png", 7, 5))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 5), img.Bounds())
}
