// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconvert/pkg/types"
)

func TestRasterizer_AllPages(t *testing.T) {
	tests := []struct {
		name string
		ext  types.Format
	}{
		{name: "png", ext: types.FormatPNG},
		{name: "webp", ext: types.FormatWEBP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeFakeDoc(t, dir, "slides.pdf", 3)
			engine := &fakeEngine{}
			r := NewRasterizer(engine, types.RenderConfig{}, nil)

			var p progressRecorder
			out := r.Convert(context.Background(), input, filepath.Join(dir, "slides."+string(tt.ext)), p.record)

			require.True(t, out.Success, "outcome error: %v", out.Err)
			assert.Equal(t, dir, out.OutputLocation)
			require.Len(t, p.values, 3)
			assert.InDelta(t, 0.33, p.values[0], 0.01)
			assert.InDelta(t, 0.67, p.values[1], 0.01)
			assert.Equal(t, 1.0, p.values[2])

			for page := 1; page <= 3; page++ {
				name := PageFileName("slides", page, tt.ext)
				f, err := os.Open(filepath.Join(dir, name))
				require.NoError(t, err, name)
				img, kind, err := image.Decode(f)
				f.Close()
				require.NoError(t, err, name)
				assert.Equal(t, string(tt.ext), kind)
				assert.Equal(t, 20, img.Bounds().Dx(), "page rendered at 2x")
			}
			assert.NotContains(t, listDir(t, dir), PageFileName("slides", 4, tt.ext))

			for _, s := range engine.scales {
				assert.GreaterOrEqual(t, s, types.MinRenderScale)
			}
		})
	}
}

func TestRasterizer_ScaleNeverBelowMinimum(t *testing.T) {
	dir := t.TempDir()
	input := writeFakeDoc(t, dir, "doc.pdf", 1)
	engine := &fakeEngine{}

	r := NewRasterizer(engine, types.RenderConfig{Scale: 0.5}, nil)
	out := r.Convert(context.Background(), input, filepath.Join(dir, "doc.jpg"), func(float64) {})
	require.True(t, out.Success)
	assert.Equal(t, []float64{types.MinRenderScale}, engine.scales)

	engine.scales = nil
	r = NewRasterizer(engine, types.RenderConfig{Scale: 3}, nil)
	out = r.Convert(context.Background(), input, filepath.Join(dir, "doc.jpg"), func(float64) {})
	require.True(t, out.Success)
	assert.Equal(t, []float64{3}, engine.scales)
}

func TestRasterizer_PartialSuccess(t *testing.T) {
	dir := t.TempDir()
	input := writeFakeDoc(t, dir, "report.pdf", 3)
	engine := &fakeEngine{renderErr: map[int]error{1: errors.New("bad page")}}
	r := NewRasterizer(engine, types.RenderConfig{}, nil)

	var p progressRecorder
	out := r.Convert(context.Background(), input, filepath.Join(dir, "report.bmp"), p.record)

	require.True(t, out.Success)
	assert.Equal(t, dir, out.OutputLocation)
	assert.Equal(t, 1.0, p.last())
	names := listDir(t, dir)
	assert.Contains(t, names, "report_page1.bmp")
	assert.NotContains(t, names, "report_page2.bmp")
	assert.Contains(t, names, "report_page3.bmp")
}

func TestRasterizer_Failures(t *testing.T) {
	tests := []struct {
		name     string
		pages    int
		raw      string // written instead of a fake document when set
		output   string
		engine   *fakeEngine
		wantKind Kind
	}{
		{
			name:     "zero pages",
			pages:    0,
			output:   "out.png",
			engine:   &fakeEngine{},
			wantKind: KindSourceUnreadable,
		},
		{
			name:     "unopenable source",
			raw:      "garbage",
			output:   "out.png",
			engine:   &fakeEngine{},
			wantKind: KindSourceUnreadable,
		},
		{
			name:  "every page fails",
			pages: 2,
			engine: &fakeEngine{renderErr: map[int]error{
				0: errors.New("boom"), 1: errors.New("boom"),
			}},
			output:   "out.png",
			wantKind: KindNoPagesConverted,
		},
		{
			name:     "no encoder for format",
			pages:    1,
			output:   "out.heic",
			engine:   &fakeEngine{},
			wantKind: KindWriteFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "in.pdf")
			if tt.raw != "" {
				require.NoError(t, os.WriteFile(input, []byte(tt.raw), 0o644))
			} else {
				writeFakeDoc(t, dir, "in.pdf", tt.pages)
			}

			var p progressRecorder
			out := NewRasterizer(tt.engine, types.RenderConfig{}, nil).
				Convert(context.Background(), input, filepath.Join(dir, tt.output), p.record)

			assert.False(t, out.Success)
			assert.Equal(t, tt.wantKind, out.Kind())
			assert.NotContains(t, p.values, 1.0)
			assert.Equal(t, []string{"in.pdf"}, listDir(t, dir))
		})
	}
}

func TestRasterizer_Cancelled(t *testing.T) {
	dir := t.TempDir()
	input := writeFakeDoc(t, dir, "in.pdf", 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewRasterizer(&fakeEngine{}, types.RenderConfig{}, nil).
		Convert(ctx, input, filepath.Join(dir, "in.png"), func(float64) {})
	assert.Equal(t, KindUserCancelled, out.Kind())
}

func TestPageFileName(t *testing.T) {
	assert.Equal(t, "slides_page2.png", PageFileName("slides", 2, types.FormatPNG))
	assert.Equal(t, filepath.Join("out", "slides_page1.jpg"), FirstPagePath(filepath.Join("out", "slides.jpg")))
}
