// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const fakeHeader = "FAKEDOC pages="

// fakeEngine opens files written by writeFakeDoc. Anything else is
// unreadable.
type fakeEngine struct {
	renderErr map[int]error // page index -> render failure
	scales    []float64
}

func (e *fakeEngine) Open(ctx context.Context, path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rest, ok := strings.CutPrefix(string(data), fakeHeader)
	if !ok {
		return nil, errors.New("not a document")
	}
	pages, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return nil, errors.New("not a document")
	}
	return &fakeDoc{engine: e, pages: pages}, nil
}

type fakeDoc struct {
	engine *fakeEngine
	pages  int
	closed bool
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) RenderPage(ctx context.Context, index int, scale float64) (image.Image, error) {
	d.engine.scales = append(d.engine.scales, scale)
	if err := d.engine.renderErr[index]; err != nil {
		return nil, err
	}
	return solidImage(int(10*scale), int(14*scale)), nil
}

func (d *fakeDoc) Save(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s%d\n", fakeHeader, d.pages)
	return err
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func writeFakeDoc(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(fmt.Sprintf("%s%d\n", fakeHeader, pages)), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, solidImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return path
}

// progressRecorder collects progress values.
type progressRecorder struct {
	values []float64
}

func (p *progressRecorder) record(v float64) { p.values = append(p.values, v) }

func (p *progressRecorder) last() float64 {
	if len(p.values) == 0 {
		return -1
	}
	return p.values[len(p.values)-1]
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names
}
