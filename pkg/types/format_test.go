// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"pdf", FormatPDF},
		{"PDF", FormatPDF},
		{".Png", FormatPNG},
		{" jpg ", FormatJPG},
		{"tif", FormatTIFF},
		{"DOCX", FormatDOCX},
		{"", FormatUnrecognized},
		{"exe", FormatUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"/tmp/report.DOCX", FormatDOCX},
		{"photo.jpeg", FormatJPEG},
		{"archive.tar.gz", FormatUnrecognized},
		{"README", FormatUnrecognized},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatFamilies(t *testing.T) {
	if !FormatXLSX.IsDocument() || FormatXLSX.IsImage() {
		t.Error("xlsx should be a document format only")
	}
	if !FormatHEIC.IsImage() || FormatHEIC.IsDocument() {
		t.Error("heic should be an image format only")
	}
	if FormatPDF.IsDocument() || FormatPDF.IsImage() {
		t.Error("pdf belongs to neither family")
	}
	if FormatUnrecognized.Known() {
		t.Error("unrecognized should not be known")
	}
}

func TestConverterConfigNormalize(t *testing.T) {
	cfg := ConverterConfig{RenderConfig: RenderConfig{Scale: 1}}
	cfg.Normalize()

	if cfg.Scale != MinRenderScale {
		t.Errorf("scale = %v, want %v", cfg.Scale, MinRenderScale)
	}
	if cfg.JPEGQuality != 90 {
		t.Errorf("jpeg quality = %d, want 90", cfg.JPEGQuality)
	}
	if cfg.MaxRecords != 10 {
		t.Errorf("max records = %d, want 10", cfg.MaxRecords)
	}
	if cfg.OnConflict != ConflictAsk {
		t.Errorf("on conflict = %q, want %q", cfg.OnConflict, ConflictAsk)
	}
}
