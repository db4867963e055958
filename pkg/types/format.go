// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds value types and configuration structs shared across
// the conversion stages and the CLI.
package types

import (
	"path/filepath"
	"strings"
)

// Format is a normalized lowercase file-type token derived from a file
// extension (e.g. "pdf", "docx", "png").
type Format string

// FormatUnrecognized is returned for empty or unknown extensions. It is a
// distinct value, never the empty string.
const FormatUnrecognized Format = "unrecognized"

const (
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
	FormatPPT  Format = "ppt"
	FormatPPTX Format = "pptx"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
	FormatODT  Format = "odt"
	FormatODS  Format = "ods"
	FormatRTF  Format = "rtf"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
	FormatJPG  Format = "jpg"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWEBP Format = "webp"
	FormatHEIC Format = "heic"
)

// DocumentFormats lists the office-document family handled by the external
// conversion tool.
var DocumentFormats = []Format{
	FormatDOC, FormatDOCX, FormatPPT, FormatPPTX, FormatXLS, FormatXLSX,
	FormatODT, FormatODS, FormatRTF, FormatCSV, FormatTXT,
}

// ImageFormats lists the raster image family.
var ImageFormats = []Format{
	FormatJPG, FormatJPEG, FormatPNG, FormatGIF, FormatBMP, FormatTIFF,
	FormatWEBP, FormatHEIC,
}

// ParseFormat normalizes a format token such as "PDF", ".Png" or " jpg ".
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return FormatUnrecognized
	}
	if s == "tif" {
		return FormatTIFF
	}
	for _, f := range DocumentFormats {
		if Format(s) == f {
			return f
		}
	}
	for _, f := range ImageFormats {
		if Format(s) == f {
			return f
		}
	}
	if Format(s) == FormatPDF {
		return FormatPDF
	}
	return FormatUnrecognized
}

// FormatFromPath derives the Format of a file from its extension.
func FormatFromPath(path string) Format {
	return ParseFormat(filepath.Ext(path))
}

// IsDocument reports whether f belongs to the office-document family.
func (f Format) IsDocument() bool { return contains(DocumentFormats, f) }

// IsImage reports whether f belongs to the raster image family.
func (f Format) IsImage() bool { return contains(ImageFormats, f) }

// Known reports whether f is a recognized format.
func (f Format) Known() bool { return f != FormatUnrecognized && f != "" }

func (f Format) String() string { return string(f) }

func contains(set []Format, f Format) bool {
	for _, s := range set {
		if s == f {
			return true
		}
	}
	return false
}
