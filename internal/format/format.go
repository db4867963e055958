// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format classifies (source, destination) format pairs into a
// conversion strategy and answers which destinations a source supports.
package format

import (
	"sort"

	"github.com/pdiddy/docconvert/pkg/types"
)

// StrategyKind tags the conversion algorithm for a format pair. The set is
// closed; Unsupported is never dispatched.
type StrategyKind int

const (
	Unsupported StrategyKind = iota
	RasterizeToImage
	EmbedImageAsDocument
	CopyDocument
	ExternalToolConvert
)

var kindNames = [...]string{
	Unsupported:          "unsupported",
	RasterizeToImage:     "rasterize",
	EmbedImageAsDocument: "embed",
	CopyDocument:         "copy",
	ExternalToolConvert:  "external",
}

func (k StrategyKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Classify maps a (source, destination) pair to a strategy. It is total:
// any pair not in the table yields Unsupported.
func Classify(src, dst types.Format) StrategyKind {
	switch {
	case src.IsDocument() && dst == types.FormatPDF:
		return ExternalToolConvert
	case src.IsImage() && dst == types.FormatPDF:
		return EmbedImageAsDocument
	case src == types.FormatPDF && dst.IsImage():
		return RasterizeToImage
	case src == types.FormatPDF && dst == types.FormatPDF:
		return CopyDocument
	default:
		return Unsupported
	}
}

// capabilities is built once from the Classify table and never mutated.
var capabilities = buildCapabilities()

func buildCapabilities() map[types.Format][]types.Format {
	all := append([]types.Format{types.FormatPDF}, types.DocumentFormats...)
	all = append(all, types.ImageFormats...)

	table := make(map[types.Format][]types.Format)
	for _, src := range all {
		for _, dst := range all {
			if Classify(src, dst) != Unsupported {
				table[src] = append(table[src], dst)
			}
		}
	}
	for src := range table {
		sort.Slice(table[src], func(i, j int) bool { return table[src][i] < table[src][j] })
	}
	return table
}

// AllowedDestinations returns the formats src may be converted to, sorted.
// An empty result means no conversions are offered for src.
func AllowedDestinations(src types.Format) []types.Format {
	dsts := capabilities[src]
	out := make([]types.Format, len(dsts))
	copy(out, dsts)
	return out
}

// Sources returns every format with at least one outbound conversion, sorted.
func Sources() []types.Format {
	out := make([]types.Format, 0, len(capabilities))
	for src := range capabilities {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClassifyPath derives the source format from path and classifies it
// against dst.
func ClassifyPath(path string, dst types.Format) StrategyKind {
	return Classify(types.FormatFromPath(path), dst)
}
