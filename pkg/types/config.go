// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConflictPolicy selects how the CLI answers a pending name conflict.
type ConflictPolicy string

const (
	ConflictAsk     ConflictPolicy = "ask"
	ConflictReplace ConflictPolicy = "replace"
	ConflictCancel  ConflictPolicy = "cancel"
)

// MinRenderScale is the lowest upscaling factor applied when rasterizing
// pages. Nominal page size renders too small to read.
const MinRenderScale = 2.0

// RenderConfig holds settings for rasterizing document pages.
type RenderConfig struct {
	// Scale multiplies the nominal page size (default 2.0, never below 2.0).
	Scale float64 `json:"render_scale" yaml:"render_scale" mapstructure:"render_scale"`

	// JPEGQuality is the encoder quality for jpg/jpeg output (default 90).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
}

// OfficeConfig holds settings for the external document-conversion tool.
type OfficeConfig struct {
	// Paths lists candidate install locations; the first existing one wins.
	Paths []string `json:"office_paths" yaml:"office_paths" mapstructure:"office_paths"`
}

// RecentConfig holds settings for the recent-conversions store.
type RecentConfig struct {
	// DBPath is the SQLite database file.
	DBPath string `json:"recent_db" yaml:"recent_db" mapstructure:"recent_db"`

	// MaxRecords caps how many recent conversions are kept (default 10).
	MaxRecords int `json:"recent_max" yaml:"recent_max" mapstructure:"recent_max"`
}

// ConverterConfig groups all settings for a batch conversion run.
type ConverterConfig struct {
	RenderConfig `yaml:",inline" mapstructure:",squash"`
	OfficeConfig `yaml:",inline" mapstructure:",squash"`
	RecentConfig `yaml:",inline" mapstructure:",squash"`

	// OutputDir receives converted files. Empty means alongside each input.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// OnConflict answers pending name conflicts: ask, replace or cancel.
	OnConflict ConflictPolicy `json:"on_conflict" yaml:"on_conflict" mapstructure:"on_conflict"`
}

// Normalize fills zero values with defaults.
func (c *ConverterConfig) Normalize() {
	if c.Scale < MinRenderScale {
		c.Scale = MinRenderScale
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 90
	}
	if c.MaxRecords <= 0 {
		c.MaxRecords = 10
	}
	if c.OnConflict == "" {
		c.OnConflict = ConflictAsk
	}
}
