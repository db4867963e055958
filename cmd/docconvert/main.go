// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docconvert CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docconvert CLI.
var rootCmd = &cobra.Command{
	Use:   "docconvert",
	Short: "Batch converter for documents and images",
	Long: `docconvert converts office documents, PDFs and images between formats.
Files are queued and converted one at a time: office documents go to PDF
through a locally installed LibreOffice, images are embedded as single-page
PDFs, and PDFs are rasterized to one image per page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docconvert.yaml or ~/.config/docconvert/docconvert.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "docconvert")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docconvert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			viper.AddConfigPath(dir)
		}
	}

	viper.SetDefault("render_scale", types.MinRenderScale)
	viper.SetDefault("jpeg_quality", 90)
	viper.SetDefault("recent_max", 10)
	viper.SetDefault("on_conflict", string(types.ConflictAsk))
	if dir := configDir(); dir != "" {
		viper.SetDefault("recent_db", filepath.Join(dir, "recent.db"))
	}

	viper.SetEnvPrefix("DOCCONVERT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flag, env and file settings.
func loadConfig() (types.ConverterConfig, error) {
	var cfg types.ConverterConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Normalize()
	switch cfg.OnConflict {
	case types.ConflictAsk, types.ConflictReplace, types.ConflictCancel:
	default:
		return cfg, fmt.Errorf("invalid on_conflict %q: use ask, replace or cancel", cfg.OnConflict)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
