// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/internal/recent"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show and manage recent conversions",
	Long: `Recent lists the most recent conversion outputs, newest first. Outputs
that no longer exist on disk are not shown.`,
	RunE: runRecentList,
}

// --- list subcommand ---

var recentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions",
	RunE:  runRecentList,
}

func runRecentList(cmd *cobra.Command, args []string) error {
	store, err := openRecent()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []recent.Record{}
		}
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No recent conversions.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-5s  %10s  %s\n", "ID", "File", "Type", "Size", "Converted")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range records {
		name := r.FileName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-5s  %10d  %s\n",
			r.ID, name, r.FileType, r.Size, r.ConvertedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// --- remove subcommand ---

var recentRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove one entry from the recent list",
	Long:  `Remove deletes an entry from the recent list. The output file is not touched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openRecent()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Remove(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

// --- export subcommand ---

var recentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the recent list to YAML or JSON on stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := openRecent()
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml", "":
			return store.ExportYAML(context.Background(), os.Stdout)
		case "json":
			return store.ExportJSON(context.Background(), os.Stdout)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
	},
}

func openRecent() (*recent.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("recent_db is not configured")
	}
	return recent.NewStore(cfg.RecentConfig, nil)
}

func init() {
	recentCmd.PersistentFlags().String("db", "", "recent conversions database (default ~/.config/docconvert/recent.db)")
	_ = viper.BindPFlag("recent_db", recentCmd.PersistentFlags().Lookup("db"))

	recentCmd.Flags().Bool("json", false, "output as JSON")
	recentListCmd.Flags().Bool("json", false, "output as JSON")
	recentExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	recentCmd.AddCommand(recentListCmd)
	recentCmd.AddCommand(recentRemoveCmd)
	recentCmd.AddCommand(recentExportCmd)

	rootCmd.AddCommand(recentCmd)
}
