// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docconvert/internal/format"
	"github.com/pdiddy/docconvert/pkg/types"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [source]",
	Short: "List supported conversions",
	Long: `Formats prints every source format and the formats it converts to. With
a source format argument it prints only that format's destinations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return printDestinations(os.Stdout, types.ParseFormat(args[0]))
		}
		printFormatTable(os.Stdout)
		return nil
	},
}

func printDestinations(w io.Writer, src types.Format) error {
	dsts := format.AllowedDestinations(src)
	if len(dsts) == 0 {
		return fmt.Errorf("no conversions available for %s", src)
	}
	for _, d := range dsts {
		fmt.Fprintf(w, "%s\t%s\n", d, format.Classify(src, d))
	}
	return nil
}

func printFormatTable(w io.Writer) {
	fmt.Fprintf(w, "%-6s  %s\n", "Source", "Destinations")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, src := range format.Sources() {
		dsts := format.AllowedDestinations(src)
		names := make([]string, len(dsts))
		for i, d := range dsts {
			names[i] = string(d)
		}
		fmt.Fprintf(w, "%-6s  %s\n", src, strings.Join(names, ", "))
	}
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
