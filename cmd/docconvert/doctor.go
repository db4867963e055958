// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docconvert/internal/office"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report which external converters are installed",
	Long: `Doctor checks the candidate install locations of LibreOffice, which is
needed to convert office documents to PDF. PDF and image conversions do not
need it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tools := office.NewLocator(cfg.Paths)

		tool, err := tools.Locate()
		if err != nil {
			fmt.Fprintln(os.Stdout, "LibreOffice: not installed")
			fmt.Fprintln(os.Stdout, "searched:")
			for _, p := range tools.Paths() {
				fmt.Fprintf(os.Stdout, "  %s\n", p)
			}
			fmt.Fprintln(os.Stdout, "office documents (doc, docx, xlsx, pptx, ...) cannot be converted")
			return nil
		}
		fmt.Fprintf(os.Stdout, "LibreOffice: %s\n", tool.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
