//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Doctor builds the CLI and reports which external converters it finds.
func Doctor() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "doctor")
}

// Formats builds the CLI and prints the conversion table.
func Formats() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "formats")
}
