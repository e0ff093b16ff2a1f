package ports

import (
	"buckgen/internal/cells"
	"buckgen/internal/rules"
)

// VendorPort manages the vendor directory layout,
// `<crates-root>/<name>/<version>/`.
type VendorPort interface {
	// Dir returns the vendor directory for a package version without
	// creating it.
	Dir(name string, version string) string

	// Ensure creates the vendor directory if needed and returns it.
	Ensure(name string, version string) (string, error)

	// Remove deletes the vendor directory and, when the parent package
	// directory becomes empty, the parent too.
	Remove(name string, version string) error
}

// RuleFilePort reads and writes generated rule files. Writes are
// whole-file replaces; a write failure is fatal and surfaces the
// underlying I/O error.
type RuleFilePort interface {
	Exists(path string) bool
	Read(path string) ([]rules.ParsedRule, error)
	Write(path string, content string) error
}

// CellConfigPort loads and saves the build tool's cell configuration
// file for a project root.
type CellConfigPort interface {
	Load(projectRoot string) (cells.Config, error)
	Save(projectRoot string, cfg cells.Config) error
}
