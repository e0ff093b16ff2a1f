package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/core"
	"buckgen/internal/ports"
)

// VendorFSAdapter manages the on-disk vendor layout
// `<project-root>/<crates-root>/<name>/<version>/`.
type VendorFSAdapter struct {
	ProjectRoot string
}

func NewVendorFSAdapter(projectRoot string) VendorFSAdapter {
	return VendorFSAdapter{ProjectRoot: projectRoot}
}

func (a VendorFSAdapter) Dir(name string, version string) string {
	return filepath.Join(a.ProjectRoot, filepath.FromSlash(core.CratesRoot), name, version)
}

func (a VendorFSAdapter) Ensure(name string, version string) (string, error) {
	dir := a.Dir(name, version)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create vendor directory " + dir).
			WithCause(err)
	}
	return dir, nil
}

// Remove deletes the version directory and prunes the parent package
// directory when it becomes empty.
func (a VendorFSAdapter) Remove(name string, version string) error {
	dir := a.Dir(name, version)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove vendor directory " + dir).
			WithCause(err)
	}
	parent := filepath.Dir(dir)
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}
	if len(entries) == 0 {
		if err := os.Remove(parent); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to remove empty package directory " + parent).
				WithCause(err)
		}
	}
	return nil
}

var _ ports.VendorPort = VendorFSAdapter{}
