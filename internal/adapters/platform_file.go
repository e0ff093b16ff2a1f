package adapters

import (
	"os"

	"gopkg.in/yaml.v3"

	"buckgen/internal/ports"
)

// PlatformFileAdapter looks up platform-compatibility constraint labels
// from a YAML table mapping package name to label list. A missing or
// unreadable table simply yields no constraints; compatibility is an
// optional refinement, not an input requirement.
type PlatformFileAdapter struct {
	table map[string][]string
}

func NewPlatformFileAdapter(path string) PlatformFileAdapter {
	table := map[string][]string{}
	if raw, err := os.ReadFile(path); err == nil {
		// Best effort: an unparsable table behaves like an empty one.
		_ = yaml.Unmarshal(raw, &table)
	}
	return PlatformFileAdapter{table: table}
}

func (a PlatformFileAdapter) CompatibleWith(name string) []string {
	return a.table[name]
}

var _ ports.PlatformCompatPort = PlatformFileAdapter{}
