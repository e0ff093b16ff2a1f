package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/cells"
	"buckgen/internal/ports"
)

// ConfigFileName is the cell configuration file at the project root.
const ConfigFileName = ".buckconfig"

// CellConfigFileAdapter loads and saves the cell configuration file.
// A project root without a config file loads as an empty config so
// initialization can seed it from scratch.
type CellConfigFileAdapter struct{}

func NewCellConfigFileAdapter() CellConfigFileAdapter {
	return CellConfigFileAdapter{}
}

func (CellConfigFileAdapter) Load(projectRoot string) (cells.Config, error) {
	path := filepath.Join(projectRoot, ConfigFileName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cells.Config{}, nil
	}
	if err != nil {
		return cells.Config{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read cell configuration " + path).
			WithCause(err)
	}
	return cells.Parse(string(raw)), nil
}

func (CellConfigFileAdapter) Save(projectRoot string, cfg cells.Config) error {
	path := filepath.Join(projectRoot, ConfigFileName)
	if err := os.WriteFile(path, []byte(cfg.Serialize()), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write cell configuration " + path).
			WithCause(err)
	}
	return nil
}

var _ ports.CellConfigPort = CellConfigFileAdapter{}
