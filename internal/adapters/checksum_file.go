package adapters

import (
	"context"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"buckgen/internal/ports"
)

// ChecksumFileAdapter loads the checksum table from a YAML file mapping
// `<name>-<version>` keys to hex digests.
type ChecksumFileAdapter struct {
	Path string
}

func NewChecksumFileAdapter(path string) ChecksumFileAdapter {
	return ChecksumFileAdapter{Path: path}
}

func (a ChecksumFileAdapter) Load(_ context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read checksum table " + a.Path).
			WithCause(err)
	}
	checksums := map[string]string{}
	if err := yaml.Unmarshal(raw, &checksums); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse checksum table " + a.Path).
			WithCause(err)
	}
	return checksums, nil
}

var _ ports.ChecksumPort = ChecksumFileAdapter{}
