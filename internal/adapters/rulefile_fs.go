package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/ports"
	"buckgen/internal/rules"
)

// RuleFileFSAdapter reads and writes generated rule files. Writes are
// whole-file replaces; prior content is never partially overwritten.
type RuleFileFSAdapter struct{}

func NewRuleFileFSAdapter() RuleFileFSAdapter {
	return RuleFileFSAdapter{}
}

func (RuleFileFSAdapter) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RuleFileFSAdapter) Read(path string) ([]rules.ParsedRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read rule file " + path).
			WithCause(err)
	}
	return rules.ParseFile(string(raw))
}

func (RuleFileFSAdapter) Write(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create rule file directory for " + path).
			WithCause(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write rule file " + path).
			WithCause(err)
	}
	return nil
}

var _ ports.RuleFilePort = RuleFileFSAdapter{}
