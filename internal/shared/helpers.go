// Package shared provides common utility functions used across multiple
// packages in the buckgen codebase.
package shared

import (
	"fmt"
	"strings"
)

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}

// FirstLineWithPrefix returns the remainder of the first line carrying
// the given prefix, e.g. the `host: ` line of a compiler version dump.
func FirstLineWithPrefix(output string, prefix string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
