// Package apply drives the incremental half of rule generation: it
// diffs graph snapshots into a change set and applies each entry by
// vendoring sources, regenerating rule files, merging user-edited
// fields, and deleting removed vendor directories.
package apply

import (
	"fmt"
	"regexp"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/types"
)

// identifierPattern matches the package identifier format
// `<source-locator>+<registry-or-path>#<name>@<version>[+<build-metadata>]`.
var identifierPattern = regexp.MustCompile(`^([^+#]+)\+([^#]+)#([^@]+)@([^+#]+)(?:\+(.+))?$`)

// ParseIdentifier recovers a package's name and version from its
// structured identifier string. An unparsable identifier is fatal.
func ParseIdentifier(id types.PackageID) (string, string, error) {
	m := identifierPattern.FindStringSubmatch(string(id))
	if m == nil {
		return "", "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unparsable package identifier %q", id))
	}
	return m[3], m[4], nil
}
