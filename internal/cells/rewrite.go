package cells

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// label is the parsed form of a build-rule reference: an optional cell
// prefix (with optional leading "@"), a path, and an optional rule name.
type label struct {
	cell     string
	external bool
	path     string
	name     string
	hasName  bool
}

func parseLabel(raw string) (label, bool) {
	sep := strings.Index(raw, "//")
	if sep < 0 {
		return label{}, false
	}
	l := label{}
	prefix := raw[:sep]
	if strings.HasPrefix(prefix, "@") {
		l.external = true
		prefix = prefix[1:]
	}
	l.cell = prefix
	rest := raw[sep+2:]
	if colon := strings.LastIndex(rest, ":"); colon >= 0 {
		l.path = rest[:colon]
		l.name = rest[colon+1:]
		l.hasName = true
	} else {
		l.path = rest
	}
	return l, true
}

func (l label) render(external bool) string {
	var b strings.Builder
	if external && l.cell != "" {
		b.WriteString("@")
	}
	b.WriteString(l.cell)
	b.WriteString("//")
	b.WriteString(l.path)
	if l.hasName {
		b.WriteString(":")
		b.WriteString(l.name)
	}
	return b.String()
}

// Rewrite canonicalizes a rule label against the cell maps.
//
// Bare labels ("//path:name") are resolved to their owning cell by
// longest-prefix match and the cell's declared path is stripped from the
// label path. Cell-qualified labels ("cell//path:name", with or without
// a leading "@") have their cell name canonicalized through the alias
// table and the declared path stripped when still present. atProjectRoot
// states whether the file the label will be written into sits at the
// project root; labels written elsewhere get an "@" prefix.
//
// Input without a "//" separator is returned unchanged. Rewriting is
// idempotent: applying Rewrite to its own output is a no-op.
func (m Maps) Rewrite(raw string, atProjectRoot bool) (string, error) {
	l, ok := parseLabel(raw)
	if !ok {
		return raw, nil
	}

	if l.cell == "" {
		owner, found := m.ResolveCell(l.path)
		if !found {
			// No declared cell owns the path; the bare form is already
			// as canonical as it gets.
			return raw, nil
		}
		stripped, _ := m.StripCellPrefix(owner, l.path)
		l.cell = owner
		l.path = stripped
		return l.render(!atProjectRoot), nil
	}

	canonical := m.Canonical(l.cell)
	if _, declared := m.Cells[canonical]; !declared {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("label %q references undeclared cell %q", raw, l.cell))
	}
	if stripped, matched := m.StripCellPrefix(canonical, l.path); matched {
		l.path = stripped
	}
	l.cell = canonical
	return l.render(!atProjectRoot), nil
}
