package cells

import (
	"path"
	"sort"
	"strings"
)

// Maps bundles the two derived views of a cell configuration used by the
// resolver and the rewriter. Cells maps canonical cell names to their
// project-relative paths; Aliases maps alias names to canonical names.
type Maps struct {
	Cells   map[string]string
	Aliases map[string]string
}

// MapsFromConfig derives both views from a parsed configuration.
func MapsFromConfig(cfg Config) Maps {
	return Maps{Cells: cfg.Cells(), Aliases: cfg.CellAliases()}
}

// Canonical resolves an alias to its canonical cell name. Unknown names
// are returned unchanged.
func (m Maps) Canonical(cell string) string {
	if canonical, ok := m.Aliases[cell]; ok {
		return canonical
	}
	return cell
}

// ResolveCell returns the canonical cell owning a project-relative path.
// The most specific declaration wins: the candidate whose declared path
// has the greatest number of components. A declared path of "." matches
// everything with zero components. Ties resolve lexicographically by
// cell name, so resolution is deterministic for any input map.
func (m Maps) ResolveCell(relPath string) (string, bool) {
	relPath = path.Clean(strings.TrimPrefix(relPath, "/"))

	bestName := ""
	bestDepth := -1
	for name, declared := range m.Cells {
		depth, ok := matchDepth(relPath, declared)
		if !ok {
			continue
		}
		if depth > bestDepth || (depth == bestDepth && name < bestName) {
			bestName = name
			bestDepth = depth
		}
	}
	if bestDepth < 0 {
		return "", false
	}
	return bestName, true
}

// matchDepth reports whether declared is a path-component prefix of
// relPath and, if so, how many components it contributes.
func matchDepth(relPath string, declared string) (int, bool) {
	declared = path.Clean(declared)
	if declared == "." || declared == "/" {
		return 0, true
	}
	declaredParts := splitPath(declared)
	pathParts := splitPath(relPath)
	if len(declaredParts) > len(pathParts) {
		return 0, false
	}
	for i, part := range declaredParts {
		if pathParts[i] != part {
			return 0, false
		}
	}
	return len(declaredParts), true
}

// StripCellPrefix removes a cell's declared path from the front of a
// project-relative path. The second return reports whether anything was
// stripped.
func (m Maps) StripCellPrefix(cell string, relPath string) (string, bool) {
	declared, ok := m.Cells[m.Canonical(cell)]
	if !ok {
		return relPath, false
	}
	declared = path.Clean(declared)
	if declared == "." {
		return relPath, true
	}
	if _, matched := matchDepth(relPath, declared); !matched {
		return relPath, false
	}
	stripped := strings.TrimPrefix(strings.TrimPrefix(relPath, declared), "/")
	return stripped, true
}

// SortedCellNames returns the declared cell names in lexicographic
// order, for stable log output.
func (m Maps) SortedCellNames() []string {
	names := make([]string, 0, len(m.Cells))
	for name := range m.Cells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
