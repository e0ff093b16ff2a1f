package types

// PackageID is the structured identifier string assigned to a package by
// the metadata resolver, in the form
// `<source-locator>+<registry-or-path>#<name>@<version>[+<build-metadata>]`.
type PackageID string

// CompilationUnit is one buildable artifact within a package. A unit may
// carry several kinds (e.g. both lib and rlib) in the metadata output.
type CompilationUnit struct {
	Name    string       `json:"name"`
	Kinds   []TargetKind `json:"kind"`
	SrcPath string       `json:"src_path"`

	// Test reports whether the unit declares inline tests.
	Test bool `json:"test"`
}

// HasKind reports whether the unit carries the given kind.
func (u CompilationUnit) HasKind(kind TargetKind) bool {
	for _, k := range u.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsLibrary reports whether any of the unit's kinds is in the library
// family.
func (u CompilationUnit) IsLibrary() bool {
	for _, k := range u.Kinds {
		if IsLibraryKind(k) {
			return true
		}
	}
	return false
}

// Package is a resolved unit of source code. Source is empty for
// first-party (workspace) packages and holds the remote source locator
// for third-party packages. Links is the package's native-library marker
// ("links" manifest key); empty when absent.
type Package struct {
	ID           PackageID         `json:"id"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	ManifestPath string            `json:"manifest_path"`
	Source       string            `json:"source"`
	Links        string            `json:"links"`
	Edition      string            `json:"edition"`
	Targets      []CompilationUnit `json:"targets"`
}

// FirstParty reports whether the package is a workspace member (no
// remote source marker).
func (p Package) FirstParty() bool {
	return p.Source == ""
}

// DepKindInfo is one (kind, optional platform predicate) pair attached
// to a dependency edge. Target is empty when the edge is unconditional.
type DepKindInfo struct {
	Kind   DepKind `json:"kind"`
	Target string  `json:"target"`
}

// DependencyEdge connects a consuming node to one dependency package.
// Name is the in-source name the consumer uses for the dependency; when
// it differs from the dependency's normalized package name the edge is a
// renamed reference.
type DependencyEdge struct {
	Pkg   PackageID     `json:"pkg"`
	Name  string        `json:"name"`
	Kinds []DepKindInfo `json:"dep_kinds"`
}

// Node is a package's entry in the resolved graph: its outgoing edges
// and the feature flags activated by resolution.
type Node struct {
	ID       PackageID        `json:"id"`
	Deps     []DependencyEdge `json:"deps"`
	Features []string         `json:"features"`
}

// ResolvedGraph is the full resolver output consumed by one translation
// pass. It is treated as immutable input.
type ResolvedGraph struct {
	Packages      []Package
	Nodes         []Node
	Root          PackageID
	WorkspaceRoot string
}

// PackageMap indexes packages by identifier.
func (g ResolvedGraph) PackageMap() map[PackageID]Package {
	m := make(map[PackageID]Package, len(g.Packages))
	for _, p := range g.Packages {
		m[p.ID] = p
	}
	return m
}

// NodeMap indexes nodes by identifier.
func (g ResolvedGraph) NodeMap() map[PackageID]Node {
	m := make(map[PackageID]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n
	}
	return m
}

// ChangeSet maps package identifiers to the action the applier must
// take for them.
type ChangeSet map[PackageID]ChangeType
