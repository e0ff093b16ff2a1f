package types

// TargetKind classifies a compilation unit within a package. The values
// mirror the kinds reported by the package manager's metadata output.
type TargetKind string

const (
	TargetKindLib         TargetKind = "lib"
	TargetKindRLib        TargetKind = "rlib"
	TargetKindDyLib       TargetKind = "dylib"
	TargetKindCDyLib      TargetKind = "cdylib"
	TargetKindStaticLib   TargetKind = "staticlib"
	TargetKindProcMacro   TargetKind = "proc-macro"
	TargetKindBin         TargetKind = "bin"
	TargetKindTest        TargetKind = "test"
	TargetKindBench       TargetKind = "bench"
	TargetKindExample     TargetKind = "example"
	TargetKindCustomBuild TargetKind = "custom-build"
)

// libraryFamily holds the target kinds that produce a linkable library
// artifact. A package referenced as a dependency must expose exactly one
// unit whose kind is in this family.
var libraryFamily = map[TargetKind]struct{}{
	TargetKindLib:       {},
	TargetKindRLib:      {},
	TargetKindDyLib:     {},
	TargetKindCDyLib:    {},
	TargetKindStaticLib: {},
	TargetKindProcMacro: {},
}

// IsLibraryKind reports whether the kind belongs to the library family.
func IsLibraryKind(kind TargetKind) bool {
	_, ok := libraryFamily[kind]
	return ok
}

// DepKind classifies a dependency edge.
type DepKind string

const (
	DepKindNormal      DepKind = "normal"
	DepKindBuild       DepKind = "build"
	DepKindDevelopment DepKind = "dev"
)

// ChangeType is the state assigned to a package identifier in a change
// set. An entry never transitions state within one run.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeChanged ChangeType = "changed"
	ChangeRemoved ChangeType = "removed"
)
