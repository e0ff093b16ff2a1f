package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"buckgen/internal/types"
)

// libraryDisambiguationPrefix is prepended to a library rule's name when
// a binary unit in the same package carries the same name.
const libraryDisambiguationPrefix = "lib"

// unittestSuffix names the companion test rule emitted for a library
// unit with inline tests.
const unittestSuffix = "-unittest"

// CrateName folds a unit or package name to the compiler's crate-name
// convention (hyphens become underscores).
func CrateName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// LibraryUnits returns the package's library-family units.
func LibraryUnits(pkg types.Package) []types.CompilationUnit {
	var units []types.CompilationUnit
	for _, unit := range pkg.Targets {
		if unit.IsLibrary() {
			units = append(units, unit)
		}
	}
	return units
}

// BinaryUnits returns the package's binary units.
func BinaryUnits(pkg types.Package) []types.CompilationUnit {
	var units []types.CompilationUnit
	for _, unit := range pkg.Targets {
		if unit.HasKind(types.TargetKindBin) {
			units = append(units, unit)
		}
	}
	return units
}

// TestUnits returns the package's integration-test units.
func TestUnits(pkg types.Package) []types.CompilationUnit {
	var units []types.CompilationUnit
	for _, unit := range pkg.Targets {
		if unit.HasKind(types.TargetKindTest) {
			units = append(units, unit)
		}
	}
	return units
}

// CustomBuildUnit returns the package's build-script unit, if any.
func CustomBuildUnit(pkg types.Package) (types.CompilationUnit, bool) {
	for _, unit := range pkg.Targets {
		if unit.HasKind(types.TargetKindCustomBuild) {
			return unit, true
		}
	}
	return types.CompilationUnit{}, false
}

// RequireLibraryUnit returns the package's single library-family unit.
// A package referenced as a library dependency must expose exactly one;
// anything else aborts the run.
func RequireLibraryUnit(pkg types.Package) (types.CompilationUnit, error) {
	units := LibraryUnits(pkg)
	if len(units) != 1 {
		return types.CompilationUnit{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf(
				"expected exactly one library unit for package %s, found %d",
				pkg.Name, len(units)))
	}
	return units[0], nil
}

// LibraryRuleName derives the rule name for a library unit, renaming it
// with the disambiguation prefix when a binary unit shares the name.
func LibraryRuleName(pkg types.Package, unit types.CompilationUnit) string {
	for _, bin := range BinaryUnits(pkg) {
		if bin.Name == unit.Name {
			return libraryDisambiguationPrefix + unit.Name
		}
	}
	return unit.Name
}

// UnittestRuleName names the companion inline-test rule for a library
// unit.
func UnittestRuleName(unit types.CompilationUnit) string {
	return unit.Name + unittestSuffix
}

// BuildScriptBaseName strips the conventional "-build" suffix from a
// build-script unit name, matching the run rule's naming convention.
func BuildScriptBaseName(name string) string {
	return strings.TrimSuffix(name, "-build")
}

// BuildScriptRuleName names the rule compiling a package's build script.
func BuildScriptRuleName(pkg types.Package, unit types.CompilationUnit) string {
	return fmt.Sprintf("%s-%s", pkg.Name, unit.Name)
}

// BuildScriptRunRuleName names the rule running a package's compiled
// build script.
func BuildScriptRunRuleName(pkg types.Package, unit types.CompilationUnit) string {
	return fmt.Sprintf("%s-%s-run", pkg.Name, BuildScriptBaseName(unit.Name))
}

// VendorRuleName names a package's vendor rule.
func VendorRuleName(pkg types.Package) string {
	return pkg.Name + "-vendor"
}

// ManifestRuleName names a package's manifest-asset rule.
func ManifestRuleName(pkg types.Package) string {
	return pkg.Name + "-manifest"
}

func vendorTarget(pkg types.Package) string {
	return ":" + VendorRuleName(pkg)
}

func manifestFlagsRef(pkg types.Package) string {
	return fmt.Sprintf("@$(location :%s[env_flags])", ManifestRuleName(pkg))
}

func manifestEnvRef(pkg types.Package) string {
	return fmt.Sprintf(":%s[env_dict]", ManifestRuleName(pkg))
}
