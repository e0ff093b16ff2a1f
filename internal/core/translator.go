// Package core translates resolved package graphs into build rules: the
// rule-graph translator walks one package at a time, the dependency
// classifier selects and resolves its edges, and the platform evaluator
// filters edges by target predicate.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"buckgen/internal/cells"
	"buckgen/internal/ports"
	"buckgen/internal/rules"
	"buckgen/internal/types"
)

// CratesRoot is the project-relative directory holding vendored
// third-party packages, one `<name>/<version>` directory each.
const CratesRoot = "third-party/rust/crates"

// ThirdPartyDir is the project-relative directory holding the shared
// third-party alias rules.
const ThirdPartyDir = "third-party/rust"

// archiveURLTemplate is the remote archive location for a registry
// package, parameterized by name, name, version.
const archiveURLTemplate = "https://static.crates.io/crates/%s/%s-%s.crate"

// Environment is the probed compiler environment one translation pass
// runs against.
type Environment struct {
	Triple string
	Cfgs   []Cfg
}

// Translator turns packages of one resolved graph into rule lists. All
// fields are read-only during a pass.
type Translator struct {
	Packages    map[types.PackageID]types.Package
	Nodes       map[types.PackageID]types.Node
	Root        types.PackageID
	Checksums   map[string]string
	Compat      ports.PlatformCompatPort
	Env         Environment
	Cells       cells.Maps
	Config      types.RepoConfig
	ProjectRoot string
}

// TranslateDependency emits the rule list for a package consumed as a
// library by others: vendor fetch, manifest asset, one library compile
// rule, and build-script rules when the package has a build script.
func (t *Translator) TranslateDependency(ctx context.Context, pkg types.Package, node types.Node) ([]rules.Rule, error) {
	libUnit, err := RequireLibraryUnit(pkg)
	if err != nil {
		return nil, err
	}

	var out []rules.Rule

	archive, err := t.emitHTTPArchive(pkg)
	if err != nil {
		return nil, err
	}
	out = append(out, archive)
	out = append(out, emitManifest(pkg))

	library, err := t.emitLibrary(ctx, pkg, node, libUnit, pkg.Name, false)
	if err != nil {
		return nil, err
	}
	out = append(out, library)

	return t.appendBuildScript(ctx, out, pkg, node, false)
}

// TranslateRoot emits the rule list for the workspace-root package: a
// local vendor group, manifest asset, one compile rule per binary,
// library and integration-test unit (with disambiguation, implicit
// binary→library deps, inline-test companions and test fixtures), and
// build-script rules when present.
func (t *Translator) TranslateRoot(ctx context.Context, pkg types.Package, node types.Node) ([]rules.Rule, error) {
	binUnits := BinaryUnits(pkg)
	libUnits := LibraryUnits(pkg)

	out := []rules.Rule{emitFileGroup(pkg), emitManifest(pkg)}

	for _, bin := range binUnits {
		binary, err := t.emitBinary(ctx, pkg, node, bin, bin.Name, true)
		if err != nil {
			return nil, err
		}
		for _, lib := range libUnits {
			if lib.Name == bin.Name {
				// A package's binary may use its own library crate by
				// default; mirror that with an implicit dependency.
				binary.AddDep(":" + libraryDisambiguationPrefix + bin.Name)
			}
		}
		out = append(out, binary)
	}

	for _, lib := range libUnits {
		library, err := t.emitLibrary(ctx, pkg, node, lib, LibraryRuleName(pkg, lib), true)
		if err != nil {
			return nil, err
		}
		out = append(out, library)

		if !t.Config.IgnoreTests && lib.Test {
			unittest, err := t.emitTest(ctx, pkg, node, lib, UnittestRuleName(lib), true)
			if err != nil {
				return nil, err
			}
			out = append(out, unittest)
		}
	}

	if !t.Config.IgnoreTests {
		for _, unit := range TestUnits(pkg) {
			test, err := t.emitTest(ctx, pkg, node, unit, unit.Name, true)
			if err != nil {
				return nil, err
			}
			t.wireTestFixtures(pkg, binUnits, libUnits, test)
			out = append(out, test)
		}
	}

	return t.appendBuildScript(ctx, out, pkg, node, true)
}

// wireTestFixtures mirrors the package manager's implicit test fixtures:
// an integration test can locate the package's own binary through an
// environment variable and use the package's own library directly.
func (t *Translator) wireTestFixtures(pkg types.Package, binUnits, libUnits []types.CompilationUnit, test *rules.RustTest) {
	packageName := CrateName(pkg.Name)
	binFixture := false
	for _, bin := range binUnits {
		if bin.Name == packageName {
			binFixture = true
			test.SetEnv(
				"CARGO_BIN_EXE_"+packageName,
				fmt.Sprintf("$(location :%s)", packageName))
		}
	}
	for _, lib := range libUnits {
		if lib.Name == packageName {
			if binFixture {
				test.AddDep(":" + libraryDisambiguationPrefix + packageName)
			} else {
				test.AddDep(":" + packageName)
			}
		}
	}
}

// appendBuildScript patches the already emitted compile rules to read
// OUT_DIR and extra flags from the build-script run rule, then appends
// the build-script compile and run rules. A package without a
// custom-build unit passes through unchanged.
func (t *Translator) appendBuildScript(ctx context.Context, out []rules.Rule, pkg types.Package, node types.Node, atRoot bool) ([]rules.Rule, error) {
	buildUnit, ok := CustomBuildUnit(pkg)
	if !ok {
		return out, nil
	}

	for _, rule := range out {
		if compile, isCompile := rule.(rules.CompileRule); isCompile {
			patchWithBuildScript(compile, pkg, buildUnit)
		}
	}

	build, err := t.emitBuildScriptBuild(ctx, pkg, node, buildUnit, atRoot)
	if err != nil {
		return nil, err
	}
	out = append(out, build)

	run, err := t.emitBuildScriptRun(ctx, pkg, node, buildUnit, atRoot)
	if err != nil {
		return nil, err
	}
	return append(out, run), nil
}

func patchWithBuildScript(rule rules.CompileRule, pkg types.Package, buildUnit types.CompilationUnit) {
	base := BuildScriptBaseName(buildUnit.Name)
	rule.SetEnv("OUT_DIR", fmt.Sprintf("$(location :%s-%s-run[out_dir])", pkg.Name, base))
	rule.AddFlag(fmt.Sprintf("@$(location :%s-%s-run[rustc_flags])", pkg.Name, base))
}

func (t *Translator) emitHTTPArchive(pkg types.Package) (*rules.HTTPArchive, error) {
	key := fmt.Sprintf("%s-%s", pkg.Name, pkg.Version)
	checksum, ok := t.Checksums[key]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("no checksum for vendor fetch of %s", key))
	}
	return &rules.HTTPArchive{
		Name:        VendorRuleName(pkg),
		URLs:        rules.NewStringSet(fmt.Sprintf(archiveURLTemplate, pkg.Name, pkg.Name, pkg.Version)),
		SHA256:      checksum,
		ArchiveType: "tar.gz",
		StripPrefix: key,
		Out:         "vendor",
	}, nil
}

func emitFileGroup(pkg types.Package) *rules.FileGroup {
	return &rules.FileGroup{
		Name:    VendorRuleName(pkg),
		Include: rules.NewStringSet("**/**"),
		Out:     "vendor",
	}
}

func emitManifest(pkg types.Package) *rules.CargoManifest {
	return &rules.CargoManifest{
		Name:   ManifestRuleName(pkg),
		Vendor: vendorTarget(pkg),
	}
}

func (t *Translator) emitLibrary(ctx context.Context, pkg types.Package, node types.Node, unit types.CompilationUnit, ruleName string, atRoot bool) (*rules.RustLibrary, error) {
	common, err := t.newCompile(pkg, node, unit, ruleName)
	if err != nil {
		return nil, err
	}
	library := &rules.RustLibrary{CompileCommon: common}
	if unit.HasKind(types.TargetKindProcMacro) {
		library.ProcMacro = true
	}
	if t.Compat != nil {
		library.CompatibleWith = t.Compat.CompatibleWith(pkg.Name)
	}
	if err := t.classifyDeps(ctx, library, node, types.TargetKindLib, atRoot); err != nil {
		return nil, err
	}
	return library, nil
}

func (t *Translator) emitBinary(ctx context.Context, pkg types.Package, node types.Node, unit types.CompilationUnit, ruleName string, atRoot bool) (*rules.RustBinary, error) {
	common, err := t.newCompile(pkg, node, unit, ruleName)
	if err != nil {
		return nil, err
	}
	binary := &rules.RustBinary{CompileCommon: common}
	if err := t.classifyDeps(ctx, binary, node, types.TargetKindBin, atRoot); err != nil {
		return nil, err
	}
	return binary, nil
}

func (t *Translator) emitTest(ctx context.Context, pkg types.Package, node types.Node, unit types.CompilationUnit, ruleName string, atRoot bool) (*rules.RustTest, error) {
	common, err := t.newCompile(pkg, node, unit, ruleName)
	if err != nil {
		return nil, err
	}
	test := &rules.RustTest{CompileCommon: common}
	if err := t.classifyDeps(ctx, test, node, types.TargetKindTest, atRoot); err != nil {
		return nil, err
	}
	return test, nil
}

func (t *Translator) emitBuildScriptBuild(ctx context.Context, pkg types.Package, node types.Node, unit types.CompilationUnit, atRoot bool) (*rules.RustBinary, error) {
	common, err := t.newCompile(pkg, node, unit, BuildScriptRuleName(pkg, unit))
	if err != nil {
		return nil, err
	}
	// Build scripts stay package-private.
	common.Visibility = rules.NewStringSet()
	build := &rules.RustBinary{CompileCommon: common}
	if err := t.classifyDeps(ctx, build, node, types.TargetKindCustomBuild, atRoot); err != nil {
		return nil, err
	}
	return build, nil
}

// emitBuildScriptRun emits the rule invoking the compiled build script.
// For every active Normal-kind dependency that declares a links marker,
// the run rule also references that dependency's own run-rule metadata,
// enabling downstream links-key environment propagation.
func (t *Translator) emitBuildScriptRun(ctx context.Context, pkg types.Package, node types.Node, unit types.CompilationUnit, atRoot bool) (*rules.BuildscriptRun, error) {
	run := &rules.BuildscriptRun{
		Name:            BuildScriptRunRuleName(pkg, unit),
		PackageName:     pkg.Name,
		BuildscriptRule: ":" + BuildScriptRuleName(pkg, unit),
		EnvSrcs:         rules.NewStringSet(manifestEnvRef(pkg)),
		Features:        rules.NewStringSet(node.Features...),
		Version:         pkg.Version,
		ManifestDir:     vendorTarget(pkg),
		Visibility:      rules.NewStringSet("PUBLIC"),
	}

	for _, edge := range node.Deps {
		dep, ok := t.Packages[edge.Pkg]
		if !ok || dep.Links == "" {
			continue
		}
		if !t.edgeActive(ctx, edge, types.DepKindNormal) {
			continue
		}
		buildUnit, hasBuild := CustomBuildUnit(dep)
		if !hasBuild {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf(
					"dependency %s declares links=%q but has no build-script unit",
					dep.Name, dep.Links))
		}
		label := fmt.Sprintf("//%s/%s/%s:%s-%s-run[metadata]",
			CratesRoot, dep.Name, dep.Version, dep.Name, BuildScriptBaseName(buildUnit.Name))
		run.EnvSrcs.Add(t.rewrite(ctx, label, atRoot))
	}

	return run, nil
}

// edgeActive reports whether any of an edge's kind entries has the given
// kind and a platform predicate matching the probed environment.
func (t *Translator) edgeActive(ctx context.Context, edge types.DependencyEdge, kind types.DepKind) bool {
	for _, info := range edge.Kinds {
		if info.Kind != kind {
			continue
		}
		matched, err := MatchesPredicate(info.Target, t.Env.Triple, t.Env.Cfgs)
		if err != nil {
			log.Ctx(ctx).Warn().
				Str("dependency", edge.Name).
				Str("predicate", info.Target).
				Err(err).
				Msg("skipping edge with unparsable platform predicate")
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// newCompile builds the attribute block shared by all compile rules for
// one unit: vendor sources, crate name and root, edition, activated
// features, the manifest-derived flags reference, and public visibility.
func (t *Translator) newCompile(pkg types.Package, node types.Node, unit types.CompilationUnit, ruleName string) (rules.CompileCommon, error) {
	common := rules.NewCompileCommon(ruleName)
	common.Srcs.Add(vendorTarget(pkg))
	common.CrateName = CrateName(unit.Name)
	common.Edition = pkg.Edition
	for _, feature := range node.Features {
		common.Features.Add(feature)
	}
	common.RustcFlags.Add(manifestFlagsRef(pkg))
	common.Visibility.Add("PUBLIC")

	root, err := vendorRelativeSource(pkg, unit)
	if err != nil {
		return rules.CompileCommon{}, err
	}
	common.CrateRoot = root
	return common, nil
}

// vendorRelativeSource computes a unit's source root relative to its
// package's manifest directory, under the vendor prefix. A source root
// outside the manifest directory is fatal.
func vendorRelativeSource(pkg types.Package, unit types.CompilationUnit) (string, error) {
	manifestDir := filepath.Dir(pkg.ManifestPath)
	rel, err := filepath.Rel(manifestDir, unit.SrcPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf(
				"source root %s of unit %s is not under manifest directory %s",
				unit.SrcPath, unit.Name, manifestDir)).
			WithCause(err)
	}
	return "vendor/" + filepath.ToSlash(rel), nil
}

// rewrite canonicalizes a label through the cell rewriter when cell
// alignment is enabled. Rewrite failures are recoverable: the original
// label is used and a warning logged.
func (t *Translator) rewrite(ctx context.Context, label string, atRoot bool) string {
	if !t.Config.AlignCells {
		return label
	}
	rewritten, err := t.Cells.Rewrite(label, atRoot)
	if err != nil {
		log.Ctx(ctx).Warn().
			Str("label", label).
			Err(err).
			Msg("failed to rewrite rule label, using original")
		return label
	}
	return rewritten
}
