package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buckgen/internal/rules"
	"buckgen/internal/types"
)

const (
	serdeID = types.PackageID("registry+https://github.com/rust-lang/crates.io-index#serde@1.0.200")
	libcID  = types.PackageID("registry+https://github.com/rust-lang/crates.io-index#libc@0.2.150")
	zlibID  = types.PackageID("registry+https://github.com/rust-lang/crates.io-index#zlib-sys@1.1.0")
	appID   = types.PackageID("path+file:///work/app#app@0.1.0")
	utilID  = types.PackageID("path+file:///work/app/crates/util#util@0.1.0")
)

const registrySource = "registry+https://github.com/rust-lang/crates.io-index"

func serdePackage() types.Package {
	return types.Package{
		ID:           serdeID,
		Name:         "serde",
		Version:      "1.0.200",
		ManifestPath: "/registry/serde-1.0.200/Cargo.toml",
		Source:       registrySource,
		Edition:      "2018",
		Targets: []types.CompilationUnit{
			{
				Name:    "serde",
				Kinds:   []types.TargetKind{types.TargetKindLib},
				SrcPath: "/registry/serde-1.0.200/src/lib.rs",
				Test:    true,
			},
		},
	}
}

func libcPackage() types.Package {
	return types.Package{
		ID:           libcID,
		Name:         "libc",
		Version:      "0.2.150",
		ManifestPath: "/registry/libc-0.2.150/Cargo.toml",
		Source:       registrySource,
		Edition:      "2015",
		Targets: []types.CompilationUnit{
			{
				Name:    "libc",
				Kinds:   []types.TargetKind{types.TargetKindLib},
				SrcPath: "/registry/libc-0.2.150/src/lib.rs",
			},
			{
				Name:    "build-script-build",
				Kinds:   []types.TargetKind{types.TargetKindCustomBuild},
				SrcPath: "/registry/libc-0.2.150/build.rs",
			},
		},
	}
}

func zlibPackage() types.Package {
	return types.Package{
		ID:           zlibID,
		Name:         "zlib-sys",
		Version:      "1.1.0",
		ManifestPath: "/registry/zlib-sys-1.1.0/Cargo.toml",
		Source:       registrySource,
		Links:        "z",
		Edition:      "2018",
		Targets: []types.CompilationUnit{
			{
				Name:    "zlib-sys",
				Kinds:   []types.TargetKind{types.TargetKindLib},
				SrcPath: "/registry/zlib-sys-1.1.0/src/lib.rs",
			},
			{
				Name:    "build-script-build",
				Kinds:   []types.TargetKind{types.TargetKindCustomBuild},
				SrcPath: "/registry/zlib-sys-1.1.0/build.rs",
			},
		},
	}
}

func appPackage() types.Package {
	return types.Package{
		ID:           appID,
		Name:         "app",
		Version:      "0.1.0",
		ManifestPath: "/work/app/Cargo.toml",
		Edition:      "2021",
		Targets: []types.CompilationUnit{
			{
				Name:    "app",
				Kinds:   []types.TargetKind{types.TargetKindLib},
				SrcPath: "/work/app/src/lib.rs",
				Test:    true,
			},
			{
				Name:    "app",
				Kinds:   []types.TargetKind{types.TargetKindBin},
				SrcPath: "/work/app/src/main.rs",
			},
			{
				Name:    "integration",
				Kinds:   []types.TargetKind{types.TargetKindTest},
				SrcPath: "/work/app/tests/integration.rs",
			},
		},
	}
}

func edge(pkg types.PackageID, name string, kinds ...types.DepKindInfo) types.DependencyEdge {
	if len(kinds) == 0 {
		kinds = []types.DepKindInfo{{Kind: types.DepKindNormal}}
	}
	return types.DependencyEdge{Pkg: pkg, Name: name, Kinds: kinds}
}

func newTestTranslator(t *testing.T, cfg types.RepoConfig, packages ...types.Package) *Translator {
	t.Helper()
	pkgMap := map[types.PackageID]types.Package{}
	for _, pkg := range packages {
		pkgMap[pkg.ID] = pkg
	}
	return &Translator{
		Packages: pkgMap,
		Nodes:    map[types.PackageID]types.Node{},
		Root:     appID,
		Checksums: map[string]string{
			"serde-1.0.200":  "aaaa",
			"libc-0.2.150":   "bbbb",
			"zlib-sys-1.1.0": "cccc",
		},
		Env:         Environment{Triple: testTriple, Cfgs: testCfgs(t)},
		Config:      cfg,
		ProjectRoot: "/work/app",
	}
}

func findCompile(t *testing.T, rs []rules.Rule, name string) rules.CompileRule {
	t.Helper()
	for _, r := range rs {
		if compile, ok := r.(rules.CompileRule); ok && r.RuleName() == name {
			return compile
		}
	}
	t.Fatalf("no compile rule named %q", name)
	return nil
}

func TestTranslateDependency(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, serdePackage())
	node := types.Node{ID: serdeID, Features: []string{"default", "derive"}}

	out, err := tr.TranslateDependency(t.Context(), serdePackage(), node)
	require.NoError(t, err)
	require.Len(t, out, 3)

	archive, ok := out[0].(*rules.HTTPArchive)
	require.True(t, ok)
	assert.Equal(t, "serde-vendor", archive.Name)
	assert.Equal(t, "aaaa", archive.SHA256)
	assert.Equal(t, "serde-1.0.200", archive.StripPrefix)
	if diff := cmp.Diff(
		[]string{"https://static.crates.io/crates/serde/serde-1.0.200.crate"},
		archive.URLs.Sorted()); diff != "" {
		t.Fatalf("unexpected urls (-want +got):\n%s", diff)
	}

	manifest, ok := out[1].(*rules.CargoManifest)
	require.True(t, ok)
	assert.Equal(t, "serde-manifest", manifest.Name)
	assert.Equal(t, ":serde-vendor", manifest.Vendor)

	lib, ok := out[2].(*rules.RustLibrary)
	require.True(t, ok)
	assert.Equal(t, "serde", lib.Name)
	assert.Equal(t, "serde", lib.CrateName)
	assert.Equal(t, "vendor/src/lib.rs", lib.CrateRoot)
	assert.Equal(t, "2018", lib.Edition)
	assert.True(t, lib.Srcs.Has(":serde-vendor"))
	assert.True(t, lib.Features.Has("derive"))
	assert.True(t, lib.RustcFlags.Has("@$(location :serde-manifest[env_flags])"))
	assert.True(t, lib.Visibility.Has("PUBLIC"))
}

func TestTranslateDependencyMissingChecksumFails(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, serdePackage())
	delete(tr.Checksums, "serde-1.0.200")

	_, err := tr.TranslateDependency(t.Context(), serdePackage(), types.Node{ID: serdeID})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestTranslateDependencyRequiresOneLibraryUnit(t *testing.T) {
	pkg := serdePackage()
	pkg.Targets = nil
	tr := newTestTranslator(t, types.RepoConfig{}, pkg)

	_, err := tr.TranslateDependency(t.Context(), pkg, types.Node{ID: serdeID})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestTranslateRootDisambiguatesLibraryAndBinary(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, appPackage())
	node := types.Node{ID: appID}

	out, err := tr.TranslateRoot(t.Context(), appPackage(), node)
	require.NoError(t, err)

	group, ok := out[0].(*rules.FileGroup)
	require.True(t, ok)
	assert.Equal(t, "app-vendor", group.Name)

	binary := findCompile(t, out, "app")
	assert.True(t, binary.(*rules.RustBinary).Deps.Has(":libapp"))

	library := findCompile(t, out, "libapp")
	assert.Equal(t, "app", library.(*rules.RustLibrary).CrateName)
	assert.Equal(t, "vendor/src/lib.rs", library.(*rules.RustLibrary).CrateRoot)
}

func TestTranslateRootEmitsTestRules(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, appPackage())
	node := types.Node{ID: appID}

	out, err := tr.TranslateRoot(t.Context(), appPackage(), node)
	require.NoError(t, err)

	unittest := findCompile(t, out, "app-unittest").(*rules.RustTest)
	assert.Equal(t, "vendor/src/lib.rs", unittest.CrateRoot)

	integration := findCompile(t, out, "integration").(*rules.RustTest)
	assert.Equal(t, "vendor/tests/integration.rs", integration.CrateRoot)
	assert.Equal(t, "$(location :app)", integration.Env["CARGO_BIN_EXE_app"])
	assert.True(t, integration.Deps.Has(":libapp"))
}

func TestTranslateRootIgnoresTestsWhenConfigured(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{IgnoreTests: true}, appPackage())

	out, err := tr.TranslateRoot(t.Context(), appPackage(), types.Node{ID: appID})
	require.NoError(t, err)

	for _, r := range out {
		_, isTest := r.(*rules.RustTest)
		assert.False(t, isTest, "unexpected test rule %q", r.RuleName())
	}
}

func TestBuildScriptRules(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, libcPackage())
	node := types.Node{ID: libcID, Features: []string{"std"}}

	out, err := tr.TranslateDependency(t.Context(), libcPackage(), node)
	require.NoError(t, err)
	require.Len(t, out, 5)

	lib := findCompile(t, out, "libc").(*rules.RustLibrary)
	assert.Equal(t, "$(location :libc-build-script-run[out_dir])", lib.Env["OUT_DIR"])
	assert.True(t, lib.RustcFlags.Has("@$(location :libc-build-script-run[rustc_flags])"))

	build := findCompile(t, out, "libc-build-script-build").(*rules.RustBinary)
	assert.Equal(t, "build_script_build", build.CrateName)
	assert.Equal(t, "vendor/build.rs", build.CrateRoot)
	assert.Empty(t, build.Visibility.Sorted())
	// The compile rule of the build script itself is not patched.
	assert.NotContains(t, build.Env, "OUT_DIR")

	run, ok := out[4].(*rules.BuildscriptRun)
	require.True(t, ok)
	assert.Equal(t, "libc-build-script-run", run.Name)
	assert.Equal(t, "libc", run.PackageName)
	assert.Equal(t, ":libc-build-script-build", run.BuildscriptRule)
	assert.Equal(t, "0.2.150", run.Version)
	assert.Equal(t, ":libc-vendor", run.ManifestDir)
	assert.True(t, run.EnvSrcs.Has(":libc-manifest[env_dict]"))
	assert.True(t, run.Features.Has("std"))
}

func TestBuildScriptRunReferencesLinksDependencies(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, libcPackage(), zlibPackage())
	node := types.Node{
		ID:   libcID,
		Deps: []types.DependencyEdge{edge(zlibID, "zlib_sys")},
	}

	out, err := tr.TranslateDependency(t.Context(), libcPackage(), node)
	require.NoError(t, err)

	run := out[len(out)-1].(*rules.BuildscriptRun)
	assert.True(t, run.EnvSrcs.Has(
		"//third-party/rust/crates/zlib-sys/1.1.0:zlib-sys-build-script-run[metadata]"))
}

func TestBuildScriptRunLinksWithoutBuildUnitFails(t *testing.T) {
	broken := zlibPackage()
	broken.Targets = broken.Targets[:1]
	tr := newTestTranslator(t, types.RepoConfig{}, libcPackage(), broken)
	node := types.Node{
		ID:   libcID,
		Deps: []types.DependencyEdge{edge(zlibID, "zlib_sys")},
	}

	_, err := tr.TranslateDependency(t.Context(), libcPackage(), node)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestVendorRelativeSourceRejectsEscapes(t *testing.T) {
	pkg := serdePackage()
	unit := pkg.Targets[0]
	unit.SrcPath = "/elsewhere/lib.rs"

	_, err := vendorRelativeSource(pkg, unit)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}
