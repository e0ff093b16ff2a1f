package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buckgen/internal/rules"
	"buckgen/internal/types"
)

func utilPackage() types.Package {
	return types.Package{
		ID:           utilID,
		Name:         "util",
		Version:      "0.1.0",
		ManifestPath: "/work/app/crates/util/Cargo.toml",
		Edition:      "2021",
		Targets: []types.CompilationUnit{
			{
				Name:    "util",
				Kinds:   []types.TargetKind{types.TargetKindLib},
				SrcPath: "/work/app/crates/util/src/lib.rs",
			},
		},
	}
}

func devEdge(pkg types.PackageID, name string) types.DependencyEdge {
	return edge(pkg, name, types.DepKindInfo{Kind: types.DepKindDevelopment})
}

func buildEdge(pkg types.PackageID, name string) types.DependencyEdge {
	return edge(pkg, name, types.DepKindInfo{Kind: types.DepKindBuild})
}

func TestClassifyDepsEdgeKinds(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, serdePackage(), libcPackage(), zlibPackage())
	node := types.Node{
		ID: appID,
		Deps: []types.DependencyEdge{
			edge(serdeID, "serde"),
			devEdge(libcID, "libc"),
			buildEdge(zlibID, "zlib_sys"),
		},
	}

	serdeLabel := "//third-party/rust/crates/serde/1.0.200:serde"
	libcLabel := "//third-party/rust/crates/libc/0.2.150:libc"
	zlibLabel := "//third-party/rust/crates/zlib-sys/1.1.0:zlib-sys"

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	require.NoError(t, tr.classifyDeps(t.Context(), lib, node, types.TargetKindLib, true))
	assert.True(t, lib.Deps.Has(serdeLabel))
	assert.False(t, lib.Deps.Has(libcLabel))
	assert.False(t, lib.Deps.Has(zlibLabel))

	test := &rules.RustTest{CompileCommon: rules.NewCompileCommon("app-unittest")}
	require.NoError(t, tr.classifyDeps(t.Context(), test, node, types.TargetKindTest, true))
	assert.True(t, test.Deps.Has(serdeLabel))
	assert.True(t, test.Deps.Has(libcLabel))
	assert.False(t, test.Deps.Has(zlibLabel))

	build := &rules.RustBinary{CompileCommon: rules.NewCompileCommon("app-build-script-build")}
	require.NoError(t, tr.classifyDeps(t.Context(), build, node, types.TargetKindCustomBuild, true))
	assert.False(t, build.Deps.Has(serdeLabel))
	assert.False(t, build.Deps.Has(libcLabel))
	assert.True(t, build.Deps.Has(zlibLabel))
}

func TestClassifyDepsPlatformFilter(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, serdePackage(), libcPackage())
	node := types.Node{
		ID: appID,
		Deps: []types.DependencyEdge{
			edge(serdeID, "serde", types.DepKindInfo{Kind: types.DepKindNormal, Target: "cfg(windows)"}),
			edge(libcID, "libc", types.DepKindInfo{Kind: types.DepKindNormal, Target: "cfg(unix)"}),
		},
	}

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	require.NoError(t, tr.classifyDeps(t.Context(), lib, node, types.TargetKindLib, true))
	assert.False(t, lib.Deps.Has("//third-party/rust/crates/serde/1.0.200:serde"))
	assert.True(t, lib.Deps.Has("//third-party/rust/crates/libc/0.2.150:libc"))
}

func TestClassifyDepsUnparsablePredicateSkipsEdge(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, serdePackage())
	node := types.Node{
		ID: appID,
		Deps: []types.DependencyEdge{
			edge(serdeID, "serde", types.DepKindInfo{Kind: types.DepKindNormal, Target: "cfg(broken"}),
		},
	}

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	require.NoError(t, tr.classifyDeps(t.Context(), lib, node, types.TargetKindLib, true))
	assert.Empty(t, lib.Deps.Sorted())
}

func TestClassifyDepsRenamedReference(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, serdePackage())
	node := types.Node{
		ID:   appID,
		Deps: []types.DependencyEdge{edge(serdeID, "serde_renamed")},
	}

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	require.NoError(t, tr.classifyDeps(t.Context(), lib, node, types.TargetKindLib, true))
	assert.Empty(t, lib.Deps.Sorted())
	assert.Equal(t,
		"//third-party/rust/crates/serde/1.0.200:serde",
		lib.NamedDeps["serde_renamed"])
}

func TestClassifyDepsFirstPartyLabel(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{}, utilPackage())
	node := types.Node{
		ID:   appID,
		Deps: []types.DependencyEdge{edge(utilID, "util")},
	}

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	require.NoError(t, tr.classifyDeps(t.Context(), lib, node, types.TargetKindLib, true))
	assert.True(t, lib.Deps.Has("//crates/util:util"))
}

func TestClassifyDepsFirstPartyOutsideProjectRootFails(t *testing.T) {
	stray := utilPackage()
	stray.ManifestPath = "/elsewhere/util/Cargo.toml"
	tr := newTestTranslator(t, types.RepoConfig{}, stray)
	node := types.Node{
		ID:   appID,
		Deps: []types.DependencyEdge{edge(utilID, "util")},
	}

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	err := tr.classifyDeps(t.Context(), lib, node, types.TargetKindLib, true)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestClassifyDepsInheritedWorkspaceAlias(t *testing.T) {
	tr := newTestTranslator(t, types.RepoConfig{InheritWorkspaceDeps: true}, serdePackage())
	rootNode := types.Node{
		ID:   appID,
		Deps: []types.DependencyEdge{edge(serdeID, "serde")},
	}

	lib := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("app")}
	require.NoError(t, tr.classifyDeps(t.Context(), lib, rootNode, types.TargetKindLib, true))
	assert.True(t, lib.Deps.Has("//third-party/rust:serde"))

	// A non-root consumer still references the versioned rule.
	otherNode := types.Node{
		ID:   libcID,
		Deps: []types.DependencyEdge{edge(serdeID, "serde")},
	}
	other := &rules.RustLibrary{CompileCommon: rules.NewCompileCommon("libc")}
	require.NoError(t, tr.classifyDeps(t.Context(), other, otherNode, types.TargetKindLib, false))
	assert.True(t, other.Deps.Has("//third-party/rust/crates/serde/1.0.200:serde"))
}
