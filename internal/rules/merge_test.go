package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingLibrary(t *testing.T) []ParsedRule {
	t.Helper()
	content := `rust_library(
    name = "serde",
    deps = [
        ":hand-added",
    ],
    env = {
        "CUSTOM": "kept",
        "OUT_DIR": "stale",
    },
    rustc_flags = [
        "--cfg=extra",
    ],
    visibility = [
        "//src:__pkg__",
    ],
)
`
	parsed, err := ParseFile(content)
	require.NoError(t, err)
	return parsed
}

func TestMergeFieldsUnionsSets(t *testing.T) {
	fresh := &RustLibrary{CompileCommon: NewCompileCommon("serde")}
	fresh.AddDep(":generated")
	fresh.AddFlag("@$(location :serde-manifest[env_flags])")

	MergeFields(existingLibrary(t), []Rule{fresh}, []string{"deps", "rustc_flags"})

	if diff := cmp.Diff([]string{":generated", ":hand-added"}, fresh.Deps.Sorted()); diff != "" {
		t.Fatalf("unexpected deps (-want +got):\n%s", diff)
	}
	assert.True(t, fresh.RustcFlags.Has("--cfg=extra"))
	assert.True(t, fresh.RustcFlags.Has("@$(location :serde-manifest[env_flags])"))
}

func TestMergeFieldsMapAddsOnlyAbsentKeys(t *testing.T) {
	fresh := &RustLibrary{CompileCommon: NewCompileCommon("serde")}
	fresh.SetEnv("OUT_DIR", "fresh")

	MergeFields(existingLibrary(t), []Rule{fresh}, []string{"env"})

	assert.Equal(t, "fresh", fresh.Env["OUT_DIR"])
	assert.Equal(t, "kept", fresh.Env["CUSTOM"])
}

func TestMergeFieldsVisibilityReplaced(t *testing.T) {
	fresh := &RustLibrary{CompileCommon: NewCompileCommon("serde")}
	fresh.Visibility.Add("PUBLIC")

	MergeFields(existingLibrary(t), []Rule{fresh}, []string{"visibility"})

	assert.Equal(t, []string{"//src:__pkg__"}, fresh.Visibility.Sorted())
}

func TestMergeFieldsSkipsUnlistedAndUnmatched(t *testing.T) {
	fresh := &RustLibrary{CompileCommon: NewCompileCommon("serde")}
	fresh.AddDep(":generated")

	// Field not in the configured subset stays untouched.
	MergeFields(existingLibrary(t), []Rule{fresh}, []string{"env"})
	assert.False(t, fresh.Deps.Has(":hand-added"))

	// A fresh rule without an old counterpart stays untouched.
	other := &RustLibrary{CompileCommon: NewCompileCommon("unrelated")}
	MergeFields(existingLibrary(t), []Rule{other}, []string{"deps"})
	assert.Empty(t, other.Deps.Sorted())
}

func TestMergeFieldsNoFieldsIsNoop(t *testing.T) {
	fresh := &RustLibrary{CompileCommon: NewCompileCommon("serde")}
	MergeFields(existingLibrary(t), []Rule{fresh}, nil)
	assert.Empty(t, fresh.Deps.Sorted())
}
