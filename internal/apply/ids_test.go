package apply

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buckgen/internal/types"
)

func TestParseIdentifier(t *testing.T) {
	name, version, err := ParseIdentifier(
		"registry+https://github.com/rust-lang/crates.io-index#serde@1.0.200")
	require.NoError(t, err)
	assert.Equal(t, "serde", name)
	assert.Equal(t, "1.0.200", version)

	name, version, err = ParseIdentifier("path+file:///work/app#app@0.1.0")
	require.NoError(t, err)
	assert.Equal(t, "app", name)
	assert.Equal(t, "0.1.0", version)
}

func TestParseIdentifierBuildMetadata(t *testing.T) {
	name, version, err := ParseIdentifier(
		"registry+https://github.com/rust-lang/crates.io-index#wasi@0.11.0+wasi-snapshot-preview1")
	require.NoError(t, err)
	assert.Equal(t, "wasi", name)
	assert.Equal(t, "0.11.0", version)
}

func TestParseIdentifierRejectsMalformed(t *testing.T) {
	for _, id := range []types.PackageID{"", "serde@1.0.200", "registry+url#no-version"} {
		_, _, err := ParseIdentifier(id)
		require.Error(t, err, "id %q", id)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	}
}
