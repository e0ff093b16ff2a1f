package cells

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMaps() Maps {
	return Maps{
		Cells: map[string]string{
			"root":        ".",
			"third_party": "third-party",
			"deep":        "third-party/rust",
		},
		Aliases: map[string]string{
			"tp": "third_party",
		},
	}
}

func TestResolveCellMostSpecificWins(t *testing.T) {
	m := testMaps()

	cell, ok := m.ResolveCell("src/lib.rs")
	require.True(t, ok)
	assert.Equal(t, "root", cell)

	cell, ok = m.ResolveCell("third-party/something")
	require.True(t, ok)
	assert.Equal(t, "third_party", cell)

	cell, ok = m.ResolveCell("third-party/rust/crates/foo/1.0")
	require.True(t, ok)
	assert.Equal(t, "deep", cell)
}

func TestResolveCellNoMatch(t *testing.T) {
	m := Maps{Cells: map[string]string{"sub": "a/b"}}
	_, ok := m.ResolveCell("c/d")
	assert.False(t, ok)
}

func TestResolveCellTieBreaksLexicographically(t *testing.T) {
	m := Maps{Cells: map[string]string{
		"beta":  "shared",
		"alpha": "shared",
	}}
	cell, ok := m.ResolveCell("shared/pkg")
	require.True(t, ok)
	assert.Equal(t, "alpha", cell)
}

func TestStripCellPrefix(t *testing.T) {
	m := testMaps()

	stripped, ok := m.StripCellPrefix("third_party", "third-party/rust/crates/foo/1.0")
	require.True(t, ok)
	assert.Equal(t, "rust/crates/foo/1.0", stripped)

	// A declared path of "." owns everything and strips nothing.
	stripped, ok = m.StripCellPrefix("root", "src/lib")
	require.True(t, ok)
	assert.Equal(t, "src/lib", stripped)

	// Aliases resolve before lookup.
	stripped, ok = m.StripCellPrefix("tp", "third-party/x")
	require.True(t, ok)
	assert.Equal(t, "x", stripped)

	// Non-matching paths pass through unchanged.
	stripped, ok = m.StripCellPrefix("deep", "elsewhere/y")
	assert.False(t, ok)
	assert.Equal(t, "elsewhere/y", stripped)
}

func TestSortedCellNames(t *testing.T) {
	m := testMaps()
	assert.Equal(t, []string{"deep", "root", "third_party"}, m.SortedCellNames())
}
