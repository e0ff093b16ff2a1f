package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buckgen/internal/cells"
	"buckgen/internal/rules"
)

type fakeCellConfig struct {
	configs map[string]cells.Config
}

func newFakeCellConfig() *fakeCellConfig {
	return &fakeCellConfig{configs: map[string]cells.Config{}}
}

func (f *fakeCellConfig) Load(projectRoot string) (cells.Config, error) {
	return f.configs[projectRoot], nil
}

func (f *fakeCellConfig) Save(projectRoot string, cfg cells.Config) error {
	f.configs[projectRoot] = cfg
	return nil
}

type fakeRuleFiles struct {
	files map[string]string
}

func newFakeRuleFiles() *fakeRuleFiles {
	return &fakeRuleFiles{files: map[string]string{}}
}

func (f *fakeRuleFiles) Exists(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeRuleFiles) Read(path string) ([]rules.ParsedRule, error) {
	return rules.ParseFile(f.files[path])
}

func (f *fakeRuleFiles) Write(path string, content string) error {
	f.files[path] = content
	return nil
}

type fakePin struct {
	hash string
	err  error
}

func (f fakePin) LatestCommit(context.Context) (string, error) {
	return f.hash, f.err
}

func TestInitSeedsCellConfig(t *testing.T) {
	cellConfig := newFakeCellConfig()
	cellConfig.configs["/proj"] = cells.Parse("[cells]\n  root = .\n\n[external_cells]\n")
	files := newFakeRuleFiles()
	service := Service{
		CellConfig: cellConfig,
		RuleFiles:  files,
		BundlePin:  fakePin{hash: "feedface"},
	}

	result, err := service.Init(t.Context(), InitRequest{Dir: "/proj"})
	require.NoError(t, err)
	assert.Equal(t, "feedface", result.CommitHash)

	saved := cellConfig.configs["/proj"]
	assert.Contains(t, saved.Section("cells"), "  buckgen = buckgen")
	assert.Contains(t, saved.Section("external_cells"), "  buckgen = git")
	assert.Contains(t, saved.Section("external_cell_buckgen"), "  commit_hash = feedface")
	assert.Contains(t, saved.Section("external_cell_buckgen"),
		"  git_origin = https://github.com/buckgen-dev/buckgen-bundle")
	assert.Equal(t, []string{"  ignore = .git buck-out target"}, saved.Section("project"))

	// The bundle section slots in right after external_cells.
	serialized := saved.Serialize()
	assert.Less(t,
		strings.Index(serialized, "[external_cells]"),
		strings.Index(serialized, "[external_cell_buckgen]"))
	assert.Less(t,
		strings.Index(serialized, "[external_cell_buckgen]"),
		strings.Index(serialized, "[project]"))
}

func TestInitWritesModifierFile(t *testing.T) {
	files := newFakeRuleFiles()
	service := Service{
		CellConfig: newFakeCellConfig(),
		RuleFiles:  files,
		BundlePin:  fakePin{hash: "feedface"},
	}

	_, err := service.Init(t.Context(), InitRequest{Dir: "/proj"})
	require.NoError(t, err)

	content, ok := files.files["/proj/PACKAGE"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(content, rules.GeneratedMarker))
	assert.Contains(t, content, "set_cfg_constructor(aliases = ALIASES)")
	assert.Contains(t, content, `"debug": "buckgen//config/mode:debug",`)
	assert.Contains(t, content, "set_cfg_modifiers(")
}

func TestInitFallsBackToDefaultHash(t *testing.T) {
	cellConfig := newFakeCellConfig()
	service := Service{
		CellConfig: cellConfig,
		RuleFiles:  newFakeRuleFiles(),
		BundlePin:  fakePin{err: errors.New("rate limited")},
	}

	result, err := service.Init(t.Context(), InitRequest{Dir: "/proj"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBundleHash, result.CommitHash)
}

func TestUpdateReplacesBundleSection(t *testing.T) {
	cellConfig := newFakeCellConfig()
	cellConfig.configs["/proj"] = cells.Parse(
		"[cells]\n  buckgen = buckgen\n\n[external_cell_buckgen]\n  git_origin = https://github.com/buckgen-dev/buckgen-bundle\n  commit_hash = 0ldhash\n")
	service := Service{
		CellConfig: cellConfig,
		BundlePin:  fakePin{hash: "newhash"},
	}

	result, err := service.Update(t.Context(), UpdateRequest{Dir: "/proj"})
	require.NoError(t, err)
	assert.Equal(t, "newhash", result.CommitHash)

	saved := cellConfig.configs["/proj"]
	assert.Equal(t, []string{
		"  git_origin = https://github.com/buckgen-dev/buckgen-bundle",
		"  commit_hash = newhash",
	}, saved.Section("external_cell_buckgen"))
	assert.NotContains(t, saved.Serialize(), "0ldhash")
}
