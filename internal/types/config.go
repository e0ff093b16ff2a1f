package types

// RepoConfig holds the per-repository behavior toggles read from the
// tool's config file (viper-backed). PatchFields lists the rule fields
// preserved from an existing rule file when regenerating it.
type RepoConfig struct {
	AlignCells           bool     `mapstructure:"align_cells" yaml:"align_cells"`
	InheritWorkspaceDeps bool     `mapstructure:"inherit_workspace_deps" yaml:"inherit_workspace_deps"`
	IgnoreTests          bool     `mapstructure:"ignore_tests" yaml:"ignore_tests"`
	PatchFields          []string `mapstructure:"patch_fields" yaml:"patch_fields"`
}
