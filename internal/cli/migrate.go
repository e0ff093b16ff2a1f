package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"buckgen/internal/app"
	"buckgen/internal/types"
)

type graphOptions struct {
	Separate             bool
	NoMerge              bool
	AlignCells           bool
	InheritWorkspaceDeps bool
	IgnoreTests          bool
	PatchFields          []string
}

func newMigrateCommand() *cobra.Command {
	opts := graphOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Generate build rules for the whole package graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), cmd, opts)
		},
	}
	addGraphFlags(cmd, &opts)
	return cmd
}

func runMigrate(ctx context.Context, cmd *cobra.Command, opts graphOptions) error {
	service := newAppService()
	result, err := service.Migrate(ctx, app.MigrateRequest{
		Config:   repoConfig(cmd, opts),
		Separate: resolveBool(cmd, opts.Separate, "separate", "separate"),
		NoMerge:  resolveBool(cmd, opts.NoMerge, "no_merge", "no-merge"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("migrated %d packages\n", result.PackageCount)
	return nil
}

func addGraphFlags(cmd *cobra.Command, opts *graphOptions) {
	cmd.Flags().BoolVar(&opts.Separate, "separate", false, "Leave first-party rule files under manual control")
	cmd.Flags().BoolVar(&opts.NoMerge, "no-merge", false, "Do not preserve fields from existing rule files")
	cmd.Flags().BoolVar(&opts.AlignCells, "align-cells", false, "Rewrite labels to their owning cells")
	cmd.Flags().BoolVar(&opts.InheritWorkspaceDeps, "inherit-workspace-deps", false, "Emit a shared third-party alias file")
	cmd.Flags().BoolVar(&opts.IgnoreTests, "ignore-tests", false, "Skip unittest rule generation")
	cmd.Flags().StringSliceVar(&opts.PatchFields, "patch-field", nil, "Rule fields preserved from existing rule files")
	_ = viper.BindPFlag("separate", cmd.Flags().Lookup("separate"))
	_ = viper.BindPFlag("no_merge", cmd.Flags().Lookup("no-merge"))
	_ = viper.BindPFlag("align_cells", cmd.Flags().Lookup("align-cells"))
	_ = viper.BindPFlag("inherit_workspace_deps", cmd.Flags().Lookup("inherit-workspace-deps"))
	_ = viper.BindPFlag("ignore_tests", cmd.Flags().Lookup("ignore-tests"))
	_ = viper.BindPFlag("patch_fields", cmd.Flags().Lookup("patch-field"))
}

func repoConfig(cmd *cobra.Command, opts graphOptions) types.RepoConfig {
	return types.RepoConfig{
		AlignCells:           resolveBool(cmd, opts.AlignCells, "align_cells", "align-cells"),
		InheritWorkspaceDeps: resolveBool(cmd, opts.InheritWorkspaceDeps, "inherit_workspace_deps", "inherit-workspace-deps"),
		IgnoreTests:          resolveBool(cmd, opts.IgnoreTests, "ignore_tests", "ignore-tests"),
		PatchFields:          resolveStrings(cmd, opts.PatchFields, "patch_fields", "patch-field"),
	}
}
