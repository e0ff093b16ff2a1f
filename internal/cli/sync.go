package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"buckgen/internal/app"
)

func newSyncCommand() *cobra.Command {
	opts := graphOptions{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring build rules up to date with the package graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), cmd, opts)
		},
	}
	addGraphFlags(cmd, &opts)
	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, opts graphOptions) error {
	service := newAppService()
	result, err := service.Sync(ctx, app.SyncRequest{
		Config:   repoConfig(cmd, opts),
		Separate: resolveBool(cmd, opts.Separate, "separate", "separate"),
		NoMerge:  resolveBool(cmd, opts.NoMerge, "no_merge", "no-merge"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("synced: %d added, %d changed, %d removed\n",
		result.Added, result.Changed, result.Removed)
	return nil
}
