package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"buckgen/internal/app"
)

func newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [dir]",
		Short: "Re-pin the macro bundle cell to its newest revision",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), args)
		},
	}
	return cmd
}

func runUpdate(ctx context.Context, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	service := newAppService()
	result, err := service.Update(ctx, app.UpdateRequest{Dir: dir})
	if err != nil {
		return err
	}
	fmt.Printf("bundle pinned to %s\n", result.CommitHash)
	return nil
}
