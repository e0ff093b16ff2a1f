package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"buckgen/internal/app"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Seed a project's cell configuration and modifier file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), args)
		},
	}
	return cmd
}

func runInit(ctx context.Context, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	service := newAppService()
	result, err := service.Init(ctx, app.InitRequest{Dir: dir})
	if err != nil {
		return err
	}
	fmt.Printf("initialized, bundle pinned to %s\n", result.CommitHash)
	return nil
}
