package main

import (
	"context"
	"io"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/cobra"
)

func newResetCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset [rev]",
		Short: "move HEAD and the staging index to rev",
		Args:  cobra.MaximumNArgs(1),
	}

	hard := cmd.Flags().Bool("hard", false, "also rewrite the working tree")
	clean := cmd.Flags().Bool("clean", false, "also wipe untracked working-tree paths")
	yes := cmd.Flags().Bool("yes", false, "confirm a --clean reset")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		rev := "HEAD"
		if len(args) > 0 {
			rev = args[0]
		}

		mode := avc.ResetSoft
		switch {
		case *clean:
			mode = avc.ResetClean
		case *hard:
			mode = avc.ResetHard
		}

		return resetCmd(cmd.OutOrStdout(), cmd.Context(), cfg, rev, avc.ResetOptions{
			Mode:      mode,
			Confirmed: *yes,
		})
	}

	return cmd
}

func resetCmd(out io.Writer, ctx context.Context, cfg *globalFlags, rev string, opts avc.ResetOptions) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	oid, err := r.Reset(ctx, rev, opts)
	if err != nil {
		return err
	}

	fprintf(false, out, "HEAD is now at %s\n", oid.String())
	return nil
}
