package main

import (
	"io"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/cobra"
)

func newRmCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [paths...]",
		Short: "remove files from the staging index and working tree",
		Args:  cobra.MinimumNArgs(1),
	}

	cached := cmd.Flags().Bool("cached", false, "only remove from the staging index, keep the working copy")
	recursive := cmd.Flags().BoolP("recursive", "r", false, "remove every staged entry under a directory prefix")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rmCmd(cmd.OutOrStdout(), cfg, args, avc.RmOptions{
			Cached:    *cached,
			Recursive: *recursive,
		})
	}

	return cmd
}

func rmCmd(out io.Writer, cfg *globalFlags, paths []string, opts avc.RmOptions) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	if err := r.Rm(paths, opts); err != nil {
		return err
	}

	for _, p := range paths {
		fprintln(false, out, "rm", p)
	}
	return nil
}
