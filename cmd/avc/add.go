package main

import (
	"io"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/cobra"
)

func newAddCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "stage file contents for the next commit",
		Args:  cobra.ArbitraryArgs,
	}

	fast := cmd.Flags().Bool("fast", false, "store new blobs at compression level 0 (fastest)")
	emptyDirs := cmd.Flags().Bool("empty-dirs", false, "stage a placeholder for otherwise-empty directories")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return addCmd(cmd.OutOrStdout(), cfg, args, avc.AddOptions{
			Fast:          *fast,
			KeepEmptyDirs: *emptyDirs,
		})
	}

	return cmd
}

func addCmd(out io.Writer, cfg *globalFlags, paths []string, opts avc.AddOptions) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	staged, warnings, err := r.Add(paths, opts)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		fprintf(false, out, "warning: skipped %s: %v\n", w.Path, w.Err)
	}
	for _, p := range staged {
		fprintln(false, out, "add", p)
	}
	return nil
}
