package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "show staged and unstaged changes",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statusCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func statusCmd(out io.Writer, cfg *globalFlags) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	report, err := r.Status()
	if err != nil {
		return err
	}

	if len(report.Staged) > 0 {
		fprintln(false, out, "Changes to be committed:")
		for _, e := range report.Staged {
			fprintf(false, out, "\t%s: %s\n", e.Kind, e.Path)
		}
	}
	if len(report.Unstaged) > 0 {
		fprintln(false, out, "Changes not staged for commit:")
		for _, e := range report.Unstaged {
			fprintf(false, out, "\t%s: %s\n", e.Kind, e.Path)
		}
	}
	if len(report.Staged) == 0 && len(report.Unstaged) == 0 {
		fprintln(false, out, "nothing to commit, working tree clean")
	}
	return nil
}
