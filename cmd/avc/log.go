package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "show commit history",
	}

	n := cmd.Flags().IntP("max-count", "n", 0, "limit the number of commits shown")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return logCmd(cmd.OutOrStdout(), cfg, *n)
	}

	return cmd
}

func logCmd(out io.Writer, cfg *globalFlags, n int) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	commits, err := r.Log(n)
	if err != nil {
		return err
	}

	for _, c := range commits {
		fprintf(false, out, "commit %s\n", c.ID().String())
		fprintf(false, out, "Author: %s <%s>\n", c.Author().Name, c.Author().Email)
		fprintf(false, out, "Date:   %s\n\n", c.Author().Time)
		fprintf(false, out, "    %s\n\n", c.Message())
	}
	return nil
}
