package main

import (
	"errors"
	"io"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/cobra"
)

func newCommitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "record the staged changes as a new snapshot",
	}

	message := cmd.Flags().StringP("message", "m", "", "commit message")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *message == "" {
			return errors.New("a commit message is required (-m)")
		}
		return commitCmd(cmd.OutOrStdout(), cfg, *message)
	}

	return cmd
}

func commitCmd(out io.Writer, cfg *globalFlags, message string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	commit, err := r.Commit(message)
	if err != nil {
		if errors.Is(err, avc.ErrNothingToCommit) {
			fprintln(false, out, "nothing to commit, staging area is empty")
			return nil
		}
		return err
	}

	fprintf(false, out, "[%s] %s\n", commit.ID().String()[:12], message)
	return nil
}
