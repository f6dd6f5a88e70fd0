package main

import (
	"context"
	"errors"
	"io"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/cobra"
)

func newGitInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git-init",
		Short: "create a .git mirror alongside the repository",
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		if err := r.GitInit(); err != nil {
			return err
		}
		fprintln(false, cmd.OutOrStdout(), "initialized git mirror")
		return nil
	}
	return cmd
}

func newSyncToGitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-to-git",
		Short: "translate HEAD's history into the git mirror",
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withGitMirror(cmd.OutOrStdout(), cfg, func(out io.Writer, r *avc.Repository) error {
			oid, err := r.SyncToGit()
			if err != nil {
				return err
			}
			fprintf(false, out, "synced to git %s\n", oid.String())
			return nil
		})
	}
	return cmd
}

func newVerifyGitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-git",
		Short: "check that the git mirror agrees with HEAD",
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withGitMirror(cmd.OutOrStdout(), cfg, func(out io.Writer, r *avc.Repository) error {
			ok, err := r.VerifyGit()
			if err != nil {
				return err
			}
			if ok {
				fprintln(false, out, "git mirror matches HEAD")
				return nil
			}
			fprintln(false, out, "git mirror is out of sync")
			return errors.New("git mirror out of sync")
		})
	}
	return cmd
}

func newMigrateCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "import the git mirror's history into the repository",
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withGitMirror(cmd.OutOrStdout(), cfg, func(out io.Writer, r *avc.Repository) error {
			oid, err := r.Migrate()
			if err != nil {
				return err
			}
			fprintf(false, out, "migrated %s\n", oid.String())
			return nil
		})
	}
	return cmd
}

func newPushCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push [remote] [refspec]",
		Short: "sync to git and push to a remote",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withGitMirror(cmd.OutOrStdout(), cfg, func(out io.Writer, r *avc.Repository) error {
			msg, err := r.Push(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fprintln(false, out, msg)
			return nil
		})
	}
	return cmd
}

func newPullCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull [remote] [refspec]",
		Short: "fetch from a remote into the git mirror",
		Args:  cobra.ExactArgs(2),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withGitMirror(cmd.OutOrStdout(), cfg, func(out io.Writer, r *avc.Repository) error {
			msg, err := r.Pull(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fprintln(false, out, msg)
			fprintln(false, out, "run 'avc migrate' to bring the fetched history into the repository")
			return nil
		})
	}
	return cmd
}

func withGitMirror(out io.Writer, cfg *globalFlags, fn func(io.Writer, *avc.Repository) error) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	return fn(out, r)
}
