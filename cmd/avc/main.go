// Command avc is the command-line front end for the content-addressed
// version-control engine and its Git bridge.
package main

import (
	"fmt"
	"os"

	"github.com/assembler-0/avc/internal/env"
	"github.com/assembler-0/avc/internal/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags holds the flags every subcommand sees via the root
// command's PersistentFlags.
type globalFlags struct {
	C   pflag.Value
	env *env.Env
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root := newRootCmd(cwd, env.NewFromOs())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cwd string, e *env.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "avc",
		Short:         "content-addressed version control with a Git bridge",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{env: e}
	cfg.C = pathutil.NewDirPathFlagWithDefault(cwd)
	cmd.PersistentFlags().VarP(cfg.C, "C", "C", "Run as if avc was started in the provided path instead of the current working directory.")

	// porcelain
	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newAddCmd(cfg))
	cmd.AddCommand(newCommitCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))
	cmd.AddCommand(newLogCmd(cfg))
	cmd.AddCommand(newRmCmd(cfg))
	cmd.AddCommand(newResetCmd(cfg))

	// bridge
	cmd.AddCommand(newGitInitCmd(cfg))
	cmd.AddCommand(newSyncToGitCmd(cfg))
	cmd.AddCommand(newVerifyGitCmd(cfg))
	cmd.AddCommand(newMigrateCmd(cfg))
	cmd.AddCommand(newPushCmd(cfg))
	cmd.AddCommand(newPullCmd(cfg))
	cmd.AddCommand(newVersionCmd(cfg))

	return cmd
}
