package main

import (
	"io"
	"os"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type initCmdFlags struct {
	quiet bool
}

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "create an empty repository",
		Args:  cobra.MaximumNArgs(1),
	}

	flags := initCmdFlags{}
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "only print error messages")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		directory := cfg.C.String()
		if len(args) > 0 {
			directory = args[0]
		}
		return initCmd(cmd.OutOrStdout(), directory, flags)
	}

	return cmd
}

func initCmd(out io.Writer, directory string, flags initCmdFlags) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	r, err := avc.Init(afero.NewOsFs(), directory)
	if err != nil {
		return err
	}

	fprintln(flags.quiet, out, "Initialized empty repository in", r.WorkTree())
	return nil
}
