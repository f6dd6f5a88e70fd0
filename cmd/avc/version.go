package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "print the avc build version",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		fprintln(false, cmd.OutOrStdout(), versionString())
		return nil
	}
	return cmd
}

func versionString() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "avc (unknown build)"
	}
	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	return fmt.Sprintf("avc %s", version)
}
