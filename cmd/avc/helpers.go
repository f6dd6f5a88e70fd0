package main

import (
	"fmt"
	"io"

	avc "github.com/assembler-0/avc"
	"github.com/spf13/afero"
)

func loadRepository(cfg *globalFlags) (*avc.Repository, error) {
	r, err := avc.Open(afero.NewOsFs(), cfg.C.String())
	if err != nil {
		return nil, fmt.Errorf("could not open repository: %w", err)
	}
	return r, nil
}

func fprintln(quiet bool, out io.Writer, msg ...interface{}) {
	if !quiet {
		fmt.Fprintln(out, msg...)
	}
}

func fprintf(quiet bool, out io.Writer, format string, a ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format, a...)
	}
}
