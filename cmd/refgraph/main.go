// Package main is the entry point for the refgraph CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/opmodel/refgraph/internal/cmd"
	oerrors "github.com/opmodel/refgraph/internal/errors"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var exitErr *oerrors.ExitError
		if errors.As(err, &exitErr) {
			// The command layer may have reported it already
			if !exitErr.Printed {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(oerrors.ExitCodeFromError(err))
	}
}
