package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/benithors/domaincli/internal/fault"
)

type cliError struct {
	Code      int
	Err       error
	ShowUsage bool
	Cmd       *cobra.Command
}

func (e *cliError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

var errExit0 = &cliError{Code: 0}

func usageErr(cmd *cobra.Command, err error) error {
	return &cliError{Code: 2, Err: err, ShowUsage: true, Cmd: cmd}
}

// rpcErr turns a failed call into exit code 1. Only the caller-facing
// message is printed unless verbose is set.
func rpcErr(cmd *cobra.Command, err error, verbose bool) error {
	if verbose {
		return &cliError{Code: 1, Err: err, Cmd: cmd}
	}
	return &cliError{Code: 1, Err: errors.New(fault.Message(err)), Cmd: cmd}
}
