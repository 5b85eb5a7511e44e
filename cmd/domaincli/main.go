package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benithors/domaincli/internal/fault"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// run executes the command line in os.Args. SIGINT and SIGTERM cancel the
// command context, which also drives graceful shutdown of serve.
func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(version)
	return exitCode(os.Stderr, root.ExecuteContext(ctx))
}

// exitCode reports err on w and maps it to the process status: 0 ok,
// 1 runtime failure, 2 usage.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var ce *cliError
	if !errors.As(err, &ce) {
		fmt.Fprintln(w, fault.Message(err))
		return 1
	}
	if ce.Err != nil && ce.Err.Error() != "" {
		fmt.Fprintln(w, ce.Err.Error())
		fmt.Fprintln(w)
	}
	if ce.ShowUsage && ce.Cmd != nil {
		_ = ce.Cmd.Usage()
	}
	return ce.Code
}
