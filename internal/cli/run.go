package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Run executes the command line with args and returns the process exit
// code. Failures are written to stderr, or to stdout as a JSON envelope
// under --format json.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, &RootOptions{Fs: afero.NewOsFs()}, args, stdout, stderr)
}

func run(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if opts.Format == "json" {
		WriteError(stdout, opts.Format, err)
	} else {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return GetExitCode(err)
}
