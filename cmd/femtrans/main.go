// Command femtrans normalizes finite element model snapshots into their
// analysis-ready form and archives the result.
package main

import (
	"context"
	"fmt"
	"os"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(context.Background(), os.Args[1:]))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string) int {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
