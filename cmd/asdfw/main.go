package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	rootcmd "github.com/go-ports/asdfw/cmd/asdfw/root"
	"github.com/go-ports/asdfw/cmd/asdfw/shared"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx := &shared.Context{}
	root := rootcmd.NewWithContext(ctx)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	_ = ctx.Close()
	if err == nil {
		return 0
	}
	var exitErr *shared.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "asdfw: %v\n", err)
	return 1
}
