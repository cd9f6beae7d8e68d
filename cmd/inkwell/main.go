// Package main is the entrypoint for the Inkwell blog post API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/inkwell/inkwell/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
