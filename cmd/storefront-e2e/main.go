// Command storefront-e2e runs data-driven checkout scenarios against a
// storefront and records their evidence.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/storefront-e2e/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
