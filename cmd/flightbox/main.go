// Command flightbox manages an on-device diagnostic report database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/flightbox/flightbox/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "flightbox: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
