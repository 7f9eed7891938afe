// cmd/lexicon/main.go
//
// Entry point for the lexicon CLI. With no subcommand it opens the editable
// grid against the API configured in .lexicon/config.yaml.

package main

import (
	"fmt"
	"os"

	"github.com/kingrea/lexicon/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
