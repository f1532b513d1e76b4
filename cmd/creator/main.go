// Command creator runs the restricted code interpreter: one-shot
// execution, an interactive REPL and the HTTP gateway.
package main

import (
	"fmt"
	"os"

	"github.com/bitsnaps/open-creator/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
