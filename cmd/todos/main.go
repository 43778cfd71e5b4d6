// Command todos keeps a to-do list in an embedded database and serves it
// as a web page.
package main

import (
	"os"

	"github.com/roach88/todos/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
