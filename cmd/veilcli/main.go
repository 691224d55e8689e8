// Command veil is the CLI entry point; the application itself lives in
// package veil under cmd/veil so it can be constructed and run from tests.
package main

import (
	"fmt"
	"os"

	"github.com/drand/veil/cmd/veil"
)

func fatal(str string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, str+"\n", args...)
	os.Exit(1)
}

func main() {
	app := veil.CLI()
	if err := app.Run(os.Args); err != nil {
		fatal("%s", err)
	}
}
