// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Devkeep.
//
// Usage:
//
//	go run . [flags]
//	./devkeep [flags]
//
// This launches the Devkeep CLI; bare invocation starts the interactive
// TUI. See --help for options.
package main

import (
	"fmt"
	"os"

	"github.com/devkeep/devkeep/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
