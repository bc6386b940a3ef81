// Package main is the entry point for the sitescout CLI/TUI.
package main

import (
	"os"

	"github.com/sitescout-io/sitescout/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
