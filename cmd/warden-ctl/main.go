// Package main is the entry point for warden-ctl, the CLI tool for
// administering a warden instance.
package main

import (
	"fmt"
	"os"
)

// Build information, set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	Version = version
	Commit = commit
	BuildTime = buildTime

	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", Red("✗"), err)
		os.Exit(1)
	}
}
