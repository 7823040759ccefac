// Package main provides the entry point for the codelogic CLI.
package main

import (
	"os"

	"github.com/dshills/codelogic-mcp/cmd/codelogic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
