// Package main is the entry point for the fuzzysearch CLI tool.
package main

import (
	"os"

	"github.com/PixelSnake/FuzzySearch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
