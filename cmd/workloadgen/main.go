// Package main provides the CLI for the workloadgen test generator.
package main

import (
	"os"

	"github.com/leapstack-labs/workloadgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
