// Package main provides the leaplua command.
package main

import (
	"os"

	"github.com/leapstack-labs/leaplua/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
