// Package main provides the csvtranspose command.
package main

import (
	"os"

	"github.com/leapstack-labs/csvtranspose/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
