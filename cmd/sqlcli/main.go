// Package main provides the sqlcli interactive SQLite shell.
package main

import (
	"os"

	"github.com/sqlcli-labs/sqlcli/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
