// Package main is the entry point for the authr CLI.
// authr logs in against an authr server, keeps the issued tokens on disk
// and refreshes the access token transparently while calling protected endpoints.
package main

import (
	"os"

	"github.com/authr-project/authr-cli/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
