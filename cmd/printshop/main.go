// Command printshop is the customizer's command line client.
package main

import (
	"os"

	"github.com/turtacn/PrintShop-Customizer/internal/interfaces/cli"
)

// Overridden with -ldflags "-X main.version=...".
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version, cli.GitCommit, cli.BuildDate = version, commit, buildDate
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
