package main

import (
	"os"

	"github.com/jpsank/breaker/internal/cli"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], version, commit, date))
}
