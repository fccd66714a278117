package main

import (
	"os"

	"github.com/lherron/mdnotes/internal/cli"
)

func main() {
	if err := cli.ExecuteMigrator(); err != nil {
		os.Exit(cli.ReportError(os.Stderr, err))
	}
}
