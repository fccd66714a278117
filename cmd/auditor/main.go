package main

import (
	"os"

	"github.com/lherron/mdnotes/internal/cli"
)

func main() {
	if err := cli.ExecuteAuditor(); err != nil {
		os.Exit(cli.ReportError(os.Stderr, err))
	}
}
