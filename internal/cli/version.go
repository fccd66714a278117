package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const versionTemplate = `{{.Name}} version {{.Version}}
`

func setVersion(cmd *cobra.Command) {
	cmd.Version = Version + " (commit " + GitCommit + ", built " + BuildDate + ")"
	cmd.SetVersionTemplate(versionTemplate)
}
