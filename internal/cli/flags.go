package cli

import (
	"github.com/spf13/cobra"
)

// addCommonFlags registers the flags both tools share. Values are read back
// through appctx, which applies them over the loaded config.
func addCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides MDNOTES_LOG_LEVEL)")
	cmd.PersistentFlags().Bool("debug", false, "Shorthand for --log-level debug")
	cmd.Flags().StringP("output", "o", "", "Report format: text, json, yaml (overrides MDNOTES_OUTPUT)")
	cmd.Flags().StringSlice("scheme", nil, "URL schemes treated as external links (default http,https,ftp)")
}
