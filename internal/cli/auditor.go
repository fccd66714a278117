package cli

import (
	"github.com/spf13/cobra"

	"github.com/lherron/mdnotes/internal/audit"
	"github.com/lherron/mdnotes/internal/cli/appctx"
	"github.com/lherron/mdnotes/internal/id"
	"github.com/lherron/mdnotes/internal/render"
)

var rootAuditorCmd = &cobra.Command{
	Use:   "auditor <directory>",
	Short: "Find markdown files with dead links in a directory",
	Long: `auditor scans the markdown files directly inside a directory and reports
links to other notes whose target file does not exist.

A link target counts as a note when its file name (without .md) is a UUID
or is longer than --id-like-min-len characters. Links with a URL scheme
(http, https, ftp by default) are ignored.

Exit codes:
  0 - No dead links
  1 - Dead links found, or the directory is invalid

Examples:
  auditor ./vault              # List files with dead links
  auditor ./vault --verbose    # Also list each dead target
  auditor ./vault -o json      # Machine readable report`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          appctx.WithApp(appctx.DefaultOptions(), runAudit),
}

var auditVerbose bool

// ExecuteAuditor runs the auditor root command
func ExecuteAuditor() error {
	return rootAuditorCmd.Execute()
}

func init() {
	setVersion(rootAuditorCmd)
	addCommonFlags(rootAuditorCmd)

	rootAuditorCmd.Flags().BoolVarP(&auditVerbose, "verbose", "v", false, "Show each dead link under its file")
	rootAuditorCmd.Flags().Int("id-like-min-len", id.DefaultMinLen, "Stems longer than this count as note identifiers")
}

func runAudit(app *appctx.App, cmd *cobra.Command, args []string) error {
	cfg := app.Config

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return exitError(1, err)
	}

	report, err := audit.Scan(args[0], audit.Options{
		Predicate: id.IdentifierLike(cfg.IDLikeMinLen),
		Schemes:   cfg.URLSchemes,
		Logger:    app.Logger,
	})
	if err != nil {
		return exitError(1, err)
	}

	if err := writeAuditReport(cmd, format, report, auditVerbose); err != nil {
		return err
	}

	if report.HasDeadLinks() {
		return silentExit(1)
	}
	return nil
}

func writeAuditReport(cmd *cobra.Command, format render.Format, report *audit.Report, verbose bool) error {
	r := render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format})
	handled, err := r.Structured(report)
	if err != nil || handled {
		return err
	}
	return audit.WriteText(cmd.OutOrStdout(), report, verbose)
}
