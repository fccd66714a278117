package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/audit"
	"github.com/lherron/mdnotes/internal/cli/appctx"
	"github.com/lherron/mdnotes/internal/convert"
	"github.com/lherron/mdnotes/internal/id"
	"github.com/lherron/mdnotes/internal/logging"
	"github.com/lherron/mdnotes/internal/migrate"
	"github.com/lherron/mdnotes/internal/render"
)

var rootMigratorCmd = &cobra.Command{
	Use:   "migrator <source> <output-directory>",
	Short: "Migrate notes from a database into markdown files",
	Long: `migrator reads an owner's notes from a SQL database, converts their HTML
to markdown, assigns every note a fresh UUID, rewrites links between notes
to the new identifiers and writes one <uuid>.md file per note.

The source is a SQLite file path or a postgres:// or mysql:// DSN. Pass "-"
to use MDNOTES_SOURCE_DSN. Nothing is written unless every note is.

Examples:
  migrator notes.db ./vault
  migrator notes.db ./vault --owner 7 --verbose
  migrator postgres://notes@localhost/notes ./vault --audit
  migrator notes.db ./vault --dry-run --diff`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          appctx.WithApp(appctx.WithSource(), runMigrate),
}

var (
	migrateDryRun    bool
	migrateDiff      bool
	migrateAudit     bool
	migrateVerbose   bool
	migratePorcelain bool
)

// ExecuteMigrator runs the migrator root command
func ExecuteMigrator() error {
	return rootMigratorCmd.Execute()
}

func init() {
	setVersion(rootMigratorCmd)
	addCommonFlags(rootMigratorCmd)

	rootMigratorCmd.Flags().Int64("owner", 3, "Owner whose notes are migrated (overrides MDNOTES_OWNER_ID)")
	rootMigratorCmd.Flags().String("table", "notes_note", "Source table name")
	rootMigratorCmd.Flags().String("converter", string(convert.ModeAuto), "HTML converter: auto, fallback")
	rootMigratorCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Run the pipeline without writing files")
	rootMigratorCmd.Flags().BoolVar(&migrateDiff, "diff", false, "Show link rewrites as unified diffs")
	rootMigratorCmd.Flags().BoolVar(&migrateAudit, "audit", false, "Audit the output directory for dead links afterwards")
	rootMigratorCmd.Flags().BoolVarP(&migrateVerbose, "verbose", "v", false, "List old and new identifiers")
	rootMigratorCmd.Flags().BoolVar(&migratePorcelain, "porcelain", false, "Print the identifier list as tab separated values")
	rootMigratorCmd.Flags().Int("id-like-min-len", id.DefaultMinLen, "Stems longer than this count as note identifiers (--audit)")
}

func runMigrate(app *appctx.App, cmd *cobra.Command, args []string) error {
	cfg := app.Config
	out := cmd.OutOrStdout()

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return exitError(1, err)
	}

	chain, err := convert.New(convert.Mode(cfg.Converter), app.Logger)
	if err != nil {
		return exitError(1, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outputDir := args[1]
	result, err := migrate.Run(ctx, app.Source, migrate.Options{
		OutputDir: outputDir,
		Converter: chain,
		Suffix:    cfg.IDSuffix,
		Schemes:   cfg.URLSchemes,
		DryRun:    migrateDryRun,
		Diff:      migrateDiff,
		Logger:    app.Logger,
	})
	if err != nil {
		app.Logger.Error("migration failed", zap.Error(err))
		return exitError(1, err)
	}

	r := render.NewRenderer(out, render.Options{Format: format, Porcelain: migratePorcelain})
	handled, err := r.Structured(result)
	if err != nil {
		return err
	}
	if !handled {
		if err := writeMigrateText(out, r, result); err != nil {
			return err
		}
	}

	if !migrateAudit || migrateDryRun {
		return nil
	}

	report, err := audit.Scan(outputDir, audit.Options{
		Predicate: id.IdentifierLike(cfg.IDLikeMinLen),
		Schemes:   cfg.URLSchemes,
		Logger:    app.Logger,
	})
	if err != nil {
		return exitError(1, err)
	}
	if !report.HasDeadLinks() {
		app.Logger.Info("no dead links in output", zap.String(logging.FieldPath, outputDir))
		return nil
	}
	if !handled {
		if err := audit.WriteText(out, report, true); err != nil {
			return err
		}
	} else {
		app.Logger.Warn("dead links in output",
			zap.String(logging.FieldPath, outputDir),
			zap.Int(logging.FieldCount, len(report.Files)),
		)
	}
	return silentExit(1)
}

func writeMigrateText(w io.Writer, r *render.Renderer, result *migrate.Result) error {
	if result.DryRun {
		fmt.Fprintf(w, "Dry run: %d notes would be written to %s (%d links rewritten, %d converter fallbacks)\n",
			len(result.Notes), result.OutputDir, result.LinksRewritten, result.Fallbacks)
	} else {
		fmt.Fprintf(w, "Successfully processed %d notes into %s (%d links rewritten, %d converter fallbacks)\n",
			result.Written, result.OutputDir, result.LinksRewritten, result.Fallbacks)
	}

	if migrateVerbose || migratePorcelain {
		rows := make([][]string, 0, len(result.Notes))
		for _, n := range result.Notes {
			rows = append(rows, []string{n.OldID, n.NewID, strconv.Itoa(n.Links)})
		}
		if err := r.RenderTable([]string{"OLD ID", "NEW ID", "LINKS"}, rows); err != nil {
			return err
		}
	}

	if migrateDiff {
		for _, n := range result.Notes {
			if n.Diff != "" {
				fmt.Fprint(w, n.Diff)
			}
		}
	}
	return nil
}
