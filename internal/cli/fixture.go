package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/cli/appctx"
	"github.com/lherron/mdnotes/internal/db"
	"github.com/lherron/mdnotes/internal/logging"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture <db-path>",
	Short: "Create a SQLite source database with the notes table",
	Long: `Creates a SQLite database at db-path with the notes table the migrator
reads from. With --sample, a few linked HTML notes are inserted for the
configured owner so the migrator can be tried end to end.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runFixture),
}

var fixtureSample bool

// sampleNotes link to each other by their old numeric ids.
var sampleNotes = []struct {
	id   int64
	text string
}{
	{1, `<h1>Reading list</h1><p>Start with <a href="2.md">Go notes</a> and then <a href="3.md#setup">tools</a>.</p>`},
	{2, `<h2>Go notes</h2><ul><li><strong>errors</strong> wrap with %w</li><li>see <a href="https://go.dev/doc">the docs</a></li></ul>`},
	{3, `<p id="setup"><em>Tools</em> back to <a href="1.md">the list</a>.</p>`},
}

func init() {
	rootMigratorCmd.AddCommand(fixtureCmd)
	fixtureCmd.Flags().BoolVar(&fixtureSample, "sample", false, "Insert linked sample notes for the owner")
	fixtureCmd.Flags().Int64("owner", 3, "Owner of the sample notes (overrides MDNOTES_OWNER_ID)")
}

func runFixture(app *appctx.App, cmd *cobra.Command, args []string) error {
	database, err := db.Create(args[0])
	if err != nil {
		return exitError(1, err)
	}
	defer database.Close()

	inserted := 0
	if fixtureSample {
		const query = "INSERT INTO notes_note (id, user_id, text) VALUES (?, ?, ?)"
		for _, n := range sampleNotes {
			if _, err := database.Exec(query, n.id, app.Config.OwnerID, n.text); err != nil {
				return exitError(1, fmt.Errorf("failed to insert sample note %d: %w", n.id, err))
			}
			inserted++
		}
	}

	app.Logger.Debug("fixture database ready",
		zap.String(logging.FieldPath, args[0]),
		zap.Int(logging.FieldCount, inserted),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d sample notes)\n", args[0], inserted)
	return nil
}
