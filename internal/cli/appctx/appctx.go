// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, logger construction and source database
// opening to reduce boilerplate across commands.
package appctx

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/config"
	"github.com/lherron/mdnotes/internal/db"
	"github.com/lherron/mdnotes/internal/logging"
	"github.com/lherron/mdnotes/internal/source"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration with flag overrides applied
	Config *config.Config

	// Logger writes diagnostics to stderr
	Logger *zap.Logger

	// DB is the opened source database (nil if NeedsSource is false)
	DB *db.DB

	// Source reads notes from DB
	Source *source.SQL
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsSource opens the source database named by the first positional
	// argument ("-" means the configured source_dsn).
	NeedsSource bool
}

// DefaultOptions returns default options (config and logger only).
func DefaultOptions() Options {
	return Options{}
}

// WithSource returns options that also open the source database.
func WithSource() Options {
	return Options{NeedsSource: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// Resources are released automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, args, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, args []string, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)

	logger, err := logging.Stderr(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}

	if opts.NeedsSource {
		if len(args) == 0 {
			app.Close()
			return nil, fmt.Errorf("source database not specified")
		}
		dsn := args[0]
		if dsn == "-" {
			dsn = cfg.SourceDSN
		}
		if dsn == "" {
			app.Close()
			return nil, fmt.Errorf("source database not specified (pass a path or set MDNOTES_SOURCE_DSN)")
		}

		src, database, err := source.OpenSQL(dsn, cfg.SourceTable, cfg.OwnerID)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.DB = database
		app.Source = src
	}

	return app, nil
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.LogLevel = f.Value.String()
	}
	if debug, err := flags.GetBool("debug"); err == nil && debug {
		cfg.LogLevel = "debug"
	}
	if f := flags.Lookup("output"); f != nil && f.Changed {
		cfg.Output = f.Value.String()
	}
	if owner, err := flags.GetInt64("owner"); err == nil && flags.Changed("owner") {
		cfg.OwnerID = owner
	}
	if f := flags.Lookup("table"); f != nil && f.Changed {
		cfg.SourceTable = f.Value.String()
	}
	if f := flags.Lookup("converter"); f != nil && f.Changed {
		cfg.Converter = f.Value.String()
	}
	if minLen, err := flags.GetInt("id-like-min-len"); err == nil && flags.Changed("id-like-min-len") {
		cfg.IDLikeMinLen = minLen
	}
	if schemes, err := flags.GetStringSlice("scheme"); err == nil && flags.Changed("scheme") {
		cfg.URLSchemes = schemes
	}
}
