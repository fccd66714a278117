// Package migrate runs the one-shot note migration: extract, convert,
// remap identifiers, rewrite references and export.
package migrate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/convert"
	"github.com/lherron/mdnotes/internal/export"
	"github.com/lherron/mdnotes/internal/id"
	"github.com/lherron/mdnotes/internal/logging"
	"github.com/lherron/mdnotes/internal/notes"
	"github.com/lherron/mdnotes/internal/remap"
	"github.com/lherron/mdnotes/internal/source"
)

// Options configures a migration run.
type Options struct {
	OutputDir string
	// Converter defaults to convert.New(convert.ModeAuto).
	Converter *convert.Chain
	// Suffix trails identifiers in links and file names. Defaults to ".md".
	Suffix  string
	Schemes notes.Schemes
	// Generate produces new identifiers. Defaults to id.New.
	Generate id.Generator
	// DryRun skips the export stage.
	DryRun bool
	// Diff records a unified diff of each note's link rewrites.
	Diff   bool
	Logger *zap.Logger
}

// NoteResult describes one migrated note.
type NoteResult struct {
	OldID string `json:"old_id" yaml:"old_id"`
	NewID string `json:"new_id" yaml:"new_id"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Links int    `json:"links_rewritten" yaml:"links_rewritten"`
	Diff  string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Result summarises a migration run.
type Result struct {
	OutputDir      string       `json:"output_dir" yaml:"output_dir"`
	DryRun         bool         `json:"dry_run" yaml:"dry_run"`
	Extracted      int          `json:"extracted" yaml:"extracted"`
	Converter      string       `json:"converter" yaml:"converter"`
	Fallbacks      int          `json:"fallbacks" yaml:"fallbacks"`
	LinksRewritten int          `json:"links_rewritten" yaml:"links_rewritten"`
	Written        int          `json:"written" yaml:"written"`
	Notes          []NoteResult `json:"notes" yaml:"notes"`
}

// Run executes the pipeline against src. A source failure or any write
// failure aborts the run; nothing is written unless every note is.
func Run(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	logger := logging.OrNop(opts.Logger)
	if opts.Suffix == "" {
		opts.Suffix = ".md"
	}
	if opts.Converter == nil {
		chain, err := convert.New(convert.ModeAuto, logger)
		if err != nil {
			return nil, err
		}
		opts.Converter = chain
	}

	// Extract
	records, err := src.Notes(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("extracted notes", zap.Int(logging.FieldCount, len(records)))

	result := &Result{
		OutputDir: opts.OutputDir,
		DryRun:    opts.DryRun,
		Extracted: len(records),
		Converter: opts.Converter.Name(),
		Notes:     make([]NoteResult, 0, len(records)),
	}

	// Convert
	before := opts.Converter.Fallbacks()
	for i := range records {
		converted, err := opts.Converter.ConvertNote(records[i].OldID, records[i].Content)
		if err != nil {
			return nil, fmt.Errorf("failed to convert note %s: %w", records[i].OldID, err)
		}
		records[i].Content = converted
	}
	result.Fallbacks = opts.Converter.Fallbacks() - before
	logger.Info("converted HTML to markdown",
		zap.Int(logging.FieldCount, len(records)),
		zap.String(logging.FieldConverter, result.Converter),
	)

	// Remap identifiers
	oldIDs := make([]string, len(records))
	for i, r := range records {
		oldIDs[i] = r.OldID
	}
	mapping, err := remap.Build(oldIDs, remap.Options{Suffix: opts.Suffix, Generate: opts.Generate})
	if err != nil {
		return nil, fmt.Errorf("failed to build identifier mapping: %w", err)
	}
	if err := mapping.Apply(records); err != nil {
		return nil, err
	}

	// Rewrite references
	for i := range records {
		rewritten, changed := mapping.Rewrite(records[i].Content, opts.Schemes)

		nr := NoteResult{OldID: records[i].OldID, NewID: records[i].NewID, Links: changed}
		if opts.Diff && changed > 0 {
			diff, err := unifiedDiff(records[i].OldID, records[i].NewID+opts.Suffix, records[i].Content, rewritten)
			if err != nil {
				return nil, fmt.Errorf("failed to diff note %s: %w", records[i].OldID, err)
			}
			nr.Diff = diff
		}
		result.Notes = append(result.Notes, nr)
		result.LinksRewritten += changed
		records[i].Content = rewritten
	}
	logger.Info("fixed note identifiers",
		zap.Int(logging.FieldCount, mapping.Len()),
		zap.Int("links", result.LinksRewritten),
	)

	if opts.DryRun {
		return result, nil
	}

	// Export
	writer := &export.Writer{Dir: opts.OutputDir, Suffix: opts.Suffix, Logger: logger}
	paths, err := writer.Write(records)
	if err != nil {
		return nil, err
	}
	for i, p := range paths {
		result.Notes[i].Path = p
	}
	result.Written = len(paths)
	logger.Info("exported notes",
		zap.Int(logging.FieldCount, result.Written),
		zap.String(logging.FieldPath, filepath.Clean(opts.OutputDir)),
	)

	return result, nil
}

func unifiedDiff(from, to, a, b string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: from,
		ToFile:   to,
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(diff)
}
