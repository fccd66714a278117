// Package audit finds markdown links in a directory of notes whose target
// file does not exist.
package audit

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/id"
	"github.com/lherron/mdnotes/internal/logging"
	"github.com/lherron/mdnotes/internal/notes"
)

// ErrNotADirectory is returned when the audited path is not a readable
// directory.
var ErrNotADirectory = errors.New("not a directory")

// NotADirectoryError carries the offending path.
type NotADirectoryError struct {
	Path string
	Err  error
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("%s is not a valid directory", e.Path)
}

func (e *NotADirectoryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotADirectory}
	}
	return []error{ErrNotADirectory, e.Err}
}

const markdownExt = ".md"

// Options configures Scan.
type Options struct {
	// Predicate decides which link stems are note identifiers.
	// Defaults to id.IdentifierLike(id.DefaultMinLen).
	Predicate id.Predicate
	// Schemes mark external links. Defaults to notes.DefaultSchemes.
	Schemes notes.Schemes
	Logger  *zap.Logger
}

// FileReport lists the dead link targets of one file, in order of
// appearance.
type FileReport struct {
	Name      string   `json:"file" yaml:"file"`
	DeadLinks []string `json:"dead_links" yaml:"dead_links"`
}

// Report is the result of scanning one directory.
type Report struct {
	Dir     string       `json:"directory" yaml:"directory"`
	Scanned int          `json:"scanned" yaml:"scanned"`
	Skipped []string     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Files   []FileReport `json:"files" yaml:"files"`
}

// HasDeadLinks reports whether any file has a dead link.
func (r *Report) HasDeadLinks() bool {
	return len(r.Files) > 0
}

// Dead returns the report as filename -> dead link targets.
func (r *Report) Dead() map[string][]string {
	out := make(map[string][]string, len(r.Files))
	for _, f := range r.Files {
		out[f.Name] = f.DeadLinks
	}
	return out
}

// Scan audits the markdown files directly inside dir. A file that cannot
// be read is logged and skipped.
func Scan(dir string, opts Options) (*Report, error) {
	logger := logging.OrNop(opts.Logger)
	predicate := opts.Predicate
	if predicate == nil {
		predicate = id.IdentifierLike(id.DefaultMinLen)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, &NotADirectoryError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &NotADirectoryError{Path: dir, Err: err}
	}

	known := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), markdownExt) {
			continue
		}
		known[entry.Name()] = true
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	report := &Report{Dir: dir, Files: []FileReport{}}
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Error("error processing file",
				zap.String(logging.FieldFile, name),
				zap.Error(err),
			)
			report.Skipped = append(report.Skipped, name)
			continue
		}
		report.Scanned++

		dead := deadLinks(string(content), known, predicate, opts.Schemes)
		if len(dead) > 0 {
			report.Files = append(report.Files, FileReport{Name: name, DeadLinks: dead})
			logger.Debug("dead links found",
				zap.String(logging.FieldFile, name),
				zap.Int(logging.FieldCount, len(dead)),
			)
		}
	}

	return report, nil
}

func deadLinks(content string, known map[string]bool, predicate id.Predicate, schemes notes.Schemes) []string {
	var dead []string
	for _, link := range notes.ExtractLinks(content) {
		target := strings.TrimSpace(link.Target)
		if !strings.HasSuffix(target, markdownExt) || schemes.IsExternal(target) {
			continue
		}

		filename := path.Base(filepath.ToSlash(target))
		stem := strings.TrimSuffix(filename, markdownExt)
		if !predicate(stem) {
			continue
		}
		if !known[filename] {
			dead = append(dead, filename)
		}
	}
	return dead
}
