// Package export writes migrated notes to disk, one file per note.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lherron/mdnotes/internal/logging"
	"github.com/lherron/mdnotes/internal/notes"
)

// ErrWriteFailure marks any failure to place a note file.
var ErrWriteFailure = errors.New("write failure")

// WriteError reports the note and path that could not be written.
type WriteError struct {
	Path   string
	NoteID string
	Err    error
}

func (e *WriteError) Error() string {
	if e.NoteID == "" {
		return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to write note %s to %s: %v", e.NoteID, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailure, e.Err}
}

// Writer exports records into Dir as <NewID><Suffix>.
//
// A batch is all-or-nothing: files are staged in a temporary directory
// inside Dir and only moved into place once every note has been written.
// If moving fails part way, files already moved are removed again.
type Writer struct {
	Dir    string
	Suffix string
	Perm   os.FileMode
	Logger *zap.Logger
}

// FileName returns the output file name for a record.
func (w *Writer) FileName(r notes.Record) string {
	suffix := w.Suffix
	if suffix == "" {
		suffix = ".md"
	}
	return r.NewID + suffix
}

// Write exports records and returns the final paths in record order.
func (w *Writer) Write(records []notes.Record) ([]string, error) {
	logger := logging.OrNop(w.Logger)
	perm := w.Perm
	if perm == 0 {
		perm = 0644
	}

	// Phase 1: validate names, then create Dir and stage every file.
	names := make([]string, len(records))
	seen := make(map[string]string, len(records))
	for i, r := range records {
		if r.NewID == "" {
			return nil, &WriteError{Path: w.Dir, NoteID: r.OldID, Err: errors.New("note has no identifier")}
		}
		name := w.FileName(r)
		if name != filepath.Base(name) {
			return nil, &WriteError{Path: name, NoteID: r.OldID, Err: errors.New("identifier is not a valid file name")}
		}
		if other, dup := seen[name]; dup {
			return nil, &WriteError{Path: name, NoteID: r.OldID, Err: fmt.Errorf("same file as note %s", other)}
		}
		seen[name] = r.OldID
		names[i] = name

		final := filepath.Join(w.Dir, name)
		if _, err := os.Lstat(final); err == nil {
			return nil, &WriteError{Path: final, NoteID: r.OldID, Err: os.ErrExist}
		}
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, &WriteError{Path: w.Dir, Err: err}
	}

	stage, err := os.MkdirTemp(w.Dir, ".mdnotes-stage-")
	if err != nil {
		return nil, &WriteError{Path: w.Dir, Err: err}
	}
	defer os.RemoveAll(stage)

	for i, r := range records {
		staged := filepath.Join(stage, names[i])
		if err := os.WriteFile(staged, []byte(r.Content), perm); err != nil {
			return nil, &WriteError{Path: staged, NoteID: r.OldID, Err: err}
		}
	}

	// Phase 2: move staged files into place.
	paths := make([]string, 0, len(records))
	rollback := func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}
	for i, r := range records {
		final := filepath.Join(w.Dir, names[i])
		if err := os.Rename(filepath.Join(stage, names[i]), final); err != nil {
			rollback()
			return nil, &WriteError{Path: final, NoteID: r.OldID, Err: err}
		}
		paths = append(paths, final)
		logger.Debug("wrote note",
			zap.String(logging.FieldNoteID, r.OldID),
			zap.String(logging.FieldNewID, r.NewID),
			zap.String(logging.FieldPath, final),
		)
	}

	return paths, nil
}
