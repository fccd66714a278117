package export

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/lherron/mdnotes/internal/notes"
	"github.com/lherron/mdnotes/internal/testutil"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWrite_CreatesDirAndFiles(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out")
	w := &Writer{Dir: out}

	records := []notes.Record{
		{OldID: "1", NewID: "aaa", Content: "first"},
		{OldID: "2", NewID: "bbb", Content: "second [x](aaa.md)"},
	}
	paths, err := w.Write(records)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 2, len(paths))
	testutil.AssertEqual(t, filepath.Join(out, "aaa.md"), paths[0])
	testutil.AssertEqual(t, "first", testutil.ReadFile(t, paths[0]))
	testutil.AssertEqual(t, "second [x](aaa.md)", testutil.ReadFile(t, paths[1]))

	// Stage directory is cleaned up.
	names := listDir(t, out)
	testutil.AssertEqual(t, 2, len(names))
}

func TestWrite_CustomSuffix(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Suffix: ".markdown"}
	paths, err := w.Write([]notes.Record{{OldID: "1", NewID: "x", Content: "c"}})
	testutil.AssertNoError(t, err)
	if !strings.HasSuffix(paths[0], "x.markdown") {
		t.Errorf("unexpected path %s", paths[0])
	}
}

func TestWrite_ExistingFileAbortsBatch(t *testing.T) {
	out := t.TempDir()
	testutil.WriteFile(t, out, "bbb.md", "keep me")

	w := &Writer{Dir: out}
	_, err := w.Write([]notes.Record{
		{OldID: "1", NewID: "aaa", Content: "first"},
		{OldID: "2", NewID: "bbb", Content: "second"},
	})
	testutil.AssertError(t, err)

	if !errors.Is(err, ErrWriteFailure) {
		t.Errorf("expected ErrWriteFailure, got %v", err)
	}
	var we *WriteError
	if !errors.As(err, &we) || we.NoteID != "2" {
		t.Errorf("expected WriteError for note 2, got %#v", err)
	}

	// Nothing from the batch was written and the existing file is intact.
	names := listDir(t, out)
	testutil.AssertEqual(t, 1, len(names))
	testutil.AssertEqual(t, "keep me", testutil.ReadFile(t, filepath.Join(out, "bbb.md")))
}

func TestWrite_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name    string
		records []notes.Record
	}{
		{name: "empty id", records: []notes.Record{{OldID: "1"}}},
		{name: "path separator", records: []notes.Record{{OldID: "1", NewID: "../escape"}}},
		{name: "duplicate", records: []notes.Record{{OldID: "1", NewID: "same"}, {OldID: "2", NewID: "same"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			_, err := (&Writer{Dir: out}).Write(tt.records)
			if !errors.Is(err, ErrWriteFailure) {
				t.Fatalf("expected ErrWriteFailure, got %v", err)
			}
			if names := listDir(t, out); len(names) != 0 {
				t.Errorf("expected empty output dir, got %v", names)
			}
		})
	}
}

func TestWrite_RejectedBatchCreatesNoDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "vault")
	records := []notes.Record{{OldID: "1", NewID: "same"}, {OldID: "2", NewID: "same"}}

	_, err := (&Writer{Dir: out}).Write(records)
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected ErrWriteFailure, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("rejected batch must not create %s (stat err: %v)", out, err)
	}
}

func TestWrite_UnwritableDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	parent := t.TempDir()
	if err := os.Chmod(parent, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(parent, 0755) })

	_, err := (&Writer{Dir: filepath.Join(parent, "out")}).Write([]notes.Record{{OldID: "1", NewID: "a"}})
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected ErrWriteFailure, got %v", err)
	}
}

func TestWrite_EmptyBatch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	paths, err := (&Writer{Dir: out}).Write(nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, len(paths))
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output directory should exist: %v", err)
	}
}
