// Package source extracts note records from the legacy database. The
// migration core only sees the Source interface, an ordered sequence of
// (identifier, content) pairs.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/lherron/mdnotes/internal/db"
	"github.com/lherron/mdnotes/internal/notes"
)

// ErrUnavailable marks a source that could not be read.
var ErrUnavailable = errors.New("source unavailable")

// UnavailableError reports which source failed and why.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.Err}
}

// Source yields the notes to migrate.
type Source interface {
	Notes(ctx context.Context) ([]notes.Record, error)
}

// Static is an in-memory Source.
type Static []notes.Record

func (s Static) Notes(context.Context) ([]notes.Record, error) {
	out := make([]notes.Record, len(s))
	copy(out, s)
	return out, nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL reads notes owned by OwnerID from Table.
type SQL struct {
	DB      *db.DB
	Table   string
	OwnerID int64
}

// Notes runs the extraction query. Every failure is an UnavailableError.
func (s *SQL) Notes(ctx context.Context) ([]notes.Record, error) {
	table := s.Table
	if table == "" {
		table = "notes_note"
	}
	if !identPattern.MatchString(table) {
		return nil, s.unavailable(fmt.Errorf("invalid table name %q", table))
	}

	query := s.DB.Rebind(fmt.Sprintf("SELECT id, text FROM %s WHERE user_id = ? ORDER BY id", table))
	rows, err := s.DB.QueryContext(ctx, query, s.OwnerID)
	if err != nil {
		return nil, s.unavailable(fmt.Errorf("failed to query notes: %w", err))
	}
	defer rows.Close()

	var records []notes.Record
	for rows.Next() {
		var (
			oldID string
			text  sql.NullString
		)
		if err := rows.Scan(&oldID, &text); err != nil {
			return nil, s.unavailable(fmt.Errorf("failed to scan note: %w", err))
		}
		records = append(records, notes.Record{OldID: oldID, Content: text.String})
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable(fmt.Errorf("error iterating notes: %w", err))
	}

	return records, nil
}

func (s *SQL) unavailable(err error) error {
	return &UnavailableError{Source: s.DB.DSN(), Err: err}
}

// OpenSQL opens dsn and returns a SQL source on it. The caller closes the
// returned database.
func OpenSQL(dsn, table string, ownerID int64) (*SQL, *db.DB, error) {
	database, err := db.Open(dsn)
	if err != nil {
		return nil, nil, &UnavailableError{Source: dsn, Err: err}
	}
	return &SQL{DB: database, Table: table, OwnerID: ownerID}, database, nil
}
