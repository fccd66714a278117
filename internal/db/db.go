package db

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Dialect identifies the SQL flavour behind a DSN.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DB wraps a source database connection
type DB struct {
	*sql.DB
	dsn     string
	dialect Dialect
}

// ParseDSN returns the dialect, driver name and driver DSN for a source
// string. postgres:// and mysql:// URLs select those servers; anything else
// is a SQLite file path (optionally prefixed with sqlite://).
func ParseDSN(dsn string) (Dialect, string, string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, "postgres", dsn
	case strings.HasPrefix(lower, "mysql://"):
		return DialectMySQL, "mysql", dsn[len("mysql://"):]
	case strings.HasPrefix(lower, "sqlite://"):
		return DialectSQLite, sqliteDriver, dsn[len("sqlite://"):]
	default:
		return DialectSQLite, sqliteDriver, dsn
	}
}

// sqliteFilePath returns the file behind a SQLite DSN, which may be a plain
// path or a file: URI with query parameters.
func sqliteFilePath(driverDSN string) string {
	if !strings.HasPrefix(driverDSN, "file:") {
		return driverDSN
	}
	file := strings.TrimPrefix(driverDSN, "file:")
	if i := strings.IndexByte(file, '?'); i >= 0 {
		file = file[:i]
	}
	return strings.TrimPrefix(file, "//")
}

// Open opens an existing source database for reading. SQLite files must
// already exist and are opened query-only.
func Open(dsn string) (*DB, error) {
	dialect, driver, driverDSN := ParseDSN(dsn)

	if dialect == DialectSQLite {
		file := sqliteFilePath(driverDSN)
		info, err := os.Stat(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("failed to open database: %s is a directory", file)
		}
	}

	return open(dialect, driver, driverDSN, dsn, true)
}

// Create creates (or opens) a SQLite database at path for writing and
// applies the fixture schema. It is used to build sample sources.
func Create(dbPath string) (*DB, error) {
	dialect, driver, driverDSN := ParseDSN(dbPath)
	if dialect != DialectSQLite {
		return nil, fmt.Errorf("fixture databases must be SQLite, got %s", dialect)
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(sqliteFilePath(driverDSN)), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := open(dialect, driver, driverDSN, dbPath, false)
	if err != nil {
		return nil, err
	}
	if err := database.ApplyFixtureSchema(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func open(dialect Dialect, driver, driverDSN, dsn string, readOnly bool) (*DB, error) {
	conn, err := sql.Open(driver, driverDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		// PRAGMAs are per connection.
		conn.SetMaxOpenConns(1)

		pragmas := []string{"PRAGMA busy_timeout = 5000"}
		if readOnly {
			pragmas = append(pragmas, "PRAGMA query_only = ON")
		}
		for _, pragma := range pragmas {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
			}
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: conn, dsn: dsn, dialect: dialect}, nil
}

// DSN returns the source string the database was opened with
func (db *DB) DSN() string {
	return db.dsn
}

// Dialect returns the SQL flavour of the connection
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind rewrites ? placeholders for the connection's dialect.
func (db *DB) Rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ApplyFixtureSchema runs the embedded schema files in name order.
func (db *DB) ApplyFixtureSchema() error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("failed to read schema directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := schemaFS.ReadFile(path.Join("schema", name))
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute schema %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit schema %s: %w", name, err)
		}
	}

	return nil
}
