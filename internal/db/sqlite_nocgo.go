//go:build !cgo

package db

import (
	_ "modernc.org/sqlite"
)

// CGO_ENABLED=0 builds use the pure Go driver.
const sqliteDriver = "sqlite"
