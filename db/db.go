// ABOUTME: Database connection management and initialization
// ABOUTME: Handles opening the SQLite deal store with WAL mode at an XDG path
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/harperreed/dealdesk/actions"
	_ "github.com/mattn/go-sqlite3"
)

// ErrDealNotFound is returned when no deal has the given ID.
var ErrDealNotFound = actions.ErrDealNotFound

func OpenDatabase(path string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer; a single connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
