package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrMissingStore is returned when the participant database file
// cannot be found.
var ErrMissingStore = errors.New("participant database not found")

// DB is a read-only handle on a participant's exported database.
type DB struct {
	reader *sql.DB
	path   string
}

// makeDSN builds a SQLite connection string with shared pragmas.
// The file: prefix is required for mode=ro to reach SQLite.
func makeDSN(path string, readOnly bool) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_cache_size", "-16000")
	if readOnly {
		params.Set("mode", "ro")
		params.Set("_query_only", "true")
	} else {
		params.Set("mode", "rwc")
		params.Set("_synchronous", "NORMAL")
	}
	return "file:" + filepath.ToSlash(path) + "?" + params.Encode()
}

// Open opens the database at path read-only. A missing file yields
// an error wrapping ErrMissingStore; the file is never created.
func Open(path string) (*DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingStore, path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf(
			"%w: %s is a directory", ErrMissingStore, path,
		)
	}

	reader, err := sql.Open("sqlite3", makeDSN(path, true))
	if err != nil {
		return nil, fmt.Errorf("opening reader: %w", err)
	}
	reader.SetMaxOpenConns(1)

	if err := reader.PingContext(context.Background()); err != nil {
		reader.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	return &DB{reader: reader, path: path}, nil
}

// Identifier returns the database file name, used to name reports.
func (db *DB) Identifier() string {
	return filepath.Base(db.path)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.reader.Close()
}

// Reader returns the read-only connection pool.
func (db *DB) Reader() *sql.DB {
	return db.reader
}
