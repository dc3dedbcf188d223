// Package archive implements a local sqlite-backed continuous waveform
// store: a durable waveform.Provider that a catalog scan or template
// scan can read from without going back to a remote FDSN service for
// every chunk. Ingestion writes segments in; MergeSegments (package
// waveform) stitches adjacent rows back into one evenly sampled trace
// at read time.
package archive

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ArchiveProvider is a local sqlite database of continuous waveform
// segments and the station coordinates used to locate them.
type ArchiveProvider struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path,
// applies the WAL/busy-timeout pragmas that make a single-writer,
// many-reader archive workable under the worker-pool scanners, and
// migrates the schema to the latest version.
func Open(path string) (*ArchiveProvider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", path, err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	a := &ArchiveProvider{db: db}
	if err := a.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("archive: applying %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (a *ArchiveProvider) Close() error {
	return a.db.Close()
}
