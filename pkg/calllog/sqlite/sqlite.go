// Package sqlite provides a SQLite-backed call log store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/praxisvoice/pkg/calllog/sqlstore"
)

// Store implements calllog.Store using SQLite.
type Store struct {
	*sqlstore.Store
}

// NewStore opens the database at dbPath, creating it if needed.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is its own database, and worker
	// goroutines write concurrently to file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s, err := sqlstore.New(ctx, db, dialect.SQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{Store: s}, nil
}
