package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens or creates the SQLite database holding the document store.
// File databases use WAL journaling so readers do not block the writer.
func Open(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}

	// One connection: sqlite has a single writer, and an in-memory
	// database exists only on the connection that created it.
	conn.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout=5000"}
	if dbPath != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting %q: %w", p, err)
		}
	}
	return conn, nil
}

// OpenStore opens the database, brings its schema up to date, and wraps it
// in a document Store. Callers close the returned *sql.DB.
func OpenStore(dbPath string) (*sql.DB, *Documents, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := Initialize(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, NewDocuments(conn), nil
}
