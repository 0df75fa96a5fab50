package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Documents is a Store backed by the SQLite documents table.
type Documents struct {
	conn *sql.DB
}

var _ Store = (*Documents)(nil)

// NewDocuments returns a Store over an opened and initialized database.
func NewDocuments(conn *sql.DB) *Documents {
	return &Documents{conn: conn}
}

// Query reads documents from a collection. Ordering always includes the
// document ID as a tie-breaker so that StartAfter resumes exactly after the
// cursor even when several documents share the ordered value. Absent or
// null ordered fields sort as the empty string.
func (d *Documents) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	whereClauses := []string{"collection = ?"}
	args := []any{collection}

	if q.Where != nil {
		if err := validateField(q.Where.Field); err != nil {
			return nil, err
		}
		expr := jsonField(q.Where.Field)
		if q.Where.Value == nil {
			whereClauses = append(whereClauses, expr+" IS NULL")
		} else {
			whereClauses = append(whereClauses, expr+" = ?")
			args = append(args, sqlValue(q.Where.Value))
		}
	}

	orderExpr := "id"
	sortDir := "ASC"
	if q.OrderBy != nil {
		if err := validateField(q.OrderBy.Field); err != nil {
			return nil, err
		}
		orderExpr = fmt.Sprintf("COALESCE(%s, '')", jsonField(q.OrderBy.Field))
		if q.OrderBy.Direction == Desc {
			sortDir = "DESC"
		}
	}

	if q.StartAfter != nil {
		cmp := ">"
		if sortDir == "DESC" {
			cmp = "<"
		}
		if q.OrderBy == nil {
			whereClauses = append(whereClauses, "id "+cmp+" ?")
			args = append(args, q.StartAfter.ID)
		} else {
			v := sqlValue(q.StartAfter.Value)
			if v == nil {
				v = ""
			}
			whereClauses = append(whereClauses,
				fmt.Sprintf("(%[1]s %[2]s ? OR (%[1]s = ? AND id %[2]s ?))", orderExpr, cmp))
			args = append(args, v, v, q.StartAfter.ID)
		}
	}

	// Safe: field names are validated against safeIdentifier; sortDir is ASC or DESC.
	query := fmt.Sprintf(
		`SELECT id, data FROM documents WHERE %s ORDER BY %s %s, id %s`,
		strings.Join(whereClauses, " AND "), orderExpr, sortDir, sortDir,
	)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	snaps := make([]Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", collection, err)
	}

	return snaps, nil
}

// Get reads a single document, returning ErrNotFound when it is missing.
func (d *Documents) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	row := d.conn.QueryRowContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	return snap, nil
}

// Add inserts a document with a store-assigned ID and returns the ID.
func (d *Documents) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := d.conn.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)`,
		collection, id, data,
	); err != nil {
		return "", fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return id, nil
}

// Set creates or fully replaces the document with the given ID.
func (d *Documents) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("setting document in %s: empty id", collection)
	}
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}

	if _, err := d.conn.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, data,
	); err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update overwrites the given top-level fields of an existing document.
// Nested values are replaced wholesale, never merged.
func (d *Documents) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	for field := range fields {
		if err := validateField(field); err != nil {
			return err
		}
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}

	current := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		current[k] = v
	}

	data, err := encodeFields(current)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ? WHERE collection = ? AND id = ?`,
		data, collection, id,
	); err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}

	return tx.Commit()
}

// Delete removes a document. Subcollections under it are not touched.
func (d *Documents) Delete(ctx context.Context, collection, id string) error {
	res, err := d.conn.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- helpers ---

// scanner abstracts *sql.Row and *sql.Rows for scanning a single row.
type scanner interface {
	Scan(dest ...any) error
}

// scanSnapshot scans an (id, data) pair from any scanner.
func scanSnapshot(s scanner) (Snapshot, error) {
	var id, raw string
	if err := s.Scan(&id, &raw); err != nil {
		return Snapshot{}, err
	}

	data := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Snapshot{}, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return Snapshot{ID: id, Data: data}, nil
}

// encodeFields serializes a field set to the JSON stored in the data column.
func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(data), nil
}

// jsonField returns the SQL expression extracting a validated top-level field.
func jsonField(field string) string {
	return fmt.Sprintf("json_extract(data, '$.%s')", field)
}

// sqlValue converts a Go value to what json_extract yields for the same
// JSON value, so equality comparisons line up.
func sqlValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}
