// Package dbtest provides in-memory stores and fault injection for tests
// of packages built on db.Store.
package dbtest

import (
	"context"
	"sync"
	"testing"

	"github.com/ALT-F4-LLC/tracker/internal/db"
)

// Open returns an initialized in-memory document store that is closed when
// the test ends.
func Open(t testing.TB) *db.Documents {
	t.Helper()
	conn, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("db.Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Initialize(conn); err != nil {
		t.Fatalf("db.Initialize failed: %v", err)
	}
	return db.NewDocuments(conn)
}

// Faulty wraps a Store, counts calls per operation, and returns the
// configured error instead of calling through when one is set.
type Faulty struct {
	db.Store

	mu        sync.Mutex
	QueryErr  error
	GetErr    error
	AddErr    error
	SetErr    error
	UpdateErr error
	DeleteErr error
	calls     map[string]int
}

var _ db.Store = (*Faulty)(nil)

// NewFaulty wraps store with no faults configured.
func NewFaulty(store db.Store) *Faulty {
	return &Faulty{Store: store, calls: make(map[string]int)}
}

// Fail sets the error returned by one operation ("query", "get", "add",
// "set", "update", "delete"). A nil err clears the fault.
func (f *Faulty) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch op {
	case "query":
		f.QueryErr = err
	case "get":
		f.GetErr = err
	case "add":
		f.AddErr = err
	case "set":
		f.SetErr = err
	case "update":
		f.UpdateErr = err
	case "delete":
		f.DeleteErr = err
	}
}

// Calls returns how many times op was invoked, including failed calls.
func (f *Faulty) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Faulty) record(op string, err *error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return *err
}

func (f *Faulty) Query(ctx context.Context, collection string, q db.Query) ([]db.Snapshot, error) {
	if err := f.record("query", &f.QueryErr); err != nil {
		return nil, err
	}
	return f.Store.Query(ctx, collection, q)
}

func (f *Faulty) Get(ctx context.Context, collection, id string) (db.Snapshot, error) {
	if err := f.record("get", &f.GetErr); err != nil {
		return db.Snapshot{}, err
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *Faulty) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := f.record("add", &f.AddErr); err != nil {
		return "", err
	}
	return f.Store.Add(ctx, collection, fields)
}

func (f *Faulty) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := f.record("set", &f.SetErr); err != nil {
		return err
	}
	return f.Store.Set(ctx, collection, id, fields)
}

func (f *Faulty) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := f.record("update", &f.UpdateErr); err != nil {
		return err
	}
	return f.Store.Update(ctx, collection, id, fields)
}

func (f *Faulty) Delete(ctx context.Context, collection, id string) error {
	if err := f.record("delete", &f.DeleteErr); err != nil {
		return err
	}
	return f.Store.Delete(ctx, collection, id)
}
