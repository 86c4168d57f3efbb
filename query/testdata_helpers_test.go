package query

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
)

// dirStore is a minimal Store over a directory of <name>.csv files
type dirStore struct {
	dir string
}

func (s *dirStore) OpenTable(name string) (*reader.Reader, error) {
	r, err := reader.NewReader(filepath.Join(s.dir, name+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", dberrors.ErrTableNotFound, name)
	}
	return r, err
}

func (s *dirStore) AppendRow(name string, row []string) error {
	f, err := os.OpenFile(filepath.Join(s.dir, name+".csv"), os.O_APPEND|os.O_WRONLY, 0644)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", dberrors.ErrTableNotFound, name)
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// createTable writes a table file into a fresh store and returns the store
func createTable(t *testing.T, name string, header []string, rows [][]string) *dirStore {
	t.Helper()
	store := &dirStore{dir: t.TempDir()}
	writeTable(t, store, name, header, rows)
	return store
}

func writeTable(t *testing.T, store *dirStore, name string, header []string, rows [][]string) {
	t.Helper()
	f, err := os.Create(filepath.Join(store.dir, name+".csv"))
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("failed to write rows: %v", err)
	}
}

// peopleHeader and peopleRows are the shared fixture for engine tests
var peopleHeader = []string{"id", "name", "age", "city"}

var peopleRows = [][]string{
	{"1", "alice", "30", "Berlin"},
	{"2", "bob", "25", "Paris"},
	{"3", "carol", "35", "Berlin"},
	{"4", "dave", "9", "Rome"},
	{"5", "eve", "42", "Paris"},
}

func int64Ptr(v int64) *int64 {
	return &v
}
