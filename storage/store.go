// Package storage manages the on-disk layout of flatdb.
//
// A storage root holds one directory per database and one CSV file per
// table:
//
//	<root>/<db>/<table>.csv
//
// Tables are addressed as "db/table", or as a bare "table" which resolves
// inside the database selected with Use, falling back to the root.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
)

// TableExt is the file extension of table files
const TableExt = ".csv"

// Store is a storage root. It is not safe for concurrent use.
type Store struct {
	root      string
	current   string
	batchSize int
	logger    *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithBatchSize sets the row source chunk size for OpenTable
func WithBatchSize(n int) Option {
	return func(s *Store) {
		s.batchSize = n
	}
}

// WithLogger sets the store logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New opens an existing storage root
func New(root string, opts ...Option) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", dberrors.ErrRootNotFound, root)
	}

	s := &Store{
		root:      root,
		batchSize: reader.DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the storage root directory
func (s *Store) Root() string {
	return s.root
}

// Current returns the selected database, or "" if none
func (s *Store) Current() string {
	return s.current
}

// Use selects the database bare table names resolve in
func (s *Store) Use(db string) error {
	if !s.DatabaseExists(db) {
		return fmt.Errorf("%w: %s", dberrors.ErrDatabaseNotFound, db)
	}
	s.current = db
	return nil
}

// CreateDatabase creates a database directory
func (s *Store) CreateDatabase(db string) error {
	dir, err := s.dbPath(db)
	if err != nil {
		return err
	}
	if s.DatabaseExists(db) {
		return fmt.Errorf("%w: %s", dberrors.ErrDatabaseExists, db)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database %s: %w", db, err)
	}
	s.logger.Info("database created", "db", db)
	return nil
}

// DropDatabase removes a database directory with all its tables
func (s *Store) DropDatabase(db string) error {
	dir, err := s.dbPath(db)
	if err != nil {
		return err
	}
	if !s.DatabaseExists(db) {
		return fmt.Errorf("%w: %s", dberrors.ErrDatabaseNotFound, db)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", db, err)
	}
	if s.current == db {
		s.current = ""
	}
	s.logger.Info("database dropped", "db", db)
	return nil
}

// DatabaseExists reports whether a database directory exists
func (s *Store) DatabaseExists(db string) bool {
	dir, err := s.dbPath(db)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// ListDatabases returns database names in lexical order
func (s *Store) ListDatabases() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	var dbs []string
	for _, e := range entries {
		if e.IsDir() {
			dbs = append(dbs, e.Name())
		}
	}
	sort.Strings(dbs)
	return dbs, nil
}

// ListTables returns the tables of a database in lexical order. An empty
// db lists the current database.
func (s *Store) ListTables(db string) ([]string, error) {
	if db == "" {
		db = s.current
	}
	if db == "" {
		return nil, dberrors.ErrNoDatabase
	}
	dir, err := s.dbPath(db)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", dberrors.ErrDatabaseNotFound, db)
		}
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var tables []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), TableExt) {
			tables = append(tables, strings.TrimSuffix(e.Name(), TableExt))
		}
	}
	sort.Strings(tables)
	return tables, nil
}

// CreateTable creates an empty table. When columns is empty the file is
// left empty and the first inserted row becomes the header.
//
// A bare name needs a selected database.
func (s *Store) CreateTable(id string, columns []string) error {
	if !strings.Contains(id, "/") && s.current == "" {
		return dberrors.ErrNoDatabase
	}
	path, err := s.TablePath(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return fmt.Errorf("%w: %s", dberrors.ErrDatabaseNotFound, filepath.Dir(id))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", dberrors.ErrTableExists, id)
		}
		return fmt.Errorf("failed to create table %s: %w", id, err)
	}
	defer func() { _ = f.Close() }()

	if len(columns) > 0 {
		if err := writeRecords(f, [][]string{columns}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	s.logger.Info("table created", "table", id, "columns", len(columns))
	return nil
}

// DropTable removes a table file
func (s *Store) DropTable(id string) error {
	path, err := s.TablePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", dberrors.ErrTableNotFound, id)
		}
		return fmt.Errorf("failed to drop table %s: %w", id, err)
	}
	s.logger.Info("table dropped", "table", id)
	return nil
}

// TableExists reports whether a table file exists
func (s *Store) TableExists(id string) bool {
	path, err := s.TablePath(id)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// OpenTable opens a fresh scan over a table
func (s *Store) OpenTable(id string) (*reader.Reader, error) {
	path, err := s.TablePath(id)
	if err != nil {
		return nil, err
	}
	r, err := reader.NewReader(path, reader.WithBatchSize(s.batchSize))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", dberrors.ErrTableNotFound, id)
		}
		return nil, err
	}
	return r, nil
}

// AppendRow appends one row. The row must match the header length unless
// the table has no header yet, in which case the row becomes the header.
func (s *Store) AppendRow(id string, row []string) error {
	r, err := s.OpenTable(id)
	if err != nil {
		return err
	}
	n := r.Header().Len()
	_ = r.Close()

	if n > 0 && len(row) != n {
		return fmt.Errorf("%w: got %d values, table %s has %d columns", dberrors.ErrRowArity, len(row), id, n)
	}

	path, _ := s.TablePath(id)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open table %s: %w", id, err)
	}
	defer func() { _ = f.Close() }()

	if err := writeRecords(f, [][]string{row}); err != nil {
		return fmt.Errorf("failed to append to %s: %w", id, err)
	}
	return nil
}

// WriteRows creates or truncates a table file and writes header (if not
// nil) followed by rows.
func (s *Store) WriteRows(id string, header []string, rows [][]string) error {
	path, err := s.TablePath(id)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", id, err)
	}

	records := rows
	if header != nil {
		records = make([][]string, 0, len(rows)+1)
		records = append(records, header)
		records = append(records, rows...)
	}

	if err := writeRecords(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", id, err)
	}
	return f.Close()
}

// TablePath resolves a table id to its file
func (s *Store) TablePath(id string) (string, error) {
	return s.FilePath(id, TableExt)
}

// FilePath resolves an id with an arbitrary extension, used for chunk
// files and manifests next to a table
func (s *Store) FilePath(id, ext string) (string, error) {
	clean, err := cleanName(id)
	if err != nil {
		return "", err
	}
	if !strings.Contains(clean, "/") && s.current != "" {
		clean = s.current + "/" + clean
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)+ext), nil
}

func (s *Store) dbPath(db string) (string, error) {
	clean, err := cleanName(db)
	if err != nil {
		return "", err
	}
	if strings.Contains(clean, "/") {
		return "", fmt.Errorf("%w: %q", dberrors.ErrInvalidName, db)
	}
	return filepath.Join(s.root, clean), nil
}

// cleanName rejects empty, absolute and parent-relative names
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "\\\x00") || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", dberrors.ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("%w: %q", dberrors.ErrInvalidName, name)
		}
	}
	return name, nil
}

// writeRecords writes CSV records. A record holding a single empty field
// is written as "" so it does not read back as a blank line.
func writeRecords(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	for _, rec := range records {
		if len(rec) == 1 && rec[0] == "" {
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
