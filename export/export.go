// Package export moves tables in and out of flatdb.
//
// Tables export to parquet (every column as a UTF-8 string) or to a SQLite
// database file (every column as TEXT). Parquet files, or globs of them,
// import as new tables.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vegasq/flatdb/reader"
)

// Source opens tables for reading
type Source interface {
	OpenTable(name string) (*reader.Reader, error)
}

// Writer stores whole tables
type Writer interface {
	WriteRows(name string, header []string, rows [][]string) error
}

// Table exports a table to path, choosing the format by extension:
// .parquet, or .db/.sqlite/.sqlite3. It returns the number of rows written.
func Table(src Source, table, path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return ToParquet(src, table, path)
	case ".db", ".sqlite", ".sqlite3":
		return ToSQLite(src, table, path)
	default:
		return 0, fmt.Errorf("unsupported export format %q (want .parquet, .db, .sqlite or .sqlite3)", filepath.Ext(path))
	}
}

// FromParquet imports one parquet file or a glob of them as a table,
// replacing any existing table of that name
func FromParquet(dst Writer, pattern, table string) (int, error) {
	header, rows, err := reader.ReadParquetFiles(pattern)
	if err != nil {
		return 0, err
	}
	if header.Len() == 0 {
		return 0, fmt.Errorf("parquet input %s has no columns", pattern)
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r
	}
	if err := dst.WriteRows(table, header.Columns, records); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// scan calls fn for every chunk of a table
func scan(r *reader.Reader, fn func([]reader.Row) error) error {
	for {
		rows, err := r.NextChunk()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rows); err != nil {
			return err
		}
	}
}
