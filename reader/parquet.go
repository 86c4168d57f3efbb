package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// maxImportFiles caps how many files one glob import may expand to
const maxImportFiles = 1000

// FileColumn is the extra column added when importing several files
const FileColumn = "_file"

// ParquetReader reads a parquet file as text rows for import.
type ParquetReader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewParquetReader opens and validates a parquet file
func NewParquetReader(path string) (*ParquetReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &ParquetReader{file: file, pqFile: pqFile}, nil
}

// Schema returns the parquet schema
func (r *ParquetReader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// Columns returns the leaf column names in schema order. Nested fields use
// dot notation.
func (r *ParquetReader) Columns() []string {
	infos := describeSchema(r.pqFile.Schema())
	cols := make([]string, len(infos))
	for i, info := range infos {
		cols[i] = info.Name
	}
	return cols
}

// ReadAll converts every record to a text row following Columns.
func (r *ParquetReader) ReadAll() (Header, []Row, error) {
	columns := r.Columns()

	pr := parquet.NewReader(r.pqFile)
	defer func() { _ = pr.Close() }()

	var rows []Row
	for {
		record := make(map[string]interface{})
		if err := pr.Read(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Header{}, nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[i] = FormatValue(lookup(record, col))
		}
		rows = append(rows, row)
	}

	return NewHeader(columns), rows, nil
}

// Close releases the file handle
func (r *ParquetReader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// ReadParquetFiles reads one file or every file matching a glob pattern.
//
// For a glob, the header is the union of all file columns in first-seen
// order followed by a "_file" column naming the source of each row.
func ReadParquetFiles(pattern string) (Header, []Row, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		r, err := NewParquetReader(pattern)
		if err != nil {
			return Header{}, nil, err
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return Header{}, nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return Header{}, nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxImportFiles {
		return Header{}, nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxImportFiles)
	}

	type part struct {
		path   string
		header Header
		rows   []Row
	}
	parts := make([]part, 0, len(matches))
	var columns []string
	seen := make(map[string]bool)

	for _, path := range matches {
		r, err := NewParquetReader(path)
		if err != nil {
			return Header{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		h, rows, readErr := r.ReadAll()
		closeErr := r.Close()
		if readErr != nil {
			return Header{}, nil, fmt.Errorf("failed to read rows from %s: %w", path, readErr)
		}
		if closeErr != nil {
			return Header{}, nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		for _, c := range h.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		parts = append(parts, part{path: path, header: h, rows: rows})
	}

	columns = append(columns, FileColumn)
	header := NewHeader(columns)

	var all []Row
	for _, p := range parts {
		for _, src := range p.rows {
			row := make(Row, len(columns))
			for i, c := range p.header.Columns {
				pos, _ := header.Index(c)
				row[pos] = src[i]
			}
			row[len(columns)-1] = p.path
			all = append(all, row)
		}
	}

	return header, all, nil
}

// lookup resolves a dotted column name inside nested records
func lookup(record map[string]interface{}, name string) interface{} {
	if v, ok := record[name]; ok {
		return v
	}
	parts := strings.Split(name, ".")
	var cur interface{} = record
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}

// FormatValue renders a parquet value as table text. Null becomes "".
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
