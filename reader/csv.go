// Package reader provides the row source for flatdb tables.
//
// Tables are delimited text files whose first record is the header. A
// Reader streams the remaining records in bounded chunks so a scan never
// holds more than one chunk of raw rows at a time:
//
//	r, err := reader.NewReader("data/shop/users.csv")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for {
//	    rows, err := r.NextChunk()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
//
// The package also reads parquet files for import, see ParquetReader.
package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultBatchSize is the number of rows returned per NextChunk call
const DefaultBatchSize = 50

// Row is one table record. All values are text.
type Row []string

// Header holds the ordered column names of a table with a name index.
type Header struct {
	Columns []string
	index   map[string]int
}

// NewHeader builds a header. When a name repeats, the first position wins.
func NewHeader(columns []string) Header {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	return Header{Columns: columns, index: index}
}

// Index returns the position of a column
func (h Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Len returns the number of columns
func (h Header) Len() int {
	return len(h.Columns)
}

// Reader streams rows of one table file.
type Reader struct {
	file      io.Closer
	csv       *csv.Reader
	header    Header
	batchSize int
	preset    bool
	done      bool
}

// Option configures a Reader
type Option func(*Reader)

// WithBatchSize sets the number of rows per chunk. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithHeader supplies the header instead of reading it from the first
// record. Used for headerless chunk files.
func WithHeader(columns []string) Option {
	return func(r *Reader) {
		r.header = NewHeader(columns)
		r.preset = true
	}
}

// NewReader opens a table file and reads its header.
//
// The error wraps fs.ErrNotExist when the file is missing.
func NewReader(path string, opts ...Option) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r, err := NewReaderFrom(file, opts...)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReaderFrom reads a table from any stream. Closing the Reader does not
// close src.
func NewReaderFrom(src io.Reader, opts ...Option) (*Reader, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	r := &Reader{
		csv:       cr,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.preset {
		return r, nil
	}

	record, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.header = NewHeader(nil)
			r.done = true
			return r, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	r.header = NewHeader(record)

	return r, nil
}

// Header returns the table header
func (r *Reader) Header() Header {
	return r.header
}

// NextChunk returns up to the batch size of rows in file order.
// It returns io.EOF once the file is exhausted.
func (r *Reader) NextChunk() ([]Row, error) {
	if r.done {
		return nil, io.EOF
	}

	rows := make([]Row, 0, r.batchSize)
	for len(rows) < r.batchSize {
		record, err := r.csv.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, r.normalize(record))
	}

	if len(rows) == 0 {
		return nil, io.EOF
	}
	return rows, nil
}

// ReadAll reads every remaining row into memory.
func (r *Reader) ReadAll() ([]Row, error) {
	var all []Row
	for {
		rows, err := r.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return all, nil
			}
			return nil, err
		}
		all = append(all, rows...)
	}
}

// Close releases the file handle. It is safe to call Close multiple times.
func (r *Reader) Close() error {
	r.done = true
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// normalize pads short records with empty fields and truncates long ones
func (r *Reader) normalize(record []string) Row {
	n := r.header.Len()
	if n == 0 || len(record) == n {
		return record
	}
	if len(record) > n {
		return record[:n]
	}
	row := make(Row, n)
	copy(row, record)
	return row
}
