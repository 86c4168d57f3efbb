package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/flatdb/reader"
)

// ToParquet writes a table as a parquet file with one required string
// column per table column
func ToParquet(src Source, table, path string) (int, error) {
	r, err := src.OpenTable(table)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	header := r.Header()
	if header.Len() == 0 {
		return 0, fmt.Errorf("table %s has no header", table)
	}

	group := parquet.Group{}
	for _, c := range header.Columns {
		group[c] = parquet.String()
	}
	schema := parquet.NewSchema("flatdb", group)

	// leaf columns come out in schema order, which sorts by name
	fields := schema.Fields()
	positions := make([]int, len(fields))
	for i, f := range fields {
		pos, _ := header.Index(f.Name())
		positions[i] = pos
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := parquet.NewWriter(f, schema)
	written := 0
	err = scan(r, func(rows []reader.Row) error {
		batch := make([]parquet.Row, len(rows))
		for i, row := range rows {
			values := make(parquet.Row, len(fields))
			for col, pos := range positions {
				values[col] = parquet.ByteArrayValue([]byte(row[pos])).Level(0, 0, col)
			}
			batch[i] = values
		}
		n, err := w.WriteRows(batch)
		written += n
		return err
	})
	if err != nil {
		_ = w.Close()
		return written, fmt.Errorf("failed to write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		return written, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return written, f.Close()
}
