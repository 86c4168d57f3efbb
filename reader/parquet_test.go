package reader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"
)

type personRow struct {
	ID   int64   `parquet:"id"`
	Name string  `parquet:"name"`
	Nick *string `parquet:"nick,optional"`
}

func writePeople(t *testing.T, path string, rows []personRow) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	writer := parquet.NewGenericWriter[personRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
}

func TestReadParquetFiles_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.parquet")
	nick := "al"
	writePeople(t, path, []personRow{{ID: 1, Name: "alice", Nick: &nick}, {ID: 2, Name: "bob"}})

	header, rows, err := ReadParquetFiles(path)
	if err != nil {
		t.Fatalf("ReadParquetFiles() error = %v", err)
	}

	if !reflect.DeepEqual(header.Columns, []string{"id", "name", "nick"}) {
		t.Errorf("columns = %v", header.Columns)
	}
	want := []Row{{"1", "alice", "al"}, {"2", "bob", ""}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestReadParquetFiles_Glob(t *testing.T) {
	dir := t.TempDir()
	writePeople(t, filepath.Join(dir, "a.parquet"), []personRow{{ID: 1, Name: "alice"}})
	writePeople(t, filepath.Join(dir, "b.parquet"), []personRow{{ID: 2, Name: "bob"}, {ID: 3, Name: "carol"}})

	header, rows, err := ReadParquetFiles(filepath.Join(dir, "*.parquet"))
	if err != nil {
		t.Fatalf("ReadParquetFiles() error = %v", err)
	}

	if header.Columns[header.Len()-1] != FileColumn {
		t.Errorf("last column = %q, want %q", header.Columns[header.Len()-1], FileColumn)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if filepath.Base(rows[2][header.Len()-1]) != "b.parquet" {
		t.Errorf("_file = %q, want b.parquet", rows[2][header.Len()-1])
	}
}

func TestReadParquetFiles_NoMatch(t *testing.T) {
	if _, _, err := ReadParquetFiles(filepath.Join(t.TempDir(), "*.parquet")); err == nil {
		t.Error("expected error when no files match")
	}
}

func TestDescribeParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.parquet")
	writePeople(t, path, []personRow{{ID: 1, Name: "alice"}})

	infos, err := DescribeParquet(path)
	if err != nil {
		t.Fatalf("DescribeParquet() error = %v", err)
	}

	byName := make(map[string]ColumnInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}

	tests := []struct {
		column   string
		typ      string
		optional bool
	}{
		{"id", "INT64", false},
		{"name", "STRING", false},
		{"nick", "STRING", true},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			info, ok := byName[tt.column]
			if !ok {
				t.Fatalf("column %s missing", tt.column)
			}
			if info.Type != tt.typ {
				t.Errorf("type = %s, want %s", info.Type, tt.typ)
			}
			if info.Optional != tt.optional {
				t.Errorf("optional = %v, want %v", info.Optional, tt.optional)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("raw"), "raw"},
		{int64(42), "42"},
		{int32(-7), "-7"},
		{3.5, "3.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
