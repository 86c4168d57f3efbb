package reader

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write table: %v", err)
	}
	return path
}

func TestNewReader_Header(t *testing.T) {
	r, err := NewReader(writeTable(t, "id,name,age\n1,alice,30\n"))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	h := r.Header()
	if !reflect.DeepEqual(h.Columns, []string{"id", "name", "age"}) {
		t.Errorf("Columns = %v", h.Columns)
	}
	if i, ok := h.Index("age"); !ok || i != 2 {
		t.Errorf("Index(age) = %d, %v", i, ok)
	}
	if _, ok := h.Index("missing"); ok {
		t.Error("Index(missing) should not be found")
	}
}

func TestNewReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestNewReader_EmptyFile(t *testing.T) {
	r, err := NewReader(writeTable(t, ""))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	if r.Header().Len() != 0 {
		t.Errorf("header len = %d, want 0", r.Header().Len())
	}
	if _, err := r.NextChunk(); !errors.Is(err, io.EOF) {
		t.Errorf("NextChunk() error = %v, want io.EOF", err)
	}
}

func TestNextChunk_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 7; i++ {
		b.WriteString(string(rune('a' + i)))
		b.WriteString("\n")
	}

	r, err := NewReader(writeTable(t, b.String()), WithBatchSize(3))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	var sizes []int
	var values []string
	for {
		rows, err := r.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("NextChunk() error = %v", err)
		}
		sizes = append(sizes, len(rows))
		for _, row := range rows {
			values = append(values, row[0])
		}
	}

	if !reflect.DeepEqual(sizes, []int{3, 3, 1}) {
		t.Errorf("chunk sizes = %v, want [3 3 1]", sizes)
	}
	if strings.Join(values, "") != "abcdefg" {
		t.Errorf("values = %v, want file order", values)
	}
}

func TestNextChunk_NormalizesArity(t *testing.T) {
	r, err := NewReader(writeTable(t, "a,b,c\n1\n1,2,3,4\n1,2,3\n"))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	want := []Row{{"1", "", ""}, {"1", "2", "3"}, {"1", "2", "3"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestNewReaderFrom_WithHeader(t *testing.T) {
	r, err := NewReaderFrom(strings.NewReader("1,x\n2,y\n"), WithHeader([]string{"id", "v"}))
	if err != nil {
		t.Fatalf("NewReaderFrom() error = %v", err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "1" {
		t.Errorf("rows = %v, first record must be data", rows)
	}
}

func TestReader_QuotedFields(t *testing.T) {
	r, err := NewReader(writeTable(t, "name,bio\n\"Smith, J\",\"says \"\"hi\"\"\"\n"))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer func() { _ = r.Close() }()

	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if rows[0][0] != "Smith, J" || rows[0][1] != `says "hi"` {
		t.Errorf("row = %q", rows[0])
	}
}

func TestReader_CloseTwice(t *testing.T) {
	r, err := NewReader(writeTable(t, "a\n1\n"))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
