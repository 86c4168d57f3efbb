package chunk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/reader"
	"github.com/vegasq/flatdb/storage"
)

func newTable(t *testing.T, n int) *storage.Store {
	t.Helper()
	s, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i), fmt.Sprintf("name%02d", i)}
	}
	if err := s.WriteRows("t", []string{"id", "name"}, rows); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	return s
}

func readChunks(t *testing.T, s *storage.Store, m *Manifest) [][]string {
	t.Helper()
	var all [][]string
	for i := range m.Chunks {
		r, err := OpenChunk(s, m, i)
		if err != nil {
			t.Fatalf("OpenChunk(%d) error = %v", i, err)
		}
		rows, err := r.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(rows) != m.Chunks[i].Rows {
			t.Errorf("chunk %d has %d rows, manifest says %d", i, len(rows), m.Chunks[i].Rows)
		}
		for _, row := range rows {
			all = append(all, row)
		}
	}
	return all
}

func TestSplitRows(t *testing.T) {
	s := newTable(t, 25)
	m, err := NewSplitter(s).SplitRows("t", 10)
	if err != nil {
		t.Fatalf("SplitRows() error = %v", err)
	}

	if !reflect.DeepEqual(m.Sizes(), []int{10, 10, 5}) {
		t.Errorf("Sizes() = %v, want [10 10 5]", m.Sizes())
	}
	for i, c := range m.Chunks {
		want := fmt.Sprintf("t_chunk%d.csv", i)
		if c.File != want {
			t.Errorf("chunk %d file = %s, want %s", i, c.File, want)
		}
	}

	// chunk files carry no header
	data, err := os.ReadFile(filepath.Join(s.Root(), "t_chunk0.csv"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data[:4]) != "0,na" {
		t.Errorf("chunk 0 starts with %q, want first data row", data[:4])
	}

	rows := readChunks(t, s, m)
	if len(rows) != 25 {
		t.Fatalf("reassembled %d rows, want 25", len(rows))
	}
	for i, row := range rows {
		if row[0] != fmt.Sprintf("%d", i) {
			t.Errorf("row %d = %v, order not preserved", i, row)
			break
		}
	}
}

func TestSplitRows_ExactMultiple(t *testing.T) {
	s := newTable(t, 20)
	m, err := NewSplitter(s).SplitRows("t", 10)
	if err != nil {
		t.Fatalf("SplitRows() error = %v", err)
	}
	if !reflect.DeepEqual(m.Sizes(), []int{10, 10}) {
		t.Errorf("Sizes() = %v, want [10 10]", m.Sizes())
	}
}

func TestSplitRows_Invalid(t *testing.T) {
	s := newTable(t, 3)
	if _, err := NewSplitter(s).SplitRows("t", 0); err == nil {
		t.Error("SplitRows(0) should fail")
	}
	if _, err := NewSplitter(s).SplitRows("missing", 5); !errors.Is(err, dberrors.ErrTableNotFound) {
		t.Errorf("SplitRows(missing) error = %v, want ErrTableNotFound", err)
	}
}

func TestSplit_Budget(t *testing.T) {
	s := newTable(t, 25)
	row := reader.Row{"0", "name00"}
	perRow := reader.RowSize(row)

	tests := []struct {
		name      string
		budget    int64
		wantSizes []int
	}{
		{"ten rows per chunk", perRow*10 + perRow/2, []int{10, 10, 5}},
		{"budget below one row", 1, nil},
		{"everything", perRow * 100, []int{25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := NewSplitter(s)
			m, err := sp.Split("t", tt.budget)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			if tt.wantSizes != nil && !reflect.DeepEqual(m.Sizes(), tt.wantSizes) {
				t.Errorf("Sizes() = %v, want %v", m.Sizes(), tt.wantSizes)
			}
			if tt.wantSizes == nil && m.RowsPerChunk != 1 {
				t.Errorf("RowsPerChunk = %d, want clamp to 1", m.RowsPerChunk)
			}
		})
	}
}

func TestSplit_NonPositiveBudget(t *testing.T) {
	s := newTable(t, 25)
	for _, budget := range []int64{0, -1} {
		if _, err := NewSplitter(s).Split("t", budget); !errors.Is(err, dberrors.ErrInvalidBudget) {
			t.Errorf("Split(%d) error = %v, want ErrInvalidBudget", budget, err)
		}
	}
}

func TestSplit_InsufficientRows(t *testing.T) {
	s := newTable(t, 9)
	_, err := NewSplitter(s).Split("t", 1000)
	if !errors.Is(err, dberrors.ErrInsufficientRows) {
		t.Errorf("Split() error = %v, want ErrInsufficientRows", err)
	}

	if _, err := NewSplitter(s, WithSampleSize(5)).Split("t", 1000); err != nil {
		t.Errorf("Split() with smaller sample error = %v", err)
	}
}

func TestSplit_MissingTable(t *testing.T) {
	s := newTable(t, 1)
	if _, err := NewSplitter(s).Split("nope", 1000); !errors.Is(err, dberrors.ErrTableNotFound) {
		t.Errorf("Split() error = %v, want ErrTableNotFound", err)
	}
}

func TestSplitRows_Codecs(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecZstd, CodecSnappy} {
		t.Run(string(codec), func(t *testing.T) {
			s := newTable(t, 25)
			m, err := NewSplitter(s, WithCodec(codec)).SplitRows("t", 7)
			if err != nil {
				t.Fatalf("SplitRows() error = %v", err)
			}
			if !reflect.DeepEqual(m.Sizes(), []int{7, 7, 7, 4}) {
				t.Errorf("Sizes() = %v", m.Sizes())
			}
			wantFile := "t_chunk0.csv" + codec.Ext()
			if m.Chunks[0].File != wantFile {
				t.Errorf("file = %s, want %s", m.Chunks[0].File, wantFile)
			}

			loaded, err := ReadManifest(s, "t")
			if err != nil {
				t.Fatalf("ReadManifest() error = %v", err)
			}
			if loaded.Codec != codec || !reflect.DeepEqual(loaded.Header, []string{"id", "name"}) {
				t.Errorf("manifest = %+v", loaded)
			}

			rows := readChunks(t, s, loaded)
			if len(rows) != 25 || rows[24][1] != "name24" {
				t.Errorf("reassembled %d rows, last = %v", len(rows), rows[len(rows)-1])
			}
		})
	}
}

func TestSplitRows_RepeatHeader(t *testing.T) {
	s := newTable(t, 5)
	m, err := NewSplitter(s, WithRepeatHeader(true)).SplitRows("t", 2)
	if err != nil {
		t.Fatalf("SplitRows() error = %v", err)
	}

	r, err := s.OpenTable("t_chunk1")
	if err != nil {
		t.Fatalf("chunk is not a standalone table: %v", err)
	}
	defer func() { _ = r.Close() }()
	if !reflect.DeepEqual(r.Header().Columns, []string{"id", "name"}) {
		t.Errorf("chunk header = %v", r.Header().Columns)
	}

	if rows := readChunks(t, s, m); len(rows) != 5 {
		t.Errorf("reassembled %d rows, want 5", len(rows))
	}
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		in      string
		want    Codec
		wantErr bool
	}{
		{"", CodecNone, false},
		{"none", CodecNone, false},
		{"ZSTD", CodecZstd, false},
		{"snappy", CodecSnappy, false},
		{"gzip", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCodec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCodec(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCodec(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
