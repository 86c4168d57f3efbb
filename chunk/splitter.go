// Package chunk splits a table into fixed-size chunk files.
//
// The chunk size is derived from a memory budget: the splitter samples the
// first rows of the table, estimates their average in-memory footprint and
// fits as many rows per chunk as the budget allows. Chunk files are named
// <table>_chunk<N> and written next to the table together with a YAML
// manifest.
package chunk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/internal/metrics"
	"github.com/vegasq/flatdb/reader"
)

// DefaultSampleSize is the number of data rows sampled to estimate row size
const DefaultSampleSize = 10

// Source opens tables for reading
type Source interface {
	OpenTable(name string) (*reader.Reader, error)
}

// Splitter writes chunk files for tables of one Storage.
type Splitter struct {
	store        Storage
	sampleSize   int
	codec        Codec
	repeatHeader bool
	logger       *slog.Logger
}

// Option configures a Splitter
type Option func(*Splitter)

// WithSampleSize sets how many rows are sampled. Values below 1 are ignored.
func WithSampleSize(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithCodec sets the chunk compression
func WithCodec(c Codec) Option {
	return func(s *Splitter) {
		s.codec = c
	}
}

// WithRepeatHeader writes the table header at the top of every chunk
func WithRepeatHeader(on bool) Option {
	return func(s *Splitter) {
		s.repeatHeader = on
	}
}

// WithLogger sets the splitter logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Splitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSplitter creates a new splitter
func NewSplitter(store Storage, opts ...Option) *Splitter {
	s := &Splitter{
		store:      store,
		sampleSize: DefaultSampleSize,
		codec:      CodecNone,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EstimateRowsPerChunk samples the table and returns how many rows fit the
// budget, never less than one. The budget must be positive.
func (s *Splitter) EstimateRowsPerChunk(table string, budget int64) (int, error) {
	if budget <= 0 {
		return 0, fmt.Errorf("%w: chunk budget must be positive, got %d", dberrors.ErrInvalidBudget, budget)
	}
	r, err := s.store.OpenTable(table)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	var sample []reader.Row
	for len(sample) < s.sampleSize {
		rows, err := r.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		sample = append(sample, rows...)
	}
	if len(sample) < s.sampleSize {
		return 0, fmt.Errorf("%w: table %s has %d rows, need %d", dberrors.ErrInsufficientRows, table, len(sample), s.sampleSize)
	}
	sample = sample[:s.sampleSize]

	var total int64
	for _, row := range sample {
		total += reader.RowSize(row)
	}
	avg := total / int64(len(sample))

	perChunk := budget / avg
	if perChunk < 1 {
		perChunk = 1
	}
	return int(perChunk), nil
}

// Split estimates the chunk size from a budget and splits the table
func (s *Splitter) Split(table string, budget int64) (*Manifest, error) {
	perChunk, err := s.EstimateRowsPerChunk(table, budget)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("chunk size estimated", "table", table, "budget", budget, "rows_per_chunk", perChunk)
	return s.SplitRows(table, perChunk)
}

// SplitRows writes the table as chunks of exactly rowsPerChunk rows, the
// last chunk holding the remainder. Rows keep their file order and each
// appears in exactly one chunk.
func (s *Splitter) SplitRows(table string, rowsPerChunk int) (*Manifest, error) {
	if rowsPerChunk < 1 {
		return nil, fmt.Errorf("rows per chunk must be positive, got %d", rowsPerChunk)
	}

	sink, closeSink, err := s.sink()
	if err != nil {
		return nil, err
	}
	defer closeSink()

	r, err := s.store.OpenTable(table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	m := &Manifest{
		Table:        table,
		Header:       r.Header().Columns,
		Codec:        s.codec,
		RowsPerChunk: rowsPerChunk,
		RepeatHeader: s.repeatHeader,
	}

	pending := make([][]string, 0, rowsPerChunk)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		name := fmt.Sprintf("%s_chunk%d", table, len(m.Chunks))
		var header []string
		if s.repeatHeader {
			header = m.Header
		}
		path, err := sink.WriteChunk(name, header, pending)
		if err != nil {
			return err
		}
		m.Chunks = append(m.Chunks, ChunkInfo{
			Index: len(m.Chunks),
			File:  filepath.Base(path),
			Rows:  len(pending),
		})
		m.TotalRows += len(pending)
		metrics.ChunksWritten.WithLabelValues(string(s.codec)).Inc()
		s.logger.Debug("chunk saved", "table", table, "chunk", len(m.Chunks)-1, "rows", len(pending))
		pending = make([][]string, 0, rowsPerChunk)
		return nil
	}

	for {
		rows, err := r.NextChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		for _, row := range rows {
			pending = append(pending, row)
			if len(pending) >= rowsPerChunk {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if _, err := WriteManifest(s.store, m); err != nil {
		return nil, err
	}
	s.logger.Info("table split", "table", table, "chunks", len(m.Chunks), "rows", m.TotalRows, "codec", s.codec)
	return m, nil
}

func (s *Splitter) sink() (Sink, func(), error) {
	comp, err := NewCompressor(s.codec)
	if err != nil {
		return nil, nil, err
	}
	if comp == nil {
		return NewStoreSink(s.store), func() {}, nil
	}
	closeFn := func() {}
	if z, ok := comp.(*ZstdCompressor); ok {
		closeFn = z.Close
	}
	return NewCompressedSink(s.store, comp), closeFn, nil
}
