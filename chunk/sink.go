package chunk

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Storage is what the splitter needs from the storage layer
type Storage interface {
	Source
	WriteRows(name string, header []string, rows [][]string) error
	FilePath(id, ext string) (string, error)
}

// Sink persists one chunk and returns the file it wrote
type Sink interface {
	WriteChunk(name string, header []string, rows [][]string) (string, error)
}

// StoreSink writes plain CSV chunks through the storage layer
type StoreSink struct {
	store Storage
}

// NewStoreSink creates a plain sink
func NewStoreSink(store Storage) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) WriteChunk(name string, header []string, rows [][]string) (string, error) {
	if err := s.store.WriteRows(name, header, rows); err != nil {
		return "", err
	}
	return s.store.FilePath(name, ".csv")
}

// CompressedSink encodes a chunk as CSV in memory and writes it compressed
type CompressedSink struct {
	store Storage
	comp  Compressor
}

// NewCompressedSink creates a sink for a compressor
func NewCompressedSink(store Storage, comp Compressor) *CompressedSink {
	return &CompressedSink{store: store, comp: comp}
}

func (s *CompressedSink) WriteChunk(name string, header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header != nil {
		if err := w.Write(header); err != nil {
			return "", err
		}
	}
	for _, row := range rows {
		// a lone empty field would otherwise encode as a blank line
		if len(row) == 1 && row[0] == "" {
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to encode chunk %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to encode chunk %s: %w", name, err)
	}

	data, err := s.comp.Compress(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to compress chunk %s: %w", name, err)
	}

	path, err := s.store.FilePath(name, ".csv"+s.comp.Codec().Ext())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write chunk %s: %w", name, err)
	}
	return path, nil
}
