package chunk

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vegasq/flatdb/reader"
)

// ManifestSuffix is appended to the table id to name its manifest
const ManifestSuffix = "_chunks"

// Manifest records how a table was split. Chunk files carry no header by
// default, so the manifest is the place to recover it.
type Manifest struct {
	Table        string      `yaml:"table"`
	Header       []string    `yaml:"header"`
	Codec        Codec       `yaml:"codec"`
	RowsPerChunk int         `yaml:"rows_per_chunk"`
	RepeatHeader bool        `yaml:"repeat_header"`
	TotalRows    int         `yaml:"total_rows"`
	Chunks       []ChunkInfo `yaml:"chunks"`
}

// ChunkInfo describes one chunk file
type ChunkInfo struct {
	Index int    `yaml:"index"`
	File  string `yaml:"file"` // base name, next to the manifest
	Rows  int    `yaml:"rows"`
}

// Sizes returns the row count of every chunk in order
func (m *Manifest) Sizes() []int {
	sizes := make([]int, len(m.Chunks))
	for i, c := range m.Chunks {
		sizes[i] = c.Rows
	}
	return sizes
}

// WriteManifest stores the manifest next to the table
func WriteManifest(store Storage, m *Manifest) (string, error) {
	path, err := store.FilePath(m.Table+ManifestSuffix, ".yaml")
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads the manifest of a split table
func ReadManifest(store Storage, table string) (*Manifest, error) {
	path, err := store.FilePath(table+ManifestSuffix, ".yaml")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// OpenChunk opens chunk i of a split table as a row source, decompressing
// it when needed
func OpenChunk(store Storage, m *Manifest, i int) (*reader.Reader, error) {
	if i < 0 || i >= len(m.Chunks) {
		return nil, fmt.Errorf("chunk %d out of range (%d chunks)", i, len(m.Chunks))
	}

	manifestPath, err := store.FilePath(m.Table+ManifestSuffix, ".yaml")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(manifestPath), m.Chunks[i].File))
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk %d: %w", i, err)
	}

	comp, err := NewCompressor(m.Codec)
	if err != nil {
		return nil, err
	}
	if comp != nil {
		if z, ok := comp.(*ZstdCompressor); ok {
			defer z.Close()
		}
		data, err = comp.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress chunk %d: %w", i, err)
		}
	}

	var opts []reader.Option
	if !m.RepeatHeader {
		opts = append(opts, reader.WithHeader(m.Header))
	}
	return reader.NewReaderFrom(bytes.NewReader(data), opts...)
}
