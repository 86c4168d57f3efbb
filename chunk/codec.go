package chunk

import (
	"fmt"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	dberrors "github.com/vegasq/flatdb/internal/errors"
)

// Codec names how chunk files are compressed
type Codec string

const (
	CodecNone   Codec = "none"
	CodecZstd   Codec = "zstd"
	CodecSnappy Codec = "snappy"
)

// ParseCodec parses a codec name. Empty means none.
func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CodecNone:
		return CodecNone, nil
	case CodecZstd, CodecSnappy:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", dberrors.ErrUnsupportedCodec, s)
	}
}

// Ext returns the extra file extension appended after .csv
func (c Codec) Ext() string {
	switch c {
	case CodecZstd:
		return ".zst"
	case CodecSnappy:
		return ".sz"
	default:
		return ""
	}
}

// Compressor compresses whole chunk files
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Codec() Codec
}

// SnappyCompressor implements Snappy block compression
type SnappyCompressor struct{}

func (s *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (s *SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (s *SnappyCompressor) Codec() Codec {
	return CodecSnappy
}

// ZstdCompressor implements Zstandard compression
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCompressor creates a zstd compressor at the default level
func NewZstdCompressor() (*ZstdCompressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, err
	}

	return &ZstdCompressor{
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return z.decoder.DecodeAll(data, nil)
}

func (z *ZstdCompressor) Codec() Codec {
	return CodecZstd
}

// Close releases encoder and decoder resources
func (z *ZstdCompressor) Close() {
	if z.encoder != nil {
		_ = z.encoder.Close()
	}
	if z.decoder != nil {
		z.decoder.Close()
	}
}

// NewCompressor returns the compressor for a codec, or nil for none
func NewCompressor(c Codec) (Compressor, error) {
	switch c {
	case CodecNone, "":
		return nil, nil
	case CodecSnappy:
		return &SnappyCompressor{}, nil
	case CodecZstd:
		return NewZstdCompressor()
	default:
		return nil, fmt.Errorf("%w: %q", dberrors.ErrUnsupportedCodec, c)
	}
}
