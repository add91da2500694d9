// Package transport recovers raw FastRPC wire bytes from the form they
// travel in: base64 text, optionally wrapping a zstd or lz4 frame.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/anirudhraja/fastrpc/b64"
)

// Compression identifies how the wire bytes are compressed.
type Compression string

const (
	// CompressionAuto sniffs the frame magic and falls back to none.
	CompressionAuto Compression = "auto"
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// DefaultMaxSize bounds the decompressed payload size.
const DefaultMaxSize = 16 << 20

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// ErrTooLarge is returned when a decompressed payload exceeds the limit.
var ErrTooLarge = errors.New("transport: decompressed payload too large")

// ParseCompression parses a compression name. The empty string means auto.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", CompressionAuto:
		return CompressionAuto, nil
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("unknown compression: %q", name)
	}
}

// Detect reports the compression of data from its leading magic bytes.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Options controls Unwrap.
type Options struct {
	// Raw skips base64 decoding; the input is already binary.
	Raw         bool
	Compression Compression
	// MaxSize bounds the decompressed size; zero uses DefaultMaxSize.
	MaxSize int
}

// Unwrap turns transport input into wire bytes. Surrounding whitespace
// is trimmed before base64 decoding.
func Unwrap(input []byte, opts Options) ([]byte, error) {
	data := input
	if !opts.Raw {
		var err error
		data, err = b64.Decode(bytes.TrimSpace(input))
		if err != nil {
			return nil, err
		}
	}
	return Decompress(data, opts.Compression, opts.MaxSize)
}

// Decompress undoes the given compression. For CompressionNone the
// input is returned unchanged (no copy).
func Decompress(data []byte, compression Compression, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if compression == "" || compression == CompressionAuto {
		compression = Detect(data)
	}

	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return decompressZstd(data, maxSize)
	case CompressionLZ4:
		return decompressLZ4(data, maxSize)
	default:
		return nil, fmt.Errorf("unsupported compression: %q", compression)
	}
}

func decompressZstd(data []byte, maxSize int) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(data),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(maxSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	defer decoder.Close()

	out, err := readLimited(decoder, maxSize)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

func decompressLZ4(data []byte, maxSize int) ([]byte, error) {
	out, err := readLimited(lz4.NewReader(bytes.NewReader(data)), maxSize)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}

// readLimited reads r to EOF, failing with ErrTooLarge past maxSize bytes.
func readLimited(r io.Reader, maxSize int) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxSize)
	}
	return out, nil
}
