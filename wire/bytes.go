package wire

import (
	"fmt"
	"unicode/utf8"
)

// BytesDecoder handles length-prefixed text, binary and member names
type BytesDecoder struct {
	decoder *Decoder
}

// NewBytesDecoder creates a new bytes decoder
func NewBytesDecoder(d *Decoder) *BytesDecoder {
	return &BytesDecoder{decoder: d}
}

// DecodeRawBytes reads a lenWidth-byte length followed by that many
// bytes. The returned slice shares the decoder buffer.
func (bd *BytesDecoder) DecodeRawBytes(lenWidth int, what string) ([]byte, error) {
	d := bd.decoder
	fd := NewFixedDecoder(d)
	length, err := fd.DecodeLength(lenWidth, what+" length")
	if err != nil {
		return nil, err
	}

	// Bounds check first: length must fit in remaining buffer
	if length > uint64(d.Remaining()) {
		return nil, d.truncated(what, int(length))
	}
	// Allocation limit check: prevent DoS via huge length prefix
	if length > uint64(d.cfg.MaxLength) {
		return nil, fmt.Errorf("%w: %s of %d bytes (limit %d)", ErrAllocationTooLarge, what, length, d.cfg.MaxLength)
	}

	return d.ReadBytes(int(length), what)
}

// DecodeText decodes a length-prefixed UTF-8 string
func (bd *BytesDecoder) DecodeText(lenWidth int) (string, error) {
	start := bd.decoder.pos
	raw, err := bd.DecodeRawBytes(lenWidth, "string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: string at offset %d", ErrInvalidEncoding, start)
	}
	return string(raw), nil
}

// DecodeBinary decodes length-prefixed opaque bytes into a fresh slice
func (bd *BytesDecoder) DecodeBinary(lenWidth int) ([]byte, error) {
	raw, err := bd.DecodeRawBytes(lenWidth, "binary")
	if err != nil {
		return nil, err
	}

	// Copy the data to avoid sharing the underlying buffer
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

// DecodeName decodes a struct member or method name: one length byte
// followed by that many UTF-8 bytes.
func (bd *BytesDecoder) DecodeName(what string) (string, error) {
	start := bd.decoder.pos
	raw, err := bd.DecodeRawBytes(1, what)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %s at offset %d", ErrInvalidEncoding, what, start)
	}
	return string(raw), nil
}
