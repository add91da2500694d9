package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FixedDecoder handles little-endian integer and double fields
type FixedDecoder struct {
	decoder *Decoder
}

// NewFixedDecoder creates a new fixed decoder
func NewFixedDecoder(d *Decoder) *FixedDecoder {
	return &FixedDecoder{decoder: d}
}

// DecodeUint decodes a little-endian unsigned value of width bytes
// (0-8). Width 0 consumes nothing and yields 0.
func (fd *FixedDecoder) DecodeUint(width int, what string) (uint64, error) {
	d := fd.decoder
	if width < 0 || width > 8 {
		return 0, fmt.Errorf("%w: %s width %d at offset %d", ErrUnknownTag, what, width, d.pos)
	}
	raw, err := d.ReadBytes(width, what)
	if err != nil {
		return 0, err
	}

	var v uint64
	for i, b := range raw {
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

// DecodeInt32 decodes the legacy integer payload: width (0-4) bytes,
// reinterpreted as a signed 32-bit value.
func (fd *FixedDecoder) DecodeInt32(width uint8) (int32, error) {
	if width > 4 {
		return 0, fmt.Errorf("%w: int32 width %d at offset %d", ErrUnknownTag, width, fd.decoder.pos-1)
	}
	v, err := fd.DecodeUint(int(width), "int32")
	if err != nil {
		return 0, err
	}
	return int32(uint32(v)), nil
}

// DecodeDouble decodes an 8 byte little-endian IEEE 754 double
func (fd *FixedDecoder) DecodeDouble() (float64, error) {
	raw, err := fd.decoder.ReadBytes(8, "double")
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
}

// DecodeLength decodes a length or count field and checks it fits an int
func (fd *FixedDecoder) DecodeLength(width int, what string) (uint64, error) {
	n, err := fd.DecodeUint(width, what)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt {
		return 0, fmt.Errorf("%w: %s %d", ErrAllocationTooLarge, what, n)
	}
	return n, nil
}
