package wire

import (
	"encoding/binary"

	"github.com/anirudhraja/fastrpc/value"
)

// DatetimeSize is the fixed payload size of a protocol 2.0 datetime:
// zone (1), unix time (4), packed calendar fields (5).
const DatetimeSize = 10

// yearOffset is added to the 11-bit year field
const yearOffset = 1600

// DatetimeDecoder decodes datetime payloads
type DatetimeDecoder struct {
	decoder *Decoder
}

// NewDatetimeDecoder creates a new datetime decoder
func NewDatetimeDecoder(d *Decoder) *DatetimeDecoder {
	return &DatetimeDecoder{decoder: d}
}

// DecodeDatetime decodes the 10 byte datetime payload. The last five
// bytes form a little-endian 40 bit field holding, from the low bit:
// weekday:3 second:6 minute:6 hour:5 day:5 month:4 year:11.
func (dd *DatetimeDecoder) DecodeDatetime() (value.Datetime, error) {
	raw, err := dd.decoder.ReadBytes(DatetimeSize, "datetime")
	if err != nil {
		return value.Datetime{}, err
	}

	var packed uint64
	for i, b := range raw[5:] {
		packed |= uint64(b) << (8 * i)
	}
	field := func(bits uint) int {
		v := int(packed & (1<<bits - 1))
		packed >>= bits
		return v
	}

	dt := value.Datetime{
		Zone: int(int8(raw[0])),
		Unix: int64(int32(binary.LittleEndian.Uint32(raw[1:5]))),
	}
	dt.Weekday = field(3)
	dt.Second = field(6)
	dt.Minute = field(6)
	dt.Hour = field(5)
	dt.Day = field(5)
	dt.Month = field(4)
	dt.Year = field(11) + yearOffset
	return dt, nil
}
