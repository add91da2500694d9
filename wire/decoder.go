package wire

import (
	"fmt"

	"github.com/anirudhraja/fastrpc/value"
)

// Decoder is a read-only cursor over a FastRPC byte buffer. It never
// copies or modifies buf; the position only moves forward.
//
// After any decode method returns an error the cursor position is
// unspecified and the Decoder must not be reused.
type Decoder struct {
	buf   []byte
	pos   int
	cfg   Config
	depth depthContext
}

// NewDecoder creates a decoder using DefaultConfig
func NewDecoder(data []byte) *Decoder {
	return NewDecoderWithConfig(data, DefaultConfig())
}

// NewDecoderWithConfig creates a decoder with explicit limits
func NewDecoderWithConfig(data []byte, cfg Config) *Decoder {
	cfg = cfg.Normalized()
	return &Decoder{
		buf:   data,
		pos:   0,
		cfg:   cfg,
		depth: depthContext{max: cfg.MaxDepth},
	}
}

// DecodeValue decodes one value from the start of data and reports how
// many bytes it used. Bytes after the value are left alone.
func DecodeValue(data []byte, cfg Config) (value.Value, int, error) {
	d := NewDecoderWithConfig(data, cfg)
	v, err := d.DecodeValue()
	if err != nil {
		return value.Value{}, 0, err
	}
	return v, d.pos, nil
}

// ===== CURSOR =====

// Position returns the current read offset.
func (d *Decoder) Position() int {
	return d.pos
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF reports whether every byte has been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// truncated builds the error for a read of need bytes at the cursor
func (d *Decoder) truncated(what string, need int) error {
	return &TruncatedError{Pos: d.pos, Need: need, Have: d.Remaining(), What: what}
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, d.truncated("byte", 1)
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadBytes returns the next n bytes as a view into the buffer.
// The caller must copy them before retaining.
func (d *Decoder) ReadBytes(n int, what string) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, d.truncated(what, n)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// HasPrefix reports whether the unread bytes start with prefix.
func (d *Decoder) HasPrefix(prefix []byte) bool {
	if len(prefix) > d.Remaining() {
		return false
	}
	for i, b := range prefix {
		if d.buf[d.pos+i] != b {
			return false
		}
	}
	return true
}

// readTag reads the next tag byte and splits it
func (d *Decoder) readTag() (MajorType, uint8, error) {
	if d.pos >= len(d.buf) {
		return 0, 0, d.truncated("tag", 1)
	}
	major, minor := ParseTag(Tag(d.buf[d.pos]))
	d.pos++
	return major, minor, nil
}

// ===== VALUE DISPATCH =====

// DecodeValue reads one tag byte and decodes the value it introduces,
// recursing into struct and array members.
func (d *Decoder) DecodeValue() (value.Value, error) {
	tagPos := d.pos
	major, minor, err := d.readTag()
	if err != nil {
		return value.Value{}, err
	}

	switch major {
	case TypeInteger32:
		fd := NewFixedDecoder(d)
		v, err := fd.DecodeInt32(minor)
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(int64(v)), nil

	case TypeBool:
		return value.Bool(minor&1 == 1), nil

	case TypeDouble:
		fd := NewFixedDecoder(d)
		v, err := fd.DecodeDouble()
		if err != nil {
			return value.Value{}, err
		}
		return value.Double(v), nil

	case TypeString:
		bd := NewBytesDecoder(d)
		s, err := bd.DecodeText(widthOf(minor))
		if err != nil {
			return value.Value{}, err
		}
		return value.Text(s), nil

	case TypeDatetime:
		dd := NewDatetimeDecoder(d)
		dt, err := dd.DecodeDatetime()
		if err != nil {
			return value.Value{}, err
		}
		return value.DatetimeOf(dt), nil

	case TypeBinary:
		bd := NewBytesDecoder(d)
		b, err := bd.DecodeBinary(widthOf(minor))
		if err != nil {
			return value.Value{}, err
		}
		return value.Binary(b), nil

	case TypeIntegerPositive:
		fd := NewFixedDecoder(d)
		u, err := fd.DecodeUint(widthOf(minor), "integer")
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(int64(u)), nil

	case TypeIntegerNegative:
		fd := NewFixedDecoder(d)
		u, err := fd.DecodeUint(widthOf(minor), "integer")
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(-int64(u)), nil

	case TypeStruct:
		ad := NewAggregateDecoder(d)
		return ad.DecodeStruct(widthOf(minor))

	case TypeArray:
		ad := NewAggregateDecoder(d)
		return ad.DecodeArray(widthOf(minor))

	case TypeNull:
		return value.Null(), nil

	default:
		return value.Value{}, fmt.Errorf("%w 0x%02x (%s) at offset %d", ErrUnknownTag, d.buf[tagPos], major, tagPos)
	}
}
