package wire

import (
	"fmt"
	"math"

	"github.com/anirudhraja/fastrpc/value"
)

// EnvelopeDecoder decodes the outermost Call / Success / Fault structure
type EnvelopeDecoder struct {
	decoder *Decoder
}

// NewEnvelopeDecoder creates a new envelope decoder
func NewEnvelopeDecoder(d *Decoder) *EnvelopeDecoder {
	return &EnvelopeDecoder{decoder: d}
}

// Decode decodes an envelope using DefaultConfig - main entry point
func Decode(data []byte) (value.RPC, error) {
	return DecodeWithConfig(data, DefaultConfig())
}

// DecodeWithConfig decodes an envelope with explicit limits
func DecodeWithConfig(data []byte, cfg Config) (value.RPC, error) {
	d := NewDecoderWithConfig(data, cfg)
	ed := NewEnvelopeDecoder(d)
	return ed.DecodeRPC()
}

// DecodeRPC skips the magic header when present, then decodes the
// envelope. Bytes after the last value are ignored.
func (ed *EnvelopeDecoder) DecodeRPC() (value.RPC, error) {
	d := ed.decoder
	if d.HasPrefix(Magic[:]) {
		d.pos += len(Magic)
	} else if d.cfg.RequireMagic {
		return nil, fmt.Errorf("%w: expected % x", ErrMissingMagic, Magic[:])
	}

	tagPos := d.pos
	major, _, err := d.readTag()
	if err != nil {
		return nil, err
	}

	switch major {
	case TypeCall:
		return ed.decodeCall()
	case TypeResponse:
		result, err := d.DecodeValue()
		if err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return value.Success{Result: result}, nil
	case TypeFault:
		return ed.decodeFault()
	default:
		return nil, fmt.Errorf("%w 0x%02x (%s) at offset %d", ErrUnknownEnvelopeTag, d.buf[tagPos], major, tagPos)
	}
}

// decodeCall decodes the method name and its single argument value
func (ed *EnvelopeDecoder) decodeCall() (value.RPC, error) {
	d := ed.decoder
	bd := NewBytesDecoder(d)
	method, err := bd.DecodeName("method name")
	if err != nil {
		return nil, fmt.Errorf("failed to decode call: %w", err)
	}

	argument, err := d.DecodeValue()
	if err != nil {
		return nil, fmt.Errorf("failed to decode call %s: %w", method, err)
	}
	return value.Call{Method: method, Argument: argument}, nil
}

// decodeFault decodes an integer code value followed by a text message
// value. Any other shape is ErrInvalidFault.
func (ed *EnvelopeDecoder) decodeFault() (value.RPC, error) {
	d := ed.decoder
	codeValue, err := d.DecodeValue()
	if err != nil {
		return nil, fmt.Errorf("failed to decode fault code: %w", err)
	}
	code, ok := codeValue.Int()
	if !ok {
		return nil, fmt.Errorf("%w: code is %s, want integer", ErrInvalidFault, codeValue.Kind())
	}
	if code < math.MinInt32 || code > math.MaxInt32 {
		return nil, fmt.Errorf("%w: code %d overflows int32", ErrInvalidFault, code)
	}

	messageValue, err := d.DecodeValue()
	if err != nil {
		return nil, fmt.Errorf("failed to decode fault message: %w", err)
	}
	message, ok := messageValue.Text()
	if !ok {
		return nil, fmt.Errorf("%w: message is %s, want text", ErrInvalidFault, messageValue.Kind())
	}

	return value.Fault{Code: int32(code), Message: message}, nil
}
