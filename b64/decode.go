// Package b64 decodes the standard base64 alphabet that FastRPC payloads
// are commonly wrapped in when they travel over text transports.
//
// The decoder works on whole 4-symbol groups and can hand its output to a
// callback in chunks, so a large payload never needs an intermediate
// buffer. Trailing '=' padding is optional.
package b64

import (
	"errors"
	"fmt"
)

// Base64 decoding errors
var (
	ErrInvalidCharacter = errors.New("base64: invalid character")
	ErrInvalidLength    = errors.New("base64: invalid input length")
)

const (
	padding = '='
	invalid = 0xFF

	// chunkGroups is how many decoded groups are batched per callback.
	chunkGroups = 256
)

// CharacterError reports a byte outside the base64 alphabet.
type CharacterError struct {
	Group  int  // index of the 4-symbol group containing the byte
	Offset int  // byte offset of the offending character in the input
	Char   byte // the offending byte
}

// Error implements the error interface.
func (e *CharacterError) Error() string {
	return fmt.Sprintf("base64: invalid character %q at offset %d (group %d)", e.Char, e.Offset, e.Group)
}

// Unwrap returns ErrInvalidCharacter so callers can match with errors.Is.
func (e *CharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

var decodeMap [256]byte

func init() {
	for i := range decodeMap {
		decodeMap[i] = invalid
	}
	for c := byte('A'); c <= 'Z'; c++ {
		decodeMap[c] = c - 'A'
	}
	for c := byte('a'); c <= 'z'; c++ {
		decodeMap[c] = c - 'a' + 26
	}
	for c := byte('0'); c <= '9'; c++ {
		decodeMap[c] = c - '0' + 52
	}
	decodeMap['+'] = 62
	decodeMap['/'] = 63
}

// trimPadding returns the length of input without its trailing '=' run.
func trimPadding(input []byte) int {
	n := len(input)
	for n > 0 && input[n-1] == padding {
		n--
	}
	return n
}

// DecodedLen returns the exact number of bytes input decodes to.
// It fails with ErrInvalidLength when a single symbol is left over.
func DecodedLen(input []byte) (int, error) {
	n := trimPadding(input)
	full, rest := n/4, n%4
	switch rest {
	case 0:
		return full * 3, nil
	case 1:
		return 0, fmt.Errorf("%w: %d symbols leave a single trailing symbol", ErrInvalidLength, n)
	default:
		return full*3 + rest - 1, nil
	}
}

// Decode decodes input into a newly allocated slice of exactly the
// decoded size.
func Decode(input []byte) ([]byte, error) {
	size, err := DecodedLen(input)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, size)
	err = DecodeWithCallback(input, func(chunk []byte) {
		out = append(out, chunk...)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeString is Decode for string input.
func DecodeString(input string) ([]byte, error) {
	return Decode([]byte(input))
}

// DecodeWithCallback decodes input and passes the raw bytes to emit in
// order, in one or more chunks. The chunk slice is reused between calls;
// emit must copy what it wants to keep.
//
// The input length is validated before anything is emitted. An invalid
// character stops decoding at its group; chunks of earlier groups may
// already have been delivered.
func DecodeWithCallback(input []byte, emit func([]byte)) error {
	if _, err := DecodedLen(input); err != nil {
		return err
	}

	n := trimPadding(input)
	var buf [chunkGroups * 3]byte
	filled := 0
	flush := func() {
		if filled > 0 {
			emit(buf[:filled])
			filled = 0
		}
	}

	pos := 0
	for ; pos+4 <= n; pos += 4 {
		if filled == len(buf) {
			flush()
		}
		if err := decodeGroup(buf[filled:filled+3], input[pos:pos+4], pos); err != nil {
			flush()
			return err
		}
		filled += 3
	}

	// Short trailing group: pad with zero-valued symbols and keep only the
	// bytes the real symbols cover.
	if rest := n - pos; rest > 0 {
		group := [4]byte{'A', 'A', 'A', 'A'}
		copy(group[:], input[pos:n])
		var tail [3]byte
		if err := decodeGroup(tail[:], group[:], pos); err != nil {
			flush()
			return err
		}
		if filled+rest-1 > len(buf) {
			flush()
		}
		filled += copy(buf[filled:], tail[:rest-1])
	}

	flush()
	return nil
}

// decodeGroup packs four 6-bit symbols into three bytes of dst.
func decodeGroup(dst, src []byte, offset int) error {
	var v [4]byte
	for i := 0; i < 4; i++ {
		v[i] = decodeMap[src[i]]
		if v[i] == invalid {
			return &CharacterError{Group: offset / 4, Offset: offset + i, Char: src[i]}
		}
	}

	dst[0] = v[0]<<2 | v[1]>>4
	dst[1] = v[1]<<4 | v[2]>>2
	dst[2] = v[2]<<6 | v[3]
	return nil
}
