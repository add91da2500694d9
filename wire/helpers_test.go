package wire

import (
	"encoding/binary"
	"math"
)

// Hand-assembled wire fragments for tests.

func tagByte(major MajorType, minor uint8) byte {
	return byte(MakeTag(major, minor))
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func nullBytes() []byte {
	return []byte{tagByte(TypeNull, 0)}
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{tagByte(TypeBool, 1)}
	}
	return []byte{tagByte(TypeBool, 0)}
}

// uintBytes returns v as width little-endian bytes
func uintBytes(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// intBytes encodes v with the smallest wide integer width
func intBytes(v int64) []byte {
	major := TypeIntegerPositive
	magnitude := uint64(v)
	if v < 0 {
		major = TypeIntegerNegative
		magnitude = uint64(-v)
	}
	width := 1
	for width < 8 && magnitude>>(8*width) != 0 {
		width++
	}
	return cat([]byte{tagByte(major, uint8(width-1))}, uintBytes(magnitude, width))
}

func doubleBytes(v float64) []byte {
	out := make([]byte, 9)
	out[0] = tagByte(TypeDouble, 0)
	binary.LittleEndian.PutUint64(out[1:], math.Float64bits(v))
	return out
}

func textBytes(s string) []byte {
	return cat([]byte{tagByte(TypeString, 0), byte(len(s))}, []byte(s))
}

func binaryBytes(b []byte) []byte {
	return cat([]byte{tagByte(TypeBinary, 0), byte(len(b))}, b)
}

func nameBytes(s string) []byte {
	return cat([]byte{byte(len(s))}, []byte(s))
}

func structHeader(count int) []byte {
	return []byte{tagByte(TypeStruct, 0), byte(count)}
}

func arrayHeader(count int) []byte {
	return []byte{tagByte(TypeArray, 0), byte(count)}
}

// nested returns depth arrays each holding the next, ending in null
func nested(depth int) []byte {
	var out []byte
	for i := 0; i < depth; i++ {
		out = append(out, arrayHeader(1)...)
	}
	return append(out, nullBytes()...)
}
