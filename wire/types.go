package wire

import "fmt"

// ===== FASTRPC WIRE FORMAT TYPES =====

// MajorType is the value type selected by the upper 5 bits of a tag byte
type MajorType uint8

const (
	TypeInteger32       MajorType = 1  // legacy int32, minor = byte width 0-4
	TypeBool            MajorType = 2  // minor bit 0 = value
	TypeDouble          MajorType = 3  // 8 byte little endian IEEE 754
	TypeString          MajorType = 4  // minor+1 = width of the length field
	TypeDatetime        MajorType = 5  // fixed 10 byte payload
	TypeBinary          MajorType = 6  // minor+1 = width of the length field
	TypeIntegerPositive MajorType = 7  // minor+1 = byte width 1-8
	TypeIntegerNegative MajorType = 8  // minor+1 = byte width 1-8, negated
	TypeStruct          MajorType = 10 // minor+1 = width of the member count
	TypeArray           MajorType = 11 // minor+1 = width of the item count
	TypeNull            MajorType = 12
	TypeCall            MajorType = 13 // envelope: method call
	TypeResponse        MajorType = 14 // envelope: success response
	TypeFault           MajorType = 15 // envelope: fault response
)

// Protocol magic header: "CA11" followed by version 2.0
var Magic = [4]byte{0xCA, 0x11, 0x02, 0x00}

// String returns the type name used in error messages.
func (m MajorType) String() string {
	switch m {
	case TypeInteger32:
		return "int32"
	case TypeBool:
		return "bool"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeDatetime:
		return "datetime"
	case TypeBinary:
		return "binary"
	case TypeIntegerPositive:
		return "positive int"
	case TypeIntegerNegative:
		return "negative int"
	case TypeStruct:
		return "struct"
	case TypeArray:
		return "array"
	case TypeNull:
		return "null"
	case TypeCall:
		return "call"
	case TypeResponse:
		return "response"
	case TypeFault:
		return "fault"
	default:
		return fmt.Sprintf("type(%d)", uint8(m))
	}
}

// Tag is a FastRPC tag byte (major type + 3 bits of auxiliary data)
type Tag byte

// MakeTag creates a tag from a major type and its minor bits
func MakeTag(major MajorType, minor uint8) Tag {
	return Tag(uint8(major)<<3 | minor&0x7)
}

// ParseTag splits a tag into major type and minor bits
func ParseTag(tag Tag) (MajorType, uint8) {
	return MajorType(tag >> 3), uint8(tag & 0x7)
}

// widthOf returns the byte width a minor value encodes for the
// length-prefixed and wide integer types
func widthOf(minor uint8) int {
	return int(minor) + 1
}
