package wire

import (
	"errors"
	"math"
	"testing"

	"github.com/anirudhraja/fastrpc/value"
)

func TestDecoder_ScalarTypes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected value.Value
	}{
		{"null", nullBytes(), value.Null()},
		{"bool_true", boolBytes(true), value.Bool(true)},
		{"bool_false", boolBytes(false), value.Bool(false)},
		{"bool_ignores_upper_minor_bits", []byte{tagByte(TypeBool, 0x6)}, value.Bool(false)},
		{"int32_width_0", []byte{tagByte(TypeInteger32, 0)}, value.Integer(0)},
		{"int32_width_1", []byte{tagByte(TypeInteger32, 1), 0x2a}, value.Integer(42)},
		{"int32_negative", []byte{tagByte(TypeInteger32, 4), 0xff, 0xff, 0xff, 0xff}, value.Integer(-1)},
		{"int32_min", []byte{tagByte(TypeInteger32, 4), 0x00, 0x00, 0x00, 0x80}, value.Integer(math.MinInt32)},
		{"int32_short_width_not_sign_extended", []byte{tagByte(TypeInteger32, 2), 0xff, 0xff}, value.Integer(65535)},
		{"positive_int_1_byte", intBytes(7), value.Integer(7)},
		{"positive_int_3_bytes", intBytes(0x123456), value.Integer(0x123456)},
		{"positive_int_max", intBytes(math.MaxInt64), value.Integer(math.MaxInt64)},
		{"negative_int", intBytes(-300), value.Integer(-300)},
		{"negative_int_min", intBytes(math.MinInt64), value.Integer(math.MinInt64)},
		{"double", doubleBytes(2.718281828), value.Double(2.718281828)},
		{"double_negative_zero", doubleBytes(math.Copysign(0, -1)), value.Double(math.Copysign(0, -1))},
		{"text", textBytes("Hello, fastrpc!"), value.Text("Hello, fastrpc!")},
		{"text_empty", textBytes(""), value.Text("")},
		{"text_utf8", textBytes("žluťoučký kůň"), value.Text("žluťoučký kůň")},
		{"text_two_byte_length", cat([]byte{tagByte(TypeString, 1), 3, 0}, []byte("abc")), value.Text("abc")},
		{"binary", binaryBytes([]byte{0x00, 0xff, 0x10}), value.Binary([]byte{0x00, 0xff, 0x10})},
		{"binary_not_utf8_checked", binaryBytes([]byte{0xc3, 0x28}), value.Binary([]byte{0xc3, 0x28})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := NewDecoder(test.data)
			actual, err := d.DecodeValue()
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if !actual.Equal(test.expected) {
				t.Errorf("Expected %v (%s), got %v (%s)",
					test.expected.Native(), test.expected.Kind(), actual.Native(), actual.Kind())
			}
			if !d.EOF() {
				t.Errorf("Expected all %d bytes consumed, position %d", len(test.data), d.Position())
			}
		})
	}
}

func TestDecoder_Struct(t *testing.T) {
	data := cat(
		structHeader(3),
		nameBytes("id"), intBytes(1),
		nameBytes("name"), textBytes("John Doe"),
		nameBytes("active"), boolBytes(true),
	)

	actual, used, err := DecodeValue(data, Config{})
	if err != nil {
		t.Fatalf("Failed to decode struct: %v", err)
	}
	if used != len(data) {
		t.Errorf("Expected %d bytes used, got %d", len(data), used)
	}

	expected := value.Struct(map[string]value.Value{
		"id":     value.Integer(1),
		"name":   value.Text("John Doe"),
		"active": value.Bool(true),
	})
	if !actual.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected.Native(), actual.Native())
	}
}

func TestDecoder_StructDuplicateKeys(t *testing.T) {
	data := cat(
		structHeader(2),
		nameBytes("key"), intBytes(1),
		nameBytes("key"), intBytes(2),
	)

	t.Run("last_write_wins", func(t *testing.T) {
		actual, _, err := DecodeValue(data, Config{})
		if err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if actual.Len() != 1 {
			t.Fatalf("Expected 1 member, got %d", actual.Len())
		}
		if got, _ := actual.Field("key"); !got.Equal(value.Integer(2)) {
			t.Errorf("Expected later member to win, got %v", got.Native())
		}
	})

	t.Run("strict", func(t *testing.T) {
		_, _, err := DecodeValue(data, Config{StrictStructKeys: true})
		if !errors.Is(err, ErrDuplicateField) {
			t.Errorf("Expected ErrDuplicateField, got %v", err)
		}
	})
}

func TestDecoder_Array(t *testing.T) {
	data := cat(arrayHeader(4), intBytes(1), textBytes("two"), nullBytes(), doubleBytes(4.5))

	actual, _, err := DecodeValue(data, Config{})
	if err != nil {
		t.Fatalf("Failed to decode array: %v", err)
	}
	expected := value.Array(value.Integer(1), value.Text("two"), value.Null(), value.Double(4.5))
	if !actual.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected.Native(), actual.Native())
	}
}

func TestDecoder_EmptyAggregates(t *testing.T) {
	for name, data := range map[string][]byte{
		"struct": structHeader(0),
		"array":  arrayHeader(0),
	} {
		t.Run(name, func(t *testing.T) {
			actual, _, err := DecodeValue(data, Config{})
			if err != nil {
				t.Fatalf("Failed to decode: %v", err)
			}
			if actual.Len() != 0 || actual.Depth() != 1 {
				t.Errorf("Expected empty aggregate, got %v", actual.Native())
			}
		})
	}
}

func TestDecoder_NestedRoundTrip(t *testing.T) {
	// struct { list: [ struct { leaf: "x" } ] }
	data := cat(
		structHeader(1), nameBytes("list"),
		arrayHeader(1),
		structHeader(1), nameBytes("leaf"), textBytes("x"),
	)

	actual, _, err := DecodeValue(data, Config{})
	if err != nil {
		t.Fatalf("Failed to decode nested value: %v", err)
	}
	if actual.Depth() != 3 {
		t.Errorf("Expected depth 3, got %d", actual.Depth())
	}

	list, _ := actual.Field("list")
	inner, _ := list.Item(0)
	leaf, _ := inner.Field("leaf")
	if s, _ := leaf.Text(); s != "x" {
		t.Errorf("Expected leaf x, got %v", leaf.Native())
	}
}

func TestDecoder_TrailingBytesUntouched(t *testing.T) {
	data := cat(intBytes(5), nullBytes())
	d := NewDecoder(data)
	if _, err := d.DecodeValue(); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if d.Remaining() != 1 {
		t.Errorf("Expected 1 byte remaining, got %d", d.Remaining())
	}
}

func TestDecoder_Datetime(t *testing.T) {
	// 2024-02-29 13:05:09 Thursday, zone +1h, unix 1709208309
	packed := uint64(4) | uint64(9)<<3 | uint64(5)<<9 | uint64(13)<<15 |
		uint64(29)<<20 | uint64(2)<<25 | uint64(2024-1600)<<29
	data := cat(
		[]byte{tagByte(TypeDatetime, 0), 4},
		uintBytes(1709208309, 4),
		uintBytes(packed, 5),
	)

	actual, _, err := DecodeValue(data, Config{})
	if err != nil {
		t.Fatalf("Failed to decode datetime: %v", err)
	}
	dt, ok := actual.Datetime()
	if !ok {
		t.Fatalf("Expected datetime, got %s", actual.Kind())
	}
	expected := value.Datetime{
		Zone: 4, Unix: 1709208309, Year: 2024, Month: 2, Day: 29,
		Hour: 13, Minute: 5, Second: 9, Weekday: 4,
	}
	if dt != expected {
		t.Errorf("Expected %+v, got %+v", expected, dt)
	}
	if dt.Time().Unix() != dt.Unix {
		t.Errorf("Broken-down fields disagree with unix time: %v vs %d", dt.Time(), dt.Unix)
	}
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected error
	}{
		{"empty", []byte{}, ErrTruncatedInput},
		{"unknown_major_0", []byte{0x00}, ErrUnknownTag},
		{"unknown_major_9", []byte{tagByte(9, 0)}, ErrUnknownTag},
		{"envelope_tag_as_value", []byte{tagByte(TypeCall, 0)}, ErrUnknownTag},
		{"int32_width_too_large", []byte{tagByte(TypeInteger32, 5), 1, 2, 3, 4, 5}, ErrUnknownTag},
		{"int32_truncated", []byte{tagByte(TypeInteger32, 4), 1, 2}, ErrTruncatedInput},
		{"wide_int_truncated", []byte{tagByte(TypeIntegerPositive, 7), 1, 2, 3}, ErrTruncatedInput},
		{"double_truncated", []byte{tagByte(TypeDouble, 0), 0, 0, 0}, ErrTruncatedInput},
		{"text_length_truncated", []byte{tagByte(TypeString, 3), 1, 0}, ErrTruncatedInput},
		{"text_payload_truncated", []byte{tagByte(TypeString, 0), 5, 'a', 'b'}, ErrTruncatedInput},
		{"text_invalid_utf8", cat([]byte{tagByte(TypeString, 0), 2}, []byte{0xc3, 0x28}), ErrInvalidEncoding},
		{"binary_truncated", []byte{tagByte(TypeBinary, 0), 4, 0}, ErrTruncatedInput},
		{"huge_length", []byte{tagByte(TypeBinary, 7), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, ErrAllocationTooLarge},
		{"datetime_truncated", []byte{tagByte(TypeDatetime, 0), 0, 0, 0}, ErrTruncatedInput},
		{"struct_count_exceeds_members", cat(structHeader(2), nameBytes("a"), nullBytes()), ErrTruncatedInput},
		{"struct_name_truncated", cat(structHeader(1), []byte{9, 'a'}), ErrTruncatedInput},
		{"struct_name_invalid_utf8", cat(structHeader(1), []byte{1, 0xff}, nullBytes()), ErrInvalidEncoding},
		{"struct_member_value_missing", cat(structHeader(1), nameBytes("a")), ErrTruncatedInput},
		{"array_count_exceeds_items", cat(arrayHeader(3), nullBytes(), nullBytes()), ErrTruncatedInput},
		{"array_bad_item", cat(arrayHeader(2), nullBytes(), []byte{0xff}), ErrUnknownTag},
		{"forged_huge_count", []byte{tagByte(TypeArray, 7), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x0f}, ErrTruncatedInput},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewDecoder(test.data).DecodeValue()
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !errors.Is(err, test.expected) {
				t.Errorf("Expected %v, got %v", test.expected, err)
			}
		})
	}
}

func TestDecoder_TruncatedErrorDetails(t *testing.T) {
	data := []byte{tagByte(TypeString, 0), 5, 'a', 'b'}
	_, err := NewDecoder(data).DecodeValue()

	var truncErr *TruncatedError
	if !errors.As(err, &truncErr) {
		t.Fatalf("Expected *TruncatedError, got %T: %v", err, err)
	}
	if truncErr.Pos != 2 || truncErr.Need != 5 || truncErr.Have != 2 || truncErr.Short() != 3 {
		t.Errorf("Unexpected error details: %+v", truncErr)
	}
}

func TestDecoder_MaxLength(t *testing.T) {
	data := textBytes("too long")
	_, _, err := DecodeValue(data, Config{MaxLength: 4})
	if !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("Expected ErrAllocationTooLarge, got %v", err)
	}

	if _, _, err := DecodeValue(data, Config{MaxLength: 8}); err != nil {
		t.Errorf("Payload at the limit should decode, got %v", err)
	}
}

func TestDecoder_MaxDepth(t *testing.T) {
	t.Run("within_limit", func(t *testing.T) {
		v, _, err := DecodeValue(nested(8), Config{MaxDepth: 8})
		if err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if v.Depth() != 8 {
			t.Errorf("Expected depth 8, got %d", v.Depth())
		}
	})

	t.Run("exceeded", func(t *testing.T) {
		_, _, err := DecodeValue(nested(9), Config{MaxDepth: 8})
		if !errors.Is(err, ErrMaxDepthExceeded) {
			t.Errorf("Expected ErrMaxDepthExceeded, got %v", err)
		}
	})

	t.Run("default_limit", func(t *testing.T) {
		_, _, err := DecodeValue(nested(DefaultMaxDepth+1), Config{})
		if !errors.Is(err, ErrMaxDepthExceeded) {
			t.Errorf("Expected ErrMaxDepthExceeded, got %v", err)
		}
	})

	t.Run("siblings_do_not_accumulate", func(t *testing.T) {
		data := cat(arrayHeader(3), nested(2), nested(2), nested(2))
		if _, _, err := DecodeValue(data, Config{MaxDepth: 3}); err != nil {
			t.Errorf("Sibling aggregates should not add depth, got %v", err)
		}
	})
}

func TestParseTag(t *testing.T) {
	major, minor := ParseTag(Tag(0x68))
	if major != TypeCall || minor != 0 {
		t.Errorf("Expected call/0, got %s/%d", major, minor)
	}
	major, minor = ParseTag(MakeTag(TypeStruct, 3))
	if major != TypeStruct || minor != 3 {
		t.Errorf("Expected struct/3, got %s/%d", major, minor)
	}
	if MakeTag(TypeNull, 0) != 0x60 {
		t.Errorf("Expected null tag 0x60, got 0x%02x", MakeTag(TypeNull, 0))
	}
}
