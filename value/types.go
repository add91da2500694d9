// Package value defines the in-memory tree a FastRPC payload decodes into.
//
// A Value is a closed tagged union. Values are immutable once built:
// constructors copy the slices and maps they are given and accessors hand
// out copies, so a decoded tree never aliases the wire buffer.
package value

import (
	"bytes"
	"math"
	"sort"
	"time"
)

// Kind identifies the variant held by a Value
type Kind string

const (
	KindNull     Kind = "null"
	KindInteger  Kind = "integer"
	KindBool     Kind = "bool"
	KindDouble   Kind = "double"
	KindText     Kind = "text"
	KindDatetime Kind = "datetime"
	KindBinary   Kind = "binary"
	KindStruct   Kind = "struct"
	KindArray    Kind = "array"
)

// Value is a decoded FastRPC value. The zero Value is Null.
type Value struct {
	kind   Kind
	num    int64
	flag   bool
	dbl    float64
	text   string
	bin    []byte
	dt     Datetime
	fields map[string]Value
	items  []Value
}

// Datetime is a FastRPC date/time value. The broken-down fields are what
// the wire carries; Unix is the sender's timestamp, -1 when it did not fit.
type Datetime struct {
	Zone    int   `json:"zone"`    // UTC offset in quarter hours, east positive
	Unix    int64 `json:"unix"`    // seconds since the epoch
	Year    int   `json:"year"`    // full year, e.g. 2024
	Month   int   `json:"month"`   // 1-12
	Day     int   `json:"day"`     // 1-31
	Hour    int   `json:"hour"`    // 0-23
	Minute  int   `json:"minute"`  // 0-59
	Second  int   `json:"second"`  // 0-59 (60 during a leap second)
	Weekday int   `json:"weekday"` // 0 = Sunday
}

// Time returns the datetime as a time.Time in its own fixed zone.
func (d Datetime) Time() time.Time {
	offset := d.Zone * 15 * 60
	loc := time.UTC
	if offset != 0 {
		loc = time.FixedZone("", offset)
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, loc)
}

// ===== CONSTRUCTORS =====

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Integer returns an integer value.
func Integer(v int64) Value { return Value{kind: KindInteger, num: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, flag: v} }

// Double returns a double value.
func Double(v float64) Value { return Value{kind: KindDouble, dbl: v} }

// Text returns a text value.
func Text(v string) Value { return Value{kind: KindText, text: v} }

// DatetimeOf returns a datetime value.
func DatetimeOf(v Datetime) Value { return Value{kind: KindDatetime, dt: v} }

// Binary returns a binary value holding a copy of v.
func Binary(v []byte) Value {
	return Value{kind: KindBinary, bin: append([]byte{}, v...)}
}

// Struct returns a struct value holding a copy of fields.
func Struct(fields map[string]Value) Value {
	copied := make(map[string]Value, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Value{kind: KindStruct, fields: copied}
}

// Array returns an array value holding a copy of items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value{}, items...)}
}

// ===== ACCESSORS =====

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) { return v.num, v.kind == KindInteger }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Double returns the double payload.
func (v Value) Double() (float64, bool) { return v.dbl, v.kind == KindDouble }

// Text returns the text payload.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

// Datetime returns the datetime payload.
func (v Value) Datetime() (Datetime, bool) { return v.dt, v.kind == KindDatetime }

// Binary returns a copy of the binary payload.
func (v Value) Binary() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return append([]byte{}, v.bin...), true
}

// Len returns the number of struct fields or array items, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindStruct:
		return len(v.fields)
	case KindArray:
		return len(v.items)
	default:
		return 0
	}
}

// Field looks up a struct member by name.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindStruct {
		return Value{}, false
	}
	f, ok := v.fields[name]
	return f, ok
}

// Keys returns the struct member names in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindStruct {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the struct members.
func (v Value) Fields() map[string]Value {
	if v.kind != KindStruct {
		return nil
	}
	copied := make(map[string]Value, len(v.fields))
	for k, f := range v.fields {
		copied[k] = f
	}
	return copied
}

// Item returns the i-th array element.
func (v Value) Item(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Items returns a copy of the array elements.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return append([]Value{}, v.items...)
}

// Depth returns the aggregate nesting depth: 0 for scalars, 1 for a flat
// struct or array, and so on.
func (v Value) Depth() int {
	deepest := 0
	switch v.kind {
	case KindStruct:
		for _, f := range v.fields {
			deepest = max(deepest, f.Depth())
		}
	case KindArray:
		for _, item := range v.items {
			deepest = max(deepest, item.Depth())
		}
	default:
		return 0
	}
	return deepest + 1
}

// Equal reports whether v and other hold the same tree. Doubles compare by
// bit pattern, so NaN equals an identical NaN.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindInteger:
		return v.num == other.num
	case KindBool:
		return v.flag == other.flag
	case KindDouble:
		return math.Float64bits(v.dbl) == math.Float64bits(other.dbl)
	case KindText:
		return v.text == other.text
	case KindDatetime:
		return v.dt == other.dt
	case KindBinary:
		return bytes.Equal(v.bin, other.bin)
	case KindStruct:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for k, f := range v.fields {
			o, ok := other.fields[k]
			if !ok || !f.Equal(o) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Native converts v into plain Go values: int64, bool, float64, string,
// []byte, time.Time, map[string]any, []any or nil.
func (v Value) Native() any {
	switch v.Kind() {
	case KindInteger:
		return v.num
	case KindBool:
		return v.flag
	case KindDouble:
		return v.dbl
	case KindText:
		return v.text
	case KindDatetime:
		return v.dt.Time()
	case KindBinary:
		return append([]byte{}, v.bin...)
	case KindStruct:
		out := make(map[string]any, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.Native()
		}
		return out
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}
		return out
	default:
		return nil
	}
}
