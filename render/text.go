// Package render turns decoded FastRPC trees into text, JSON or CBOR.
package render

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/anirudhraja/fastrpc/value"
)

// Text renders v in the compact debugging form:
// structs as {key : value, ...} with sorted keys, arrays as [a, b],
// quoted strings, and null.
func Text(v value.Value) string {
	var sb strings.Builder
	writeText(&sb, v)
	return sb.String()
}

// RPCText renders an envelope as Call("method", arg), Success(result)
// or Fault(code, "message").
func RPCText(rpc value.RPC) string {
	var sb strings.Builder
	switch r := rpc.(type) {
	case value.Call:
		sb.WriteString("Call(")
		sb.WriteString(strconv.Quote(r.Method))
		sb.WriteString(", ")
		writeText(&sb, r.Argument)
		sb.WriteString(")")
	case value.Success:
		sb.WriteString("Success(")
		writeText(&sb, r.Result)
		sb.WriteString(")")
	case value.Fault:
		sb.WriteString("Fault(")
		sb.WriteString(strconv.FormatInt(int64(r.Code), 10))
		sb.WriteString(", ")
		sb.WriteString(strconv.Quote(r.Message))
		sb.WriteString(")")
	}
	return sb.String()
}

func writeText(sb *strings.Builder, v value.Value) {
	switch v.Kind() {
	case value.KindInteger:
		n, _ := v.Int()
		sb.WriteString(strconv.FormatInt(n, 10))
	case value.KindBool:
		b, _ := v.Bool()
		sb.WriteString(strconv.FormatBool(b))
	case value.KindDouble:
		f, _ := v.Double()
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case value.KindText:
		s, _ := v.Text()
		sb.WriteString(strconv.Quote(s))
	case value.KindDatetime:
		dt, _ := v.Datetime()
		sb.WriteString(dt.Time().Format(time.RFC3339))
	case value.KindBinary:
		b, _ := v.Binary()
		sb.WriteString(`b"`)
		sb.WriteString(base64.StdEncoding.EncodeToString(b))
		sb.WriteString(`"`)
	case value.KindStruct:
		sb.WriteString("{")
		for i, key := range v.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			member, _ := v.Field(key)
			sb.WriteString(key)
			sb.WriteString(" : ")
			writeText(sb, member)
		}
		sb.WriteString("}")
	case value.KindArray:
		sb.WriteString("[")
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			item, _ := v.Item(i)
			writeText(sb, item)
		}
		sb.WriteString("]")
	default:
		sb.WriteString("null")
	}
}
