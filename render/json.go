package render

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/anirudhraja/fastrpc/value"
)

// maxExactInteger is the largest integer a JSON number (double) holds exactly
const maxExactInteger = 1 << 53

// ToStructpb converts v into a google.protobuf.Value.
//
// JSON has no integer, binary or datetime types, so: integers beyond
// +-2^53 become decimal strings, binary becomes base64 text, datetimes
// become RFC 3339 text, and non-finite doubles become "NaN",
// "Infinity" or "-Infinity".
func ToStructpb(v value.Value) *structpb.Value {
	switch v.Kind() {
	case value.KindInteger:
		n, _ := v.Int()
		if n > maxExactInteger || n < -maxExactInteger {
			return structpb.NewStringValue(strconv.FormatInt(n, 10))
		}
		return structpb.NewNumberValue(float64(n))
	case value.KindBool:
		b, _ := v.Bool()
		return structpb.NewBoolValue(b)
	case value.KindDouble:
		f, _ := v.Double()
		switch {
		case math.IsNaN(f):
			return structpb.NewStringValue("NaN")
		case math.IsInf(f, 1):
			return structpb.NewStringValue("Infinity")
		case math.IsInf(f, -1):
			return structpb.NewStringValue("-Infinity")
		}
		return structpb.NewNumberValue(f)
	case value.KindText:
		s, _ := v.Text()
		return structpb.NewStringValue(s)
	case value.KindDatetime:
		dt, _ := v.Datetime()
		return structpb.NewStringValue(dt.Time().Format(time.RFC3339))
	case value.KindBinary:
		b, _ := v.Binary()
		return structpb.NewStringValue(base64.StdEncoding.EncodeToString(b))
	case value.KindStruct:
		fields := make(map[string]*structpb.Value, v.Len())
		for _, key := range v.Keys() {
			member, _ := v.Field(key)
			fields[key] = ToStructpb(member)
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields})
	case value.KindArray:
		items := make([]*structpb.Value, v.Len())
		for i := range items {
			item, _ := v.Item(i)
			items[i] = ToStructpb(item)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: items})
	default:
		return structpb.NewNullValue()
	}
}

// RPCToStructpb converts an envelope into a JSON object with a "type"
// member of "call", "success" or "fault".
func RPCToStructpb(rpc value.RPC) (*structpb.Value, error) {
	fields := map[string]*structpb.Value{}
	switch r := rpc.(type) {
	case value.Call:
		fields["type"] = structpb.NewStringValue(string(value.KindCall))
		fields["method"] = structpb.NewStringValue(r.Method)
		fields["argument"] = ToStructpb(r.Argument)
	case value.Success:
		fields["type"] = structpb.NewStringValue(string(value.KindSuccess))
		fields["result"] = ToStructpb(r.Result)
	case value.Fault:
		fields["type"] = structpb.NewStringValue(string(value.KindFault))
		fields["code"] = structpb.NewNumberValue(float64(r.Code))
		fields["message"] = structpb.NewStringValue(r.Message)
	default:
		return nil, fmt.Errorf("unsupported envelope %T", rpc)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}

// JSON renders v as JSON. A non-empty indent produces multi-line output.
func JSON(v value.Value, indent string) ([]byte, error) {
	return marshalJSON(ToStructpb(v), indent)
}

// RPCJSON renders an envelope as JSON.
func RPCJSON(rpc value.RPC, indent string) ([]byte, error) {
	pb, err := RPCToStructpb(rpc)
	if err != nil {
		return nil, err
	}
	return marshalJSON(pb, indent)
}

func marshalJSON(pb *structpb.Value, indent string) ([]byte, error) {
	opts := protojson.MarshalOptions{
		Multiline: indent != "",
		Indent:    indent,
	}
	out, err := opts.Marshal(pb)
	if err != nil {
		return nil, fmt.Errorf("json render: %w", err)
	}
	return out, nil
}
