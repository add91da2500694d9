package render

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/anirudhraja/fastrpc/value"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Datetimes are tag 0 text.
var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339
	opts.TimeTag = cbor.EncTagRequired

	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("render: CBOR encoder initialization failed: " + err.Error())
	}
}

// CBOR encodes v: integers, floats, text, byte strings, maps and arrays
// map one to one, null is CBOR null.
func CBOR(v value.Value) ([]byte, error) {
	out, err := encMode.Marshal(v.Native())
	if err != nil {
		return nil, fmt.Errorf("cbor render: %w", err)
	}
	return out, nil
}

// RPCCBOR encodes an envelope as a map with a "type" member, mirroring
// RPCJSON.
func RPCCBOR(rpc value.RPC) ([]byte, error) {
	var envelope map[string]any
	switch r := rpc.(type) {
	case value.Call:
		envelope = map[string]any{
			"type":     string(value.KindCall),
			"method":   r.Method,
			"argument": r.Argument.Native(),
		}
	case value.Success:
		envelope = map[string]any{
			"type":   string(value.KindSuccess),
			"result": r.Result.Native(),
		}
	case value.Fault:
		envelope = map[string]any{
			"type":    string(value.KindFault),
			"code":    r.Code,
			"message": r.Message,
		}
	default:
		return nil, fmt.Errorf("unsupported envelope %T", rpc)
	}

	out, err := encMode.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("cbor render: %w", err)
	}
	return out, nil
}

// CBORDiagnostic returns the RFC 8949 diagnostic notation of v.
func CBORDiagnostic(v value.Value) (string, error) {
	data, err := CBOR(v)
	if err != nil {
		return "", err
	}
	return cbor.Diagnose(data)
}

// RPCCBORDiagnostic returns the diagnostic notation of an envelope.
func RPCCBORDiagnostic(rpc value.RPC) (string, error) {
	data, err := RPCCBOR(rpc)
	if err != nil {
		return "", err
	}
	return cbor.Diagnose(data)
}
