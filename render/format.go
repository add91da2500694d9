package render

import (
	"fmt"

	"github.com/anirudhraja/fastrpc/value"
)

// Format selects an output rendering.
type Format string

const (
	FormatText      Format = "text"
	FormatJSON      Format = "json"
	FormatCBOR      Format = "cbor"
	FormatCBORDiag  Format = "cbor-diag"
	defaultJSONStep        = "  "
)

// ParseFormat parses a format name. The empty string selects text.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatCBOR, FormatCBORDiag:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown output format: %q", name)
	}
}

// Options tunes rendering.
type Options struct {
	// Indent is the JSON indentation step; empty means compact.
	Indent string
}

// DefaultOptions returns pretty-printed JSON settings.
func DefaultOptions() Options {
	return Options{Indent: defaultJSONStep}
}

// RPC renders an envelope in the given format. Text formats end with a
// newline; CBOR output is raw bytes.
func RPC(rpc value.RPC, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatText, "":
		return []byte(RPCText(rpc) + "\n"), nil
	case FormatJSON:
		out, err := RPCJSON(rpc, opts.Indent)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case FormatCBOR:
		return RPCCBOR(rpc)
	case FormatCBORDiag:
		diag, err := RPCCBORDiagnostic(rpc)
		if err != nil {
			return nil, err
		}
		return []byte(diag + "\n"), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}
