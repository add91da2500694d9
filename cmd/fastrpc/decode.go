package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anirudhraja/fastrpc/internal/config"
	"github.com/anirudhraja/fastrpc/render"
	"github.com/anirudhraja/fastrpc/value"
)

type decodeFlags struct {
	raw          bool
	compression  string
	format       string
	indent       string
	maxDepth     int
	maxLength    int
	requireMagic bool
	strictKeys   bool
	methods      []string
	protoPaths   []string
	known        []string
	failUnknown  bool
}

func decodeCmd(globals *globalFlags) *cobra.Command {
	flags := &decodeFlags{}

	cmd := &cobra.Command{
		Use:   "decode [payload]",
		Short: "Decode a FastRPC payload",
		Long: `Decode a FastRPC payload and print it.

The payload is taken from the first argument, or read from stdin when
no argument is given. It is base64 unless --raw is set.

Examples:
  fastrpc decode yhECAGgEdGVzdGA=
  echo yhECAGgEdGVzdGA= | fastrpc decode --format json
  fastrpc decode --raw --compression zstd < payload.bin
  fastrpc decode --methods api/ --fail-unknown yhECAGgEdGVzdGA=`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, globals, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Input is binary, not base64")
	cmd.Flags().StringVar(&flags.compression, "compression", "", "Input compression: auto, none, zstd, lz4")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: text, json, cbor, cbor-diag")
	cmd.Flags().StringVar(&flags.indent, "indent", "", "JSON indentation step (empty for compact)")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "Maximum aggregate nesting depth")
	cmd.Flags().IntVar(&flags.maxLength, "max-length", 0, "Maximum text, binary or decompressed size in bytes")
	cmd.Flags().BoolVar(&flags.requireMagic, "require-magic", false, "Reject envelopes without the protocol header")
	cmd.Flags().BoolVar(&flags.strictKeys, "strict-keys", false, "Reject structs with duplicate member names")
	cmd.Flags().StringSliceVar(&flags.methods, "methods", nil, "Proto files or directories declaring known methods")
	cmd.Flags().StringSliceVar(&flags.protoPaths, "proto-path", nil, "Directories searched for proto imports")
	cmd.Flags().StringSliceVar(&flags.known, "known", nil, "Additional known method names")
	cmd.Flags().BoolVar(&flags.failUnknown, "fail-unknown", false, "Fail when a call names an unknown method")

	return cmd
}

// apply overrides cfg with every flag set on the command line.
func (f *decodeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("raw") {
		cfg.Input.Encoding = config.EncodingBase64
		if f.raw {
			cfg.Input.Encoding = config.EncodingRaw
		}
	}
	if changed("compression") {
		cfg.Input.Compression = f.compression
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	if changed("indent") {
		cfg.Output.Indent = f.indent
	}
	if changed("max-depth") {
		cfg.Decoder.MaxDepth = f.maxDepth
	}
	if changed("max-length") {
		cfg.Decoder.MaxLength = f.maxLength
	}
	if changed("require-magic") {
		cfg.Decoder.RequireMagic = f.requireMagic
	}
	if changed("strict-keys") {
		cfg.Decoder.StrictStructKeys = f.strictKeys
	}
	cfg.Methods = append(cfg.Methods, f.methods...)
	cfg.ProtoPaths = append(cfg.ProtoPaths, f.protoPaths...)
	cfg.KnownMethods = append(cfg.KnownMethods, f.known...)

	return cfg.Validate()
}

func runDecode(cmd *cobra.Command, globals *globalFlags, flags *decodeFlags, args []string) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return err
	}

	decoder, err := newDecoder(cmd, cfg)
	if err != nil {
		return err
	}

	input, err := readPayload(cmd, args)
	if err != nil {
		return err
	}

	rpc, err := decoder.DecodeTransport(input)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if call, ok := rpc.(value.Call); ok && flags.failUnknown && !decoder.KnownMethod(call.Method) {
		return fmt.Errorf("unknown method %q", call.Method)
	}

	out, err := render.RPC(rpc, cfg.RenderFormat(), cfg.RenderOptions())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// readPayload returns the argument, or all of stdin when there is none.
func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(bytes.TrimSpace(input)) == 0 {
		return nil, fmt.Errorf("no payload: pass one as an argument or on stdin")
	}
	return input, nil
}
