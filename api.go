// Package fastrpc decodes FastRPC payloads: the tag-prefixed binary value
// format, its call/success/fault envelopes, and the base64 text form the
// bytes usually travel in.
package fastrpc

import (
	"io"
	"log/slog"

	"github.com/anirudhraja/fastrpc/registry"
	"github.com/anirudhraja/fastrpc/transport"
	"github.com/anirudhraja/fastrpc/value"
	"github.com/anirudhraja/fastrpc/wire"
)

// ===== DECODER API =====

// FastRPC decodes envelopes with a fixed set of limits and an optional
// method catalog. It is safe for concurrent use once built.
type FastRPC struct {
	cfg       wire.Config
	transport transport.Options
	registry  *registry.Registry
	logger    *slog.Logger
}

// Option configures a FastRPC instance
type Option func(*FastRPC)

// WithConfig sets the wire decoder limits and toggles
func WithConfig(cfg wire.Config) Option {
	return func(f *FastRPC) { f.cfg = cfg }
}

// WithTransport sets how DecodeTransport unwraps its input
func WithTransport(opts transport.Options) Option {
	return func(f *FastRPC) { f.transport = opts }
}

// WithRegistry sets the method catalog calls are checked against
func WithRegistry(r *registry.Registry) Option {
	return func(f *FastRPC) {
		if r != nil {
			f.registry = r
		}
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(f *FastRPC) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a new FastRPC instance
func New(opts ...Option) *FastRPC {
	f := &FastRPC{
		cfg:      wire.DefaultConfig(),
		registry: registry.NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.cfg = f.cfg.Normalized()
	if f.transport.MaxSize <= 0 {
		f.transport.MaxSize = f.cfg.MaxLength
	}
	return f
}

// Decode decodes raw wire bytes into an envelope
func (f *FastRPC) Decode(data []byte) (value.RPC, error) {
	rpc, err := wire.DecodeWithConfig(data, f.cfg)
	if err != nil {
		f.logger.Debug("decode failed", "bytes", len(data), "error", err)
		return nil, err
	}
	f.observe(rpc, len(data))
	return rpc, nil
}

// DecodeBase64 decodes a base64 text payload into an envelope
func (f *FastRPC) DecodeBase64(input []byte) (value.RPC, error) {
	return f.unwrapAndDecode(input, transport.Options{MaxSize: f.transport.MaxSize})
}

// DecodeTransport unwraps input per the WithTransport options
// (base64 or raw, then optional decompression) and decodes the envelope
func (f *FastRPC) DecodeTransport(input []byte) (value.RPC, error) {
	return f.unwrapAndDecode(input, f.transport)
}

func (f *FastRPC) unwrapAndDecode(input []byte, opts transport.Options) (value.RPC, error) {
	data, err := transport.Unwrap(input, opts)
	if err != nil {
		f.logger.Debug("unwrap failed", "bytes", len(input), "error", err)
		return nil, err
	}
	return f.Decode(data)
}

// DecodeValue decodes a single bare value, reporting the bytes consumed
func (f *FastRPC) DecodeValue(data []byte) (value.Value, int, error) {
	return wire.DecodeValue(data, f.cfg)
}

func (f *FastRPC) observe(rpc value.RPC, size int) {
	switch r := rpc.(type) {
	case value.Call:
		f.logger.Debug("decoded envelope", "kind", r.RPCKind(), "method", r.Method, "bytes", size)
		if f.registry.Len() > 0 && !f.registry.HasMethod(r.Method) {
			f.logger.Warn("call to unknown method", "method", r.Method)
		}
	case value.Fault:
		f.logger.Debug("decoded envelope", "kind", r.RPCKind(), "code", r.Code, "bytes", size)
	default:
		f.logger.Debug("decoded envelope", "kind", rpc.RPCKind(), "bytes", size)
	}
}

// ===== REGISTRY ACCESS =====

// LoadMethods adds the services declared in .proto files or directories
func (f *FastRPC) LoadMethods(paths ...string) error {
	for _, path := range paths {
		if err := f.registry.LoadSchema(path); err != nil {
			return err
		}
	}
	return nil
}

// RegisterMethods adds plain method names to the catalog
func (f *FastRPC) RegisterMethods(names ...string) { f.registry.Register(names...) }

// KnownMethod reports whether a call to name would pass the catalog check.
// With an empty catalog every method is known.
func (f *FastRPC) KnownMethod(name string) bool {
	return f.registry.Len() == 0 || f.registry.HasMethod(name)
}

func (f *FastRPC) GetRegistry() *registry.Registry { return f.registry }
func (f *FastRPC) Config() wire.Config              { return f.cfg }
func (f *FastRPC) ListMethods() []string            { return f.registry.ListMethods() }

// ===== PACKAGE-LEVEL HELPERS =====

// Decode decodes raw wire bytes with the default limits
func Decode(data []byte) (value.RPC, error) {
	return wire.Decode(data)
}

// DecodeBase64 decodes a base64 payload with the default limits
func DecodeBase64(input string) (value.RPC, error) {
	return New().DecodeBase64([]byte(input))
}
