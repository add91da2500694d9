package wire

import (
	"os"
	"strconv"
)

const (
	// DefaultMaxDepth bounds struct/array nesting. Deeper input fails with
	// ErrMaxDepthExceeded instead of growing the stack.
	DefaultMaxDepth = 256

	// DefaultMaxLength bounds a single text or binary payload (16MB).
	DefaultMaxLength = 16 * 1024 * 1024
)

// Config controls optional decoder behaviors. The zero Config decodes
// with the defaults below.
type Config struct {
	// MaxDepth is the deepest aggregate nesting accepted. Values <= 0
	// select DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// MaxLength is the largest text or binary payload accepted, checked
	// before any bytes are copied. Values <= 0 select DefaultMaxLength.
	MaxLength int `yaml:"max_length" json:"max_length"`

	// RequireMagic: when true, an envelope without the CA 11 02 00 header
	// fails with ErrMissingMagic. When false (default), the header is
	// optional and decoding starts at the first byte.
	RequireMagic bool `yaml:"require_magic" json:"require_magic"`

	// StrictStructKeys: when true, a struct repeating a member name fails
	// with ErrDuplicateField. When false (default), the last occurrence
	// wins.
	StrictStructKeys bool `yaml:"strict_struct_keys" json:"strict_struct_keys"`
}

// DefaultConfig returns the configuration used by the package-level
// decode functions.
func DefaultConfig() Config {
	return Config{
		MaxDepth:  DefaultMaxDepth,
		MaxLength: DefaultMaxLength,
	}
}

// Normalized fills unset limits with their defaults
func (c Config) Normalized() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	return c
}

// ConfigFromEnv returns DefaultConfig with overrides from the process
// environment. Unset or unparsable variables leave the default in place.
func ConfigFromEnv() Config {
	c := DefaultConfig()
	if v, err := strconv.Atoi(os.Getenv("FASTRPC_MAX_DEPTH")); err == nil && v > 0 {
		c.MaxDepth = v
	}
	if v, err := strconv.Atoi(os.Getenv("FASTRPC_MAX_LENGTH")); err == nil && v > 0 {
		c.MaxLength = v
	}
	if v := os.Getenv("FASTRPC_REQUIRE_MAGIC"); v == "1" || v == "true" {
		c.RequireMagic = true
	}
	if v := os.Getenv("FASTRPC_STRICT_KEYS"); v == "1" || v == "true" {
		c.StrictStructKeys = true
	}
	return c
}
