// Package config loads fastrpc command-line configuration.
//
// Configuration comes from a single optional file named by the --config
// flag or the FASTRPC_CONFIG environment variable. Files ending in .yaml
// or .yml are YAML; .json and .jsonc files are JSON that may carry
// comments and trailing commas. Decoder limits start from the FASTRPC_*
// environment overrides and are then replaced by anything the file sets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/fastrpc/render"
	"github.com/anirudhraja/fastrpc/transport"
	"github.com/anirudhraja/fastrpc/wire"
)

// EnvConfig names the environment variable holding the config file path.
const EnvConfig = "FASTRPC_CONFIG"

// Input encodings.
const (
	EncodingBase64 = "base64"
	EncodingRaw    = "raw"
)

// Config is the complete command-line configuration.
type Config struct {
	// Decoder holds the wire decoder limits and toggles.
	Decoder wire.Config `yaml:"decoder" json:"decoder"`

	// Input describes how payloads arrive.
	Input InputConfig `yaml:"input" json:"input"`

	// Output describes how decoded payloads are printed.
	Output OutputConfig `yaml:"output" json:"output"`

	// LogLevel is one of debug, info, warn, error.
	// Default: warn
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ProtoPaths are directories searched for imported .proto files.
	ProtoPaths []string `yaml:"proto_paths" json:"proto_paths"`

	// Methods are .proto files or directories whose services form the
	// method catalog.
	Methods []string `yaml:"methods" json:"methods"`

	// KnownMethods are plain method names added to the catalog.
	KnownMethods []string `yaml:"known_methods" json:"known_methods"`
}

// InputConfig configures payload unwrapping.
type InputConfig struct {
	// Encoding is base64 (default) or raw.
	Encoding string `yaml:"encoding" json:"encoding"`

	// Compression is auto (default), none, zstd or lz4.
	Compression string `yaml:"compression" json:"compression"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	// Format is text (default), json, cbor or cbor-diag.
	Format string `yaml:"format" json:"format"`

	// Indent is the JSON indentation step; empty for compact output.
	// Default: two spaces
	Indent string `yaml:"indent" json:"indent"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Decoder: wire.ConfigFromEnv(),
		Input: InputConfig{
			Encoding:    EncodingBase64,
			Compression: string(transport.CompressionAuto),
		},
		Output: OutputConfig{
			Format: string(render.FormatText),
			Indent: render.DefaultOptions().Indent,
		},
		LogLevel: "warn",
	}
}

// Load loads the file named by FASTRPC_CONFIG, or returns Default when
// the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. Relative
// proto_paths and methods entries resolve against the file's directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.ProtoPaths = resolveRelative(base, cfg.ProtoPaths)
	cfg.Methods = resolveRelative(base, cfg.Methods)
	return cfg, nil
}

// Parse decodes configuration data over Default. ext selects the syntax:
// ".json" and ".jsonc" are JSONC, anything else is YAML.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveRelative(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(base, p)
		}
	}
	return out
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Input.Encoding != EncodingBase64 && c.Input.Encoding != EncodingRaw {
		errs = append(errs, fmt.Errorf("input.encoding must be one of: [%s %s]", EncodingBase64, EncodingRaw))
	}
	if _, err := transport.ParseCompression(c.Input.Compression); err != nil {
		errs = append(errs, fmt.Errorf("input.compression: %w", err))
	}
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Decoder.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("decoder.max_depth must not be negative"))
	}
	if c.Decoder.MaxLength < 0 {
		errs = append(errs, fmt.Errorf("decoder.max_length must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ParseLevel parses a log level name. The empty string means warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", name)
	}
}

// TransportOptions converts the input section for transport.Unwrap.
func (c *Config) TransportOptions() transport.Options {
	compression, _ := transport.ParseCompression(c.Input.Compression)
	return transport.Options{
		Raw:         c.Input.Encoding == EncodingRaw,
		Compression: compression,
		MaxSize:     c.Decoder.MaxLength,
	}
}

// RenderFormat returns the validated output format.
func (c *Config) RenderFormat() render.Format {
	format, _ := render.ParseFormat(c.Output.Format)
	return format
}

// RenderOptions converts the output section for render.RPC.
func (c *Config) RenderOptions() render.Options {
	return render.Options{Indent: c.Output.Indent}
}
