package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anirudhraja/fastrpc"
	"github.com/anirudhraja/fastrpc/internal/config"
	"github.com/anirudhraja/fastrpc/registry"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "fastrpc",
		Short: "Decode FastRPC payloads",
		Long: `fastrpc decodes FastRPC binary payloads.

Payloads are usually base64 text, optionally wrapping a zstd or lz4
frame. The decoded call, response or fault is printed as text, JSON,
CBOR or CBOR diagnostic notation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "",
		"Config file (YAML or JSONC); defaults to $"+config.EnvConfig)
	rootCmd.PersistentFlags().StringVar(&globals.logLevel, "log-level", "",
		"Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		decodeCmd(globals),
		methodsCmd(globals),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig reads the config file named by --config or FASTRPC_CONFIG
// and applies --log-level.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	return cfg, nil
}

// newLogger builds a text logger on stderr at the configured level.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// buildRegistry loads the method catalog named by the config.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg := registry.NewRegistry(cfg.ProtoPaths...)
	for _, path := range cfg.Methods {
		if err := reg.LoadSchema(path); err != nil {
			return nil, fmt.Errorf("loading methods from %s: %w", path, err)
		}
	}
	reg.Register(cfg.KnownMethods...)
	return reg, nil
}

// newDecoder wires a FastRPC decoder from the config.
func newDecoder(cmd *cobra.Command, cfg *config.Config) (*fastrpc.FastRPC, error) {
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("method catalog loaded", "methods", reg.Len())

	return fastrpc.New(
		fastrpc.WithConfig(cfg.Decoder),
		fastrpc.WithTransport(cfg.TransportOptions()),
		fastrpc.WithRegistry(reg),
		fastrpc.WithLogger(logger),
	), nil
}
