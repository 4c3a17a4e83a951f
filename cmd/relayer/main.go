// Package main provides the entry point for the relayer proof tool: it
// resolves offchain verification metadata for canonical messages and prints
// the fetched proof bytes.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/smartcontractkit/chainlink-common/pkg/beholder"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crosslane/relayer"
	"github.com/crosslane/relayer/pkg/callcache"
	"github.com/crosslane/relayer/pkg/ccipread"
	"github.com/crosslane/relayer/pkg/evm"
	"github.com/crosslane/relayer/pkg/httpclient"
	"github.com/crosslane/relayer/pkg/monitoring"
	"github.com/crosslane/relayer/protocol"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "relayer <0x-encoded message> [more messages...]",
		Short:        "Resolve and fetch offchain verification proofs for messages",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return run(configFile, args)
		},
	}
	cmd.Flags().String("config", "relayer.toml", "path to config file")
	return cmd
}

// loggerConfig tunes zap for a developer-facing command line tool.
func loggerConfig(level zapcore.Level) func(*zap.Config) {
	return func(config *zap.Config) {
		config.Level = zap.NewAtomicLevelAt(level)
		config.Development = true
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}
}

func run(configFile string, messageHexes []string) error {
	var config relayer.Configuration
	if _, err := toml.DecodeFile(configFile, &config); err != nil {
		return fmt.Errorf("failed to load config %s: %w", configFile, err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	lggr, err := logger.NewWith(loggerConfig(config.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	lggr = logger.Named(logger.Sugared(lggr), "relayer")

	messages, err := parseMessages(messageHexes)
	if err != nil {
		return err
	}

	verifierAddress, err := protocol.NewUnknownAddressFromHex(config.VerifierAddress)
	if err != nil {
		return fmt.Errorf("invalid verifier address %q: %w", config.VerifierAddress, err)
	}
	if verifierAddress.IsEmpty() {
		return fmt.Errorf("verifier_address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mon, err := setupMonitoring(&config)
	if err != nil {
		return fmt.Errorf("failed to initialize monitoring: %w", err)
	}

	chainClient, err := ethclient.DialContext(ctx, config.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", config.RPCEndpoint, err)
	}
	defer chainClient.Close()

	cache, err := createCache(lggr, &config)
	if err != nil {
		return fmt.Errorf("failed to create call cache: %w", err)
	}

	builder, err := ccipread.NewMetadataBuilder(
		lggr,
		evm.NewProvider(lggr, chainClient),
		cache,
		ccipread.NewFetcher(
			lggr,
			httpclient.NewClient(lggr, config.GetRequestInterval(), config.GetRequestTimeout(), config.GetCooldownDuration()),
			mon.Metrics(),
		),
		mon.Metrics(),
		config.GetBuildConcurrency(),
	)
	if err != nil {
		return err
	}

	lggr.Infow("Building offchain proofs",
		"messageCount", len(messages),
		"verifierAddress", verifierAddress.String(),
		"rpcEndpoint", config.RPCEndpoint,
	)

	proofs, err := builder.BuildBatch(ctx, verifierAddress, messages)
	if err != nil {
		lggr.Errorw("Proof build failed", "error", err)
		return err
	}

	for i, proof := range proofs {
		if proof == nil {
			lggr.Infow("No offchain proof for message", "index", i)
			fmt.Println("none")
			continue
		}
		lggr.Infow("Offchain proof fetched", "index", i, "proofLen", len(proof))
		fmt.Println(proof.String())
	}

	return nil
}

func parseMessages(messageHexes []string) ([]protocol.Message, error) {
	messages := make([]protocol.Message, 0, len(messageHexes))
	for _, messageHex := range messageHexes {
		raw, err := hex.DecodeString(strings.TrimPrefix(messageHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("message %q is not valid hex: %w", messageHex, err)
		}

		message, err := protocol.DecodeMessage(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode message %q: %w", messageHex, err)
		}
		messages = append(messages, *message)
	}

	return messages, nil
}

func createCache(lggr logger.Logger, config *relayer.Configuration) (callcache.Cache, error) {
	switch config.Cache.Backend {
	case relayer.CacheBackendMemory:
		return callcache.NewInMemory(lggr), nil
	case relayer.CacheBackendLRU:
		return callcache.NewLRU(config.Cache.GetMaxEntries(), config.Cache.GetExpiry()), nil
	case relayer.CacheBackendRedis:
		return callcache.NewRedis(config.Cache.RedisURL, config.Cache.GetExpiry())
	default:
		return nil, fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
	}
}

func setupMonitoring(config *relayer.Configuration) (relayer.Monitoring, error) {
	if !config.Monitoring.Enabled || config.Monitoring.Type != "beholder" {
		return monitoring.NewNoopRelayerMonitoring(), nil
	}

	beholderConfig := beholder.Config{
		InsecureConnection:       config.Monitoring.Beholder.InsecureConnection,
		CACertFile:               config.Monitoring.Beholder.CACertFile,
		OtelExporterHTTPEndpoint: config.Monitoring.Beholder.OtelExporterHTTPEndpoint,
		OtelExporterGRPCEndpoint: config.Monitoring.Beholder.OtelExporterGRPCEndpoint,
		LogStreamingEnabled:      config.Monitoring.Beholder.LogStreamingEnabled,
		MetricReaderInterval:     time.Second * time.Duration(config.Monitoring.Beholder.MetricReaderInterval),
		TraceSampleRatio:         config.Monitoring.Beholder.TraceSampleRatio,
		TraceBatchTimeout:        time.Second * time.Duration(config.Monitoring.Beholder.TraceBatchTimeout),
	}

	return monitoring.InitMonitoring(beholderConfig, config.PyroscopeURL)
}
