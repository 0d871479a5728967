package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/pipeline"
	"github.com/ternarybob/nuntius/internal/services/analysis"
	"github.com/ternarybob/nuntius/internal/services/discovery"
	"github.com/ternarybob/nuntius/internal/services/extractor"
	"github.com/ternarybob/nuntius/internal/storage"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Nuntius version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("nuntius.toml"); err == nil {
			configFiles = append(configFiles, "nuntius.toml")
		} else if _, err := os.Stat("deployments/local/nuntius.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/nuntius.toml")
		}
	}

	// Startup sequence: config (defaults -> files -> env), logger, banner
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Debug().
		Str("storage_driver", config.Storage.Driver).
		Str("extractor_mode", config.Extractor.Mode).
		Str("log_level", config.Logging.Level).
		Msg("Configuration resolved")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, config, logger))
}

// run builds the services and executes one pipeline pass. Split from
// main so the deferred cleanups fire before os.Exit.
func run(ctx context.Context, config *common.Config, logger arbor.ILogger) int {
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open storage")
		return 1
	}
	defer storageManager.Close()

	ext, err := extractor.NewExtractor(config.Extractor, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create extractor")
		return 1
	}
	defer ext.Close()

	orchestrator := pipeline.NewOrchestrator(
		discovery.NewClient(&config.Discovery, logger),
		ext,
		analysis.NewTokenClient(&config.Auth, logger),
		analysis.NewClient(&config.Analysis, logger),
		storageManager,
		logger,
	)

	stats, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Pipeline run failed")
		return 1
	}

	logger.Info().
		Int("persisted", stats.Persisted).
		Int("failed", stats.Failed).
		Msg("Nuntius finished")

	return 0
}
