// Package main implements the codesearch server: it indexes a directory of
// source code, serves full-text queries over HTTP, and keeps the index fresh
// with periodic incremental rescans.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/codesearch/internal/config"
	"github.com/dshills/codesearch/internal/guard"
	"github.com/dshills/codesearch/internal/linecache"
	"github.com/dshills/codesearch/internal/prescan"
	"github.com/dshills/codesearch/internal/searcher"
	"github.com/dshills/codesearch/internal/server"
	"github.com/dshills/codesearch/internal/syncer"
	"github.com/dshills/codesearch/internal/textindex"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	flagConfig    string
	flagDirectory string
	flagEndpoint  string
	flagInterval  time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codesearch",
	Short: "Live full-text search over a directory of source code",
	Long: `codesearch indexes every line of every file under a directory and serves
snippet queries over HTTP. The index is rebuilt incrementally on a timer, so
results track the directory as it changes.

Examples:
  # Index a tree with defaults
  codesearch --directory ./src

  # Full configuration from a file
  codesearch --config config.yaml

  # File plus overrides
  codesearch --config config.yaml --endpoint 0.0.0.0:8080 --interval 10s`,
	SilenceUsage: true,
	RunE:         run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("codesearch %s (%s build, driver %s, %s)\n",
			version, textindex.BuildMode, textindex.DriverName, runtime.Version())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVarP(&flagDirectory, "directory", "d", "", "directory to index")
	rootCmd.Flags().StringVarP(&flagEndpoint, "endpoint", "e", "", "host:port for the HTTP server")
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 0, "time between rescans (e.g. 30s, 5m)")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges the config file, flag overrides, and defaults.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flagDirectory != "" {
		cfg.ScanSettings.ScanDirectory = flagDirectory
	}
	if flagEndpoint != "" {
		cfg.ScanSettings.Endpoint = flagEndpoint
	}
	if flagInterval != 0 {
		cfg.ScanSettings.RescanInterval = flagInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx, err := textindex.Open(textindex.InMemory)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer func() { _ = idx.Close() }()

	cache := linecache.New()
	g := &guard.Guard{}
	settings := cfg.ScanSettings

	sync := syncer.New(syncer.Config{
		Root:            settings.ScanDirectory,
		ExcludePatterns: settings.ExcludePatterns,
		Workers:         settings.Workers,
	}, idx, cache, g, logger)

	if err := prescan.Run(ctx, settings.PreScanCommands, settings.ScanDirectory, logger); err != nil {
		return fmt.Errorf("pre-scan: %w", err)
	}

	stats, err := sync.Build(ctx)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	logger.Info("initial index built",
		zap.String("directory", settings.ScanDirectory),
		zap.Int("files", stats.Scanned),
		zap.Duration("elapsed", stats.Elapsed),
	)

	search, err := searcher.New(idx, cache, g, logger, searcher.Options{MaxResults: settings.MaxResults})
	if err != nil {
		return err
	}

	srv, err := server.New(search, settings.Endpoint, logger)
	if err != nil {
		return err
	}

	go resyncLoop(ctx, sync, settings, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}
}

// resyncLoop reruns the pre-scan commands and an incremental resync every
// interval until the context is cancelled. A failed pre-scan or resync skips
// that cycle; the next tick retries.
func resyncLoop(ctx context.Context, sync *syncer.Synchronizer, settings config.ScanSettings, logger *zap.Logger) {
	ticker := time.NewTicker(settings.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := prescan.Run(ctx, settings.PreScanCommands, settings.ScanDirectory, logger); err != nil {
				logger.Warn("pre-scan failed, skipping cycle", zap.Error(err))
				continue
			}
			if _, err := sync.Resync(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("resync failed", zap.Error(err))
			}
		}
	}
}
