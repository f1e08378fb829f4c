package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/optfox/internal/advisor"
	"github.com/haskel/optfox/internal/bench"
	"github.com/haskel/optfox/internal/config"
	"github.com/haskel/optfox/internal/logger"
	"github.com/haskel/optfox/internal/predict"
	"github.com/haskel/optfox/internal/predict/model"
	"github.com/haskel/optfox/internal/server"
	"github.com/haskel/optfox/internal/store"
	"github.com/haskel/optfox/internal/toolchain"
	"github.com/haskel/optfox/internal/training"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the optfox server",
	Long:  `Start the optfox advisor server in foreground mode.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)

	// Override from flags if specified
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("optfox starting",
		"version", Version,
		"config", cfgFile,
	)

	// Toolchain and benchmark harness
	clang := toolchain.NewClang(cfg.Toolchain.Clang, cfg.Toolchain.CompileTimeout(), log)
	runner := toolchain.NewProcessRunner(log)
	harness := bench.New(clang, runner, benchConfig(cfg), log)

	// Persistent stores
	dataDir := cfg.Persistence.DataDir
	cache := store.NewCacheStore(dataDir, log)
	dataset := store.NewDatasetStore(dataDir, log)
	models := store.NewModelStore(dataDir, log)

	if err := cache.Load(); err != nil {
		log.Warn("failed to load result cache", "error", err)
	}
	if err := dataset.Load(); err != nil {
		log.Warn("failed to load dataset", "error", err)
	}

	m := model.New()
	if err := models.Load(m); err != nil {
		log.Warn("failed to load model, starting untrained", "error", err)
	}

	trainer := training.New(dataset, models, harness, clang, cfg.Training.SeedDir, log)
	adv := advisor.New(clang, harness, cache, dataset, trainer, predict.New(m), log)

	log.Info("advisor ready",
		"strategy", adv.Strategy(),
		"dataset_size", dataset.Len(),
		"cached_results", cache.Len(),
	)

	// Write PID file if configured
	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	srv := server.New(cfg, adv, cache, dataset, models, log, Version)

	// Signal channels
	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// SIGHUP reloads the persisted model, so a model retrained by
	// another process can be picked up without a restart.
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading model")

				fresh := model.New()
				if err := models.Load(fresh); err != nil {
					log.Error("model reload failed, keeping current model", "error", err)
					continue
				}
				adv.SetModel(fresh)
				log.Info("model reloaded", "strategy", adv.Strategy())
			case <-shutdownDone:
				return
			}
		}
	}()

	// Handle shutdown signals
	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("optfox ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("optfox stopped")
	return nil
}

func benchConfig(cfg *config.Config) bench.Config {
	return bench.Config{
		Runs:            cfg.Benchmark.Runs,
		WarmupRuns:      cfg.Benchmark.WarmupRuns,
		InterRunDelay:   cfg.Benchmark.InterRunDelay(),
		RunTimeout:      cfg.Benchmark.RunTimeout(),
		MaxCPUPercent:   cfg.Benchmark.MaxCPUPercent,
		QuiesceAttempts: cfg.Benchmark.QuiesceAttempts,
		QuiesceDelay:    cfg.Benchmark.QuiesceDelay(),
	}
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", pid)), 0644)
}
