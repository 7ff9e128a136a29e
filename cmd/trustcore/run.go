package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mealshare/trustcore/pkg/cli"
	"mealshare/trustcore/pkg/config"
	"mealshare/trustcore/pkg/safety"
	"mealshare/trustcore/pkg/server"
	"mealshare/trustcore/pkg/telemetry/health"
	"mealshare/trustcore/pkg/telemetry/logging"
	"mealshare/trustcore/pkg/telemetry/metrics"
	"mealshare/trustcore/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the trust core HTTP sidecar",
	Long: `Start the trust core HTTP sidecar with the specified configuration.

The sidecar serves content validation and public location endpoints. The
prohibited-term dictionary is loaded at startup; if safety.watch is set it
is reloaded when the file changes, and if safety.reload_schedule is set it
is reloaded on that cron schedule. SIGHUP triggers an immediate reload. A
failed reload keeps the previous terms in service.

Examples:
  # Start with defaults (built-in dictionary, 127.0.0.1:8090)
  trustcore run

  # Start with custom config
  trustcore run --config /etc/trustcore/config.yaml

  # Override listen address
  trustcore run --listen 0.0.0.0:8090

  # Validate config and dictionary without starting the server
  trustcore run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and dictionary without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" || runFlags.logLevel != "" {
		if runFlags.listenAddress != "" {
			cfg.Server.ListenAddress = runFlags.listenAddress
		}
		if runFlags.logLevel != "" {
			cfg.Telemetry.Logging.Level = runFlags.logLevel
		}
		if err := config.Validate(cfg); err != nil {
			return cli.WrapConfigError(err)
		}
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    stderr(cmd),
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	w := stdout(cmd)
	source := cfg.Safety.Source()
	ts, err := source.Build()
	if err != nil {
		return cli.NewConfigError("safety.dictionary_path", err.Error())
	}

	if runFlags.dryRun {
		fmt.Fprintln(w, "✓ Configuration valid")
		fmt.Fprintf(w, "✓ Dictionary loaded (%d terms, %s matcher)\n", ts.Len(), ts.Matcher())
		return nil
	}

	parent := context.Background()
	if cmd != nil && cmd.Context() != nil {
		parent = cmd.Context()
	}
	ctx, stop := cli.SignalContext(parent)
	defer stop()

	fmt.Fprintf(w, "Trustcore v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(w, "✓ Configuration loaded from %s\n", cfgFile)
	}
	fmt.Fprintf(w, "✓ Dictionary loaded (%d terms, %s matcher)\n", ts.Len(), ts.Matcher())

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	collector.SetDictionaryTerms(ts.Len())

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		if err := tracer.ShutdownWithTimeout(); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	store := safety.NewStore(ts)
	reloader := safety.NewReloader(source, store, collector, logger.Slog())

	checker := health.New(0)
	checker.RegisterCheck("termset", health.TermSetCheck(store))
	if cfg.Safety.DictionaryPath != "" {
		checker.RegisterCheck("dictionary", health.DictionaryFileCheck(cfg.Safety.DictionaryPath))
	}

	// Background goroutines exit once ctx is done.
	var g errgroup.Group
	defer func() {
		stop()
		_ = g.Wait()
	}()

	if cfg.Safety.Watch {
		watcher, err := safety.NewFileWatcher(cfg.Safety.DictionaryPath, cfg.Safety.DebounceInterval, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		g.Go(func() error {
			defer watcher.Stop()
			if err := watcher.Watch(ctx, reloader.Reload); err != nil {
				logger.Error("dictionary watcher failed", "error", err)
				return err
			}
			return nil
		})
		fmt.Fprintf(w, "✓ Watching %s\n", cfg.Safety.DictionaryPath)
	}

	if cfg.Safety.ReloadSchedule != "" {
		scheduler, err := safety.NewReloadScheduler(cfg.Safety.ReloadSchedule, reloader.Reload, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			logger.Debug("dictionary reload scheduled", "next_run", next)
		}
	}

	hup := cli.ReloadSignal()
	defer signal.Stop(hup)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				logger.Info("reload requested by signal")
				_ = reloader.Reload()
			}
		}
	})

	srv, err := server.NewServer(cfg, server.Dependencies{
		Store:     store,
		Checker:   checker,
		Collector: collector,
		Tracer:    tracer,
		Logger:    logger,
		Version:   health.NewVersionInfo(Version, GitCommit, BuildDate),
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintf(w, "✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(w, "✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(w, "✓ Server stopped")
	return nil
}
