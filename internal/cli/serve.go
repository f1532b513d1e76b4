package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitsnaps/open-creator/internal/gateway"
	"github.com/bitsnaps/open-creator/internal/interpreter"
	"github.com/bitsnaps/open-creator/internal/metrics"
	"github.com/bitsnaps/open-creator/internal/session"
	"github.com/bitsnaps/open-creator/internal/skills"
	"github.com/bitsnaps/open-creator/internal/storage"
	"github.com/bitsnaps/open-creator/internal/tools"
	"github.com/bitsnaps/open-creator/internal/tools/interptool"
	"github.com/bitsnaps/open-creator/pkg/logger"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interpreter HTTP service",
		Long: `Start the HTTP service exposing the sandbox:

- REST execution endpoints with named, seeded sessions
- websocket output streaming
- execution history, health and Prometheus metrics`,
		Example: `  # Start with the default configuration
  creator serve

  # Bind a specific port
  creator serve --port 8080`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().String("host", "", "host to bind to (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cliCtx := GetCLIContext(cmd)
	if cliCtx == nil {
		return fmt.Errorf("CLI context not initialized")
	}

	cfg := cliCtx.Config
	log := cliCtx.Log()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}

	db, err := cliCtx.GetStorage()
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}

	// The collector samples the manager at scrape time; the manager
	// does not exist yet, so the gauge reads through the variable.
	var manager *session.Manager
	collector := metrics.NewCollector(func() int {
		if manager == nil {
			return 0
		}
		return manager.Count()
	})

	seed := ""
	if cfg.Interpreter.SeedFile != "" {
		data, err := os.ReadFile(cfg.Interpreter.SeedFile)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
		seed = string(data)
	}

	skillStore := skills.NewStore()
	binder := skills.NewBinder(skillStore, logger.Component("skills"))

	manager = session.NewManager(session.Config{
		IdleTimeout: cfg.Sessions.GetIdleTimeout(),
		MaxSessions: cfg.Sessions.MaxSessions,
		Interpreter: interpreterConfig(cfg),
		Seed:        seed,
		Prepare:     binder.Install,
		OnExecution: func(name string, result interpreter.Result) {
			collector.ObserveExecution(result)
			if _, err := db.AppendExecution(name, result.Status, string(result.Fault), result.Stdout, result.Stderr, result.Duration); err != nil {
				logger.Warn().Err(err).Str("session", name).Msg("failed to record execution")
			}
		},
	}, logger.Component("session"))
	defer manager.Close()

	if cfg.Interpreter.WatchSeed && cfg.Interpreter.SeedFile != "" {
		watcher, err := session.WatchSeed(cfg.Interpreter.SeedFile, manager.SetSeed, logger.Component("seed"))
		if err != nil {
			return fmt.Errorf("watch seed file: %w", err)
		}
		defer watcher.Close()
	}

	if cfg.Storage.Retention.Enabled {
		retention := storage.NewRetention(db, cfg.Storage.Retention.Schedule, cfg.Storage.Retention.GetMaxAge(), logger.Component("retention"))
		if err := retention.Start(); err != nil {
			return err
		}
		defer retention.Stop()
	}

	registry := tools.NewRegistry()
	registry.MustRegister(interptool.New(manager))

	srv := gateway.NewServer(cfg, gateway.Deps{
		Sessions: manager,
		DB:       db,
		Tools:    registry,
		Skills:   skillStore,
		Metrics:  collector,
		Version:  Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info().Str("addr", "http://"+cfg.Server.Addr()).Msg("interpreter service started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("signal received, shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return <-errCh
}
