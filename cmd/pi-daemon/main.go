package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andrescamacho/eve-pi-go/internal/adapters/esi"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/grpc"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/logging"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/metrics"
	"github.com/andrescamacho/eve-pi-go/internal/adapters/persistence"
	"github.com/andrescamacho/eve-pi-go/internal/application/colonysync"
	"github.com/andrescamacho/eve-pi-go/internal/application/common"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/config"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/database"
	"github.com/andrescamacho/eve-pi-go/internal/infrastructure/pidfile"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	fmt.Printf("PI Daemon v%s\n", grpc.Version)
	fmt.Println("=================")

	fmt.Println("Loading configuration...")
	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if pid, running := pf.Running(); running {
			log.Fatalf("Another daemon is already running (pid %d)", pid)
		}
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Database connected")

	// 2. Logging
	console := logging.NewConsoleLogger(os.Stdout, cfg.Logging.Format, cfg.Logging.Level)
	var logger common.Logger = console
	if cfg.Logging.PersistSyncLogs {
		sink := logging.NewSyncLogSink(persistence.NewGormSyncLogRepository(db, nil), common.LevelInfo, cfg.Logging.SyncLogBuffer)
		defer sink.Close()
		logger = logging.NewMultiLogger(console, sink)
		fmt.Println("Sync logs persisted to database")
	}
	ctx = common.WithLogger(ctx, logger)

	// 3. Metrics
	var (
		apiMetrics  esi.MetricsRecorder
		syncMetrics colonysync.MetricsRecorder
	)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		apiCollector := metrics.NewAPIMetricsCollector()
		if err := apiCollector.Register(); err != nil {
			return fmt.Errorf("failed to register API metrics: %w", err)
		}
		syncCollector := metrics.NewSyncMetricsCollector()
		if err := syncCollector.Register(); err != nil {
			return fmt.Errorf("failed to register sync metrics: %w", err)
		}
		apiMetrics, syncMetrics = apiCollector, syncCollector

		server := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		fmt.Printf("Metrics served on %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. ESI client
	esiClient := esi.NewClient(esi.Config{
		BaseURL:        cfg.ESI.BaseURL,
		UserAgent:      cfg.ESI.UserAgent,
		Timeout:        cfg.ESI.Timeout,
		RequestsPerSec: cfg.ESI.RateLimit.Requests,
		Burst:          cfg.ESI.RateLimit.Burst,
		MaxRetries:     cfg.ESI.Retry.MaxAttempts,
		BackoffBase:    cfg.ESI.Retry.BackoffBase,
		MaxFailures:    cfg.ESI.CircuitBreaker.MaxFailures,
		Cooldown:       cfg.ESI.CircuitBreaker.Cooldown,
	}, apiMetrics, nil)
	fmt.Printf("ESI client initialized (%s)\n", cfg.ESI.BaseURL)

	// 5. Sync runner
	runner := colonysync.NewColonySyncRunner(
		persistence.NewGormCharacterRepository(db, nil),
		esiClient,
		persistence.NewGormColonyRepository(db),
		syncMetrics,
		nil, // nil = use RealClock
		colonysync.Config{
			Interval:          cfg.Sync.Interval,
			PlanetConcurrency: cfg.Sync.PlanetConcurrency,
			FetchTimeout:      cfg.Sync.FetchTimeout,
			RunOnStart:        cfg.Sync.RunOnStart,
		},
	)

	// 6. Control plane
	socketPath := cfg.Daemon.SocketPath
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	daemonServer, err := grpc.NewDaemonServer(runner, socketPath, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}
	fmt.Printf("Control plane listening on: %s\n", socketPath)

	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		runner.Run(ctx)
	}()

	fmt.Println("\n✓ Daemon is ready")
	fmt.Println("Press Ctrl+C to stop")

	// Serve blocks until ctx is cancelled
	serveErr := daemonServer.Serve(ctx)
	stop()

	select {
	case <-runnerDone:
	case <-time.After(cfg.Daemon.ShutdownTimeout):
		fmt.Println("Sync runner did not stop within the shutdown timeout")
	}

	if serveErr != nil {
		return fmt.Errorf("daemon server error: %w", serveErr)
	}
	fmt.Println("\nDaemon stopped")
	return nil
}
