package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/xiaobei/mvd/internal/api"
	"github.com/xiaobei/mvd/internal/clock"
	"github.com/xiaobei/mvd/internal/config"
	"github.com/xiaobei/mvd/internal/daemon"
	"github.com/xiaobei/mvd/internal/events"
	"github.com/xiaobei/mvd/internal/logger"
	"github.com/xiaobei/mvd/internal/service"
	"github.com/xiaobei/mvd/internal/storage"
	"github.com/xiaobei/mvd/internal/tequilapi"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Get default data directory
	homeDir, _ := os.UserHomeDir()
	defaultDataDir := filepath.Join(homeDir, ".mvd")

	var dataDir, tequilapiAddr string
	var port int
	flagSet := pflag.NewFlagSet("mvd", pflag.ContinueOnError)
	flagSet.StringVarP(&dataDir, "data", "d", defaultDataDir, "Data directory")
	flagSet.IntVarP(&port, "port", "p", 0, "Web service port (overrides config.yaml)")
	flagSet.StringVar(&tequilapiAddr, "tequilapi", "", "Node daemon REST API address (overrides config.yaml)")
	showVersion := flagSet.Bool("version", false, "Print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Printf("mvd v%s\n", version)
		return nil
	}

	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		return err
	}
	if flagSet.Changed("port") {
		cfg.Port = port
	}
	if flagSet.Changed("tequilapi") {
		cfg.Tequilapi.Address = tequilapiAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logging system
	if err := logger.InitLogManager(dataDir); err != nil {
		return fmt.Errorf("failed to initialize logging system: %w", err)
	}
	appLogger := logger.GetLogManager().AppLogger()
	appLogger.SetMaxSize(cfg.Log.MaxSize)
	appLogger.SetQuiet(cfg.Log.Quiet)

	// Print startup information
	logger.Printf("mvd v%s", version)
	logger.Printf("Data directory: %s", dataDir)
	logger.Printf("Web port: %d", cfg.Port)
	logger.Printf("Node daemon: %s", cfg.Tequilapi.Address)

	// Initialize storage (SQLite)
	store, err := storage.NewSQLiteStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if cfg.Analytics.Keep > 0 {
		if n, err := store.PruneUserEvents(cfg.Analytics.Keep); err != nil {
			logger.Printf("Failed to prune user events: %v", err)
		} else if n > 0 {
			logger.Printf("Pruned %d old user events", n)
		}
	}

	bus := events.NewBus()
	clk := clock.Real()
	client := tequilapi.NewClient(cfg.Tequilapi.Address, cfg.Tequilapi.Timeout)

	proposals := service.NewProposalStore(client, store, service.NewBusAnalytics(store, bus), bus, service.StoreOptions{
		ServiceType:    cfg.Proposals.ServiceType,
		DecimalPart:    cfg.Proposals.DecimalPart,
		DebounceWindow: cfg.Proposals.DebounceWindow,
		Clock:          clk,
	})
	defer proposals.Close()

	monitor := daemon.NewMonitor(client, clk, bus, cfg.Monitor.PollInterval)
	monitor.SetProcessFinder(cfg.Monitor.ProcessName, daemon.FindProcess)

	scheduler := service.NewScheduler(proposals, monitor, clk, cfg.Proposals.RefreshInterval)
	monitor.OnDaemonStatus(scheduler.HandleDaemonStatus)

	// Start background loops
	monitor.Start()
	defer monitor.Stop()
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(store, proposals, scheduler, monitor, bus, cfg.Port, version)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.Handler(),
		// event streams end when a shutdown signal arrives
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Starting Web service: http://0.0.0.0%s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start service: %w", err)
		}
	case <-ctx.Done():
		logger.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Failed to shut down web service: %v", err)
		}
	}
	return nil
}
