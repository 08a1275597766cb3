// Package main implements the position search server with a RESTful API
// over a SQLite, Postgres or in-memory position store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessmatch/cmd/position-server/cli"
	"chessmatch/internal/config"
	"chessmatch/internal/matching"
	"chessmatch/internal/server/http"
	"chessmatch/internal/server/processor"
	"chessmatch/internal/server/service"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	searchWorkers           = 8
	searchQueueSize         = 64
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	// Command-line flags
	var (
		configPath    = flag.String("config", "", "Path to YAML config file")
		apiHost       = flag.String("api-host", "", "API server host (overrides config)")
		apiPort       = flag.Int("api-port", 0, "API server port (overrides config)")
		dev           = flag.Bool("dev", false, "Development mode (relaxed rate limits, WAL)")
		storageDriver = flag.String("storage-driver", "", "Storage driver: sqlite, postgres or memory")
		storagePath   = flag.String("storage-path", "", "Path to SQLite database file")
		storageDSN    = flag.String("storage-dsn", "", "Postgres connection string")
		accessLog     = flag.Bool("access-log", false, "Log every HTTP request")
		pidPath       = flag.String("pid", "", "Optional path to write PID file")
		pidLock       = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	// Validate PID flags
	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over file and environment
	if *apiHost != "" {
		cfg.Server.Host = *apiHost
	}
	if *apiPort != 0 {
		cfg.Server.Port = *apiPort
	}
	if *dev {
		cfg.Server.Dev = true
		cfg.Storage.WAL = true
	}
	if *storageDriver != "" {
		cfg.Storage.Driver = *storageDriver
	}
	if *storagePath != "" {
		cfg.Storage.Path = *storagePath
	}
	if *storageDSN != "" {
		cfg.Storage.DSN = *storageDSN
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Manage PID file if requested
	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Initialize Storage
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := service.OpenStore(initCtx, cfg.Storage)
	initCancel()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// 2. Initialize the Service over the store
	svc, err := service.New(store, service.Config{
		Engine: matching.Config{
			CandidateCap:    cfg.Matching.CandidateCap,
			OverfetchFactor: cfg.Matching.OverfetchFactor,
		},
		DefaultLimit:   cfg.Matching.DefaultLimit,
		MaxLimit:       cfg.Matching.MaxLimit,
		DefaultMinElo:  cfg.Matching.DefaultMinElo,
		DefaultMaxElo:  cfg.Matching.DefaultMaxElo,
		CacheEntries:   cfg.Cache.FENEntries,
		RecordSearches: cfg.SearchLog.Enabled,
	})
	if err != nil {
		store.Close()
		log.Fatalf("Failed to initialize service: %v", err)
	}

	// 3. Initialize the Processor, injecting the service
	proc := processor.New(svc, searchWorkers, searchQueueSize)

	// 4. Initialize the Fiber App/HTTP Handler, injecting processor and service
	app := http.NewFiberApp(proc, svc, http.Options{
		DevMode:   cfg.Server.Dev,
		AccessLog: *accessLog,
	})

	apiAddr := cfg.Addr()

	// Start API server in a goroutine
	go func() {
		log.Printf("Position API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		if cfg.Server.Dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("Storage: %s", service.DescribeStorage(cfg.Storage))
		log.Printf("Search Endpoint: http://%s/api/v1/positions/similar", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting requests first
	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Drain in-flight searches before the store goes away
	if err = proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	if err = svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}
