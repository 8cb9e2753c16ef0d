package main

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/query"
	"GraphSpectra/internal/snapshot"
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.API.StorageRootPath == "" {
		log.Fatalf("api.storage_root_path is required.")
	}

	// Serve the newest gob snapshot, reloading as the engine writes new ones
	store, err := snapshot.NewStore(cfg.API.StorageRootPath, cfg.Heuristics, cfg.API.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create snapshot store: %v", err)
	}
	watcher, err := snapshot.NewWatcher(store)
	if err != nil {
		log.Fatalf("Failed to watch snapshots: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()

	var history query.HistoryQuerier
	if cfg.API.HistoryFromClickHouse {
		chCfg, ok := cfg.ClickHouse()
		if !ok {
			log.Fatalf("history_from_clickhouse is set but no clickhouse writer is enabled.")
		}
		querier, err := query.NewClickHouseQuerier(context.Background(), *chCfg)
		if err != nil {
			log.Fatalf("Failed to create querier: %v", err)
		}
		defer querier.Close()
		history = querier
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: query.NewHandler(watcher, history).Router(),
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
