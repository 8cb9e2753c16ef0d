package main

import (
	"GraphSpectra/internal/alerter"
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/engine/manager"
	"GraphSpectra/internal/engine/streamaggregator"
	_ "GraphSpectra/internal/engine/writer" // Registers gob, text and clickhouse writers
	"GraphSpectra/internal/factory"
	"GraphSpectra/internal/health"
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/notification"
	"GraphSpectra/internal/query"
	"context"
	"flag"
	"io"
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

	log.Println("Starting gs-engine...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Create writers and the manager
	writers, err := factory.CreateWriters(cfg)
	if err != nil {
		log.Fatalf("Failed to create writers: %v", err)
	}
	mgr, err := manager.NewManager(cfg, writers)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 3. Health server
	var healthServer *health.Server
	if cfg.Health.ListenAddr != "" {
		healthServer = health.NewServer()
		mgr.OnPublish(func(*heuristics.Collector) { healthServer.MarkServing() })
		if err := healthServer.Listen(cfg.Health.ListenAddr); err != nil {
			log.Fatalf("Failed to start health server: %v", err)
		}
	}

	// 4. Alerter
	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		if cfg.SMTP.Host == "" {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		} else {
			alertr, err = alerter.NewAlerter(&cfg.Alerter, mgr, notification.NewEmailNotifier(cfg.SMTP))
			if err != nil {
				log.Fatalf("Failed to create alerter: %v", err)
			}
			alertr.Start()
		}
	}

	// 5. HTTP API over the live statistics
	var history query.HistoryQuerier
	if cfg.API.HistoryFromClickHouse {
		if chCfg, ok := cfg.ClickHouse(); ok {
			querier, err := query.NewClickHouseQuerier(context.Background(), *chCfg)
			if err != nil {
				log.Fatalf("Failed to create history querier: %v", err)
			}
			defer querier.Close()
			history = querier
		} else {
			log.Println("Warning: history_from_clickhouse is set but no clickhouse writer is enabled.")
		}
	}
	var server *http.Server
	if cfg.API.ListenAddr != "" {
		server = &http.Server{
			Addr:    cfg.API.ListenAddr,
			Handler: query.NewHandler(mgr, history).Router(),
		}
		go func() {
			log.Printf("API server starting on %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Could not listen on %s: %v", server.Addr, err)
			}
		}()
	}

	// 6. Start consuming sample events
	streamAgg := streamaggregator.NewStreamAggregator(cfg, mgr)
	if err := streamAgg.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start stream aggregator: %v", err)
	}

	// 7. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping engine...")
	if healthServer != nil {
		healthServer.MarkNotServing()
	}
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("API server forced to shutdown: %v", err)
		}
		cancel()
	}
	streamAgg.Stop()
	if alertr != nil {
		alertr.Stop()
	}
	for _, w := range writers {
		if closer, ok := w.(io.Closer); ok {
			closer.Close()
		}
	}
	if healthServer != nil {
		healthServer.Stop()
	}
	log.Println("Shutdown complete.")
}
