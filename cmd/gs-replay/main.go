package main

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/probe"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	input := flag.String("input", "", "JSON-lines file holding one sampling pass (required).")
	natsURL := flag.String("nats", "", "NATS URL, overrides probe.nats_url.")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input flag is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *natsURL != "" {
		cfg.Probe.NATSURL = *natsURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Probe, *input); err != nil {
		log.Printf("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

// run reads one recorded pass from input and publishes it. The pass is read
// before connecting, so a bad file never opens a NATS connection.
func run(ctx context.Context, cfg config.ProbeConfig, input string) error {
	// 1. Read the recorded pass
	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	events, err := probe.ReadPass(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}
	log.Printf("Read %d events from %s", len(events), input)

	// 2. Publish it, giving up on interrupt
	pub, err := probe.NewPublisher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer pub.Close()

	if err := pub.PublishPass(events); err != nil {
		return fmt.Errorf("failed to publish pass: %w", err)
	}
	log.Printf("Published pass of %d events to '%s'", len(events), cfg.Subject)
	return nil
}
