package main

import (
	"GraphSpectra/internal/config"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// unreachable points at a port nothing listens on; run must fail before
// dialing it.
var unreachable = config.ProbeConfig{NATSURL: "nats://127.0.0.1:1", Subject: "graphspectra.test"}

func TestRun_MissingInput(t *testing.T) {
	err := run(context.Background(), unreachable, filepath.Join(t.TempDir(), "missing.jsonl"))
	if err == nil || !strings.Contains(err.Error(), "failed to open input") {
		t.Fatalf("Expected an open error, got %v", err)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pass.jsonl")
	if err := os.WriteFile(path, []byte("{not json\n"), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	err := run(context.Background(), unreachable, path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Fatalf("Expected a parse error, got %v", err)
	}
}
