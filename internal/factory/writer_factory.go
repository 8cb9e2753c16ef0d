package factory

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/model"
	"fmt"
	"log"
	"slices"
	"time"
)

// WriterFactory builds a writer from its definition. interval is the parsed
// snapshot_interval of def.
type WriterFactory func(def config.WriterDef, interval time.Duration) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// WriterTypes returns the registered writer type names, sorted.
func WriterTypes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CreateWriters creates a writer for every enabled definition in cfg.
func CreateWriters(cfg *config.Config) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		log.Printf("Creating writer of type '%s'\n", def.Type)

		factory, ok := registry[def.Type]
		if !ok {
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		interval, err := time.ParseDuration(def.SnapshotInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot_interval for writer '%s': %w", def.Type, err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("snapshot_interval for writer '%s' must be positive", def.Type)
		}

		writer, err := factory(def, interval)
		if err != nil {
			return nil, fmt.Errorf("error creating writer type '%s': %w", def.Type, err)
		}
		writers = append(writers, writer)
	}

	return writers, nil
}
