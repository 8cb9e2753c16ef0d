package snapshot

import (
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/heuristics/statistic"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNoSnapshot is returned when no complete snapshot exists.
var ErrNoSnapshot = errors.New("no snapshot found")

// Store reads snapshots written by Writer. Collectors are rebuilt with the
// store's parameters, since snapshots do not carry them.
type Store struct {
	rootPath string
	params   statistic.Parameters
	cache    *lru.Cache[string, *heuristics.Collector]
}

// NewStore creates a store over rootPath caching up to cacheSize decoded snapshots.
func NewStore(rootPath string, params statistic.Parameters, cacheSize int) (*Store, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *heuristics.Collector](max(cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	return &Store{rootPath: rootPath, params: params, cache: cache}, nil
}

// RootPath returns the directory the store reads from.
func (s *Store) RootPath() string {
	return s.rootPath
}

// List returns the names of complete snapshot directories, oldest first. A
// name is a timestamp, optionally followed by a .NNN sequence suffix.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var timestamps []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.rootPath, e.Name(), SummaryFileName)); err != nil {
			continue
		}
		timestamps = append(timestamps, e.Name())
	}
	slices.Sort(timestamps)
	return timestamps, nil
}

// Load returns the collector stored under timestamp.
func (s *Store) Load(timestamp string) (*heuristics.Collector, error) {
	if c, ok := s.cache.Get(timestamp); ok {
		return c, nil
	}
	c, err := ReadFile(filepath.Join(s.rootPath, timestamp, DataFileName), s.params)
	if err != nil {
		return nil, err
	}
	s.cache.Add(timestamp, c)
	return c, nil
}

// LoadLatest returns the newest complete snapshot and its timestamp.
func (s *Store) LoadLatest() (*heuristics.Collector, string, error) {
	timestamps, err := s.List()
	if err != nil {
		return nil, "", err
	}
	if len(timestamps) == 0 {
		return nil, "", ErrNoSnapshot
	}
	latest := timestamps[len(timestamps)-1]
	c, err := s.Load(latest)
	if err != nil {
		return nil, "", err
	}
	return c, latest, nil
}

// Summary reads summary.json of the snapshot under timestamp.
func (s *Store) Summary(timestamp string) (*SummaryData, error) {
	data, err := os.ReadFile(filepath.Join(s.rootPath, timestamp, SummaryFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, timestamp)
		}
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	var summary SummaryData
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &summary, nil
}

// ReadFile decodes a gob snapshot file into a collector built with params.
func ReadFile(path string, params statistic.Parameters) (*heuristics.Collector, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, path)
		}
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	var snap heuristics.Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot file '%s': %w", path, err)
	}
	return heuristics.Restore(&snap, params)
}
