package snapshot

import (
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/pkg/retry"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// TimestampLayout names snapshot directories; lexical order is chronological.
	TimestampLayout = "2006-01-02_15-04-05"

	DataFileName    = "heuristics.gob"
	SummaryFileName = "summary.json"
)

// SummaryData holds the metadata for a snapshot.
type SummaryData struct {
	SnapshotID          string  `json:"snapshot_id"`
	Directory           string  `json:"directory"`
	Timestamp           string  `json:"timestamp"`
	Labels              int     `json:"labels"`
	RelationshipTypes   int     `json:"relationship_types"`
	LiveNodes           int64   `json:"live_nodes"`
	SkippedNodes        int64   `json:"skipped_nodes"`
	LiveFraction        float64 `json:"live_fraction"`
	MaxAddressableNodes int64   `json:"max_addressable_nodes"`
	Fingerprint         string  `json:"fingerprint"`
}

// Writer handles writing snapshot data to disk.
type Writer struct {
	rootPath string
	policy   retry.Policy
}

// NewWriter creates a new snapshot writer rooted at rootPath.
func NewWriter(rootPath string) *Writer {
	return &Writer{rootPath: rootPath, policy: retry.DefaultPolicy()}
}

// Write serializes a collector's statistics under <root>/<timestamp>/.
// An existing snapshot is never overwritten: a second write with the same
// timestamp goes to <timestamp>.001, then .002 and so on, which still sort
// after the first. The data file is written to a temporary name and renamed
// into place, so a reader never sees a partial file; summary.json is written
// last and marks the snapshot complete.
func (w *Writer) Write(c *heuristics.Collector, timestamp string) (*SummaryData, error) {
	// 1. Reserve a fresh snapshot directory
	snapshotDir, err := w.reserveDir(timestamp)
	if err != nil {
		return nil, err
	}

	// 2. Write the gob data file
	dataPath := filepath.Join(snapshotDir, DataFileName)
	tmpPath := dataPath + ".tmp"
	if err := writeGob(tmpPath, c.Snapshot()); err != nil {
		return nil, err
	}
	err = retry.Do(context.Background(), w.policy, func(int) error {
		return os.Rename(tmpPath, dataPath)
	})
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to move snapshot file into place: %w", err)
	}

	// 3. Write summary file
	live, dead := c.SampledNodes()
	summary := &SummaryData{
		SnapshotID:          uuid.NewString(),
		Directory:           filepath.Base(snapshotDir),
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		Labels:              len(c.Labels()),
		RelationshipTypes:   len(c.RelationshipTypes()),
		LiveNodes:           live,
		SkippedNodes:        dead,
		LiveFraction:        c.LiveFraction(),
		MaxAddressableNodes: c.MaxAddressableNodes(),
		Fingerprint:         strconv.FormatUint(c.Fingerprint(), 16),
	}
	summaryFile, err := os.Create(filepath.Join(snapshotDir, SummaryFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return nil, fmt.Errorf("failed to encode summary to json: %w", err)
	}

	return summary, nil
}

// maxSameTimestamp bounds how many snapshots may share one timestamp.
const maxSameTimestamp = 999

// reserveDir creates the directory for timestamp, or the first free
// numbered variant of it. os.Mkdir fails on an existing directory, so two
// writers never share one.
func (w *Writer) reserveDir(timestamp string) (string, error) {
	if err := os.MkdirAll(w.rootPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot root: %w", err)
	}
	name := timestamp
	for n := 1; ; n++ {
		dir := filepath.Join(w.rootPath, name)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		if n > maxSameTimestamp {
			return "", fmt.Errorf("too many snapshots for timestamp %s", timestamp)
		}
		name = fmt.Sprintf("%s.%03d", timestamp, n)
	}
}

func writeGob(path string, snap *heuristics.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", path, err)
	}
	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode snapshot to gob for file '%s': %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file '%s': %w", path, err)
	}
	return nil
}
