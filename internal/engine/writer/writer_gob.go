package writer

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/factory"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/snapshot"
	"fmt"
	"log"
	"time"
)

func init() {
	factory.RegisterWriter("gob", func(def config.WriterDef, interval time.Duration) (model.Writer, error) {
		if def.Gob.RootPath == "" {
			return nil, fmt.Errorf("gob writer requires root_path")
		}
		return NewGobWriter(def.Gob.RootPath, interval), nil
	})
}

// GobWriter writes collector snapshots to disk in gob format.
// It implements the model.Writer interface.
type GobWriter struct {
	snapshots *snapshot.Writer
	interval  time.Duration
}

// NewGobWriter creates a new gob writer rooted at rootPath.
func NewGobWriter(rootPath string, interval time.Duration) *GobWriter {
	return &GobWriter{snapshots: snapshot.NewWriter(rootPath), interval: interval}
}

// GetInterval returns the configured snapshot interval for this writer.
func (w *GobWriter) GetInterval() time.Duration {
	return w.interval
}

// Write expects a *heuristics.Collector payload.
func (w *GobWriter) Write(payload interface{}, timestamp string) error {
	c, err := collectorPayload(payload, "GobWriter")
	if err != nil {
		return err
	}
	summary, err := w.snapshots.Write(c, timestamp)
	if err != nil {
		return err
	}
	log.Printf("Wrote gob snapshot %s (%d live nodes, fingerprint %s)", summary.Directory, summary.LiveNodes, summary.Fingerprint)
	return nil
}
