package writer

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/factory"
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/model"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"
)

// TextFileName is the dump written under each timestamp directory.
const TextFileName = "heuristics.txt"

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef, interval time.Duration) (model.Writer, error) {
		if def.Text.RootPath == "" {
			return nil, fmt.Errorf("text writer requires root_path")
		}
		return NewTextWriter(def.Text.RootPath, interval), nil
	})
}

// TextWriter dumps collector statistics as aligned, human readable tables.
type TextWriter struct {
	rootPath string
	interval time.Duration
}

// NewTextWriter creates a new text writer rooted at rootPath.
func NewTextWriter(rootPath string, interval time.Duration) *TextWriter {
	return &TextWriter{rootPath: rootPath, interval: interval}
}

// GetInterval returns the configured snapshot interval for this writer.
func (w *TextWriter) GetInterval() time.Duration {
	return w.interval
}

// Write expects a *heuristics.Collector payload.
func (w *TextWriter) Write(payload interface{}, timestamp string) error {
	c, err := collectorPayload(payload, "TextWriter")
	if err != nil {
		return err
	}

	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create text dump directory: %w", err)
	}
	file, err := os.Create(filepath.Join(dir, TextFileName))
	if err != nil {
		return fmt.Errorf("failed to create text dump: %w", err)
	}
	defer file.Close()

	if err := Dump(file, c); err != nil {
		return fmt.Errorf("failed to write text dump: %w", err)
	}
	return nil
}

// Dump renders the statistics of c to out.
func Dump(out io.Writer, c *heuristics.Collector) error {
	live, dead := c.SampledNodes()
	fmt.Fprintf(out, "live nodes:\t%d\n", live)
	fmt.Fprintf(out, "skipped nodes:\t%d\n", dead)
	fmt.Fprintf(out, "live fraction:\t%.6f\n", c.LiveFraction())
	fmt.Fprintf(out, "max addressable nodes:\t%d\n", c.MaxAddressableNodes())
	fmt.Fprintf(out, "estimated live nodes:\t%.1f\n\n", c.EstimatedLiveNodes())

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tFREQUENCY")
	for _, row := range frequencyRows(c) {
		fmt.Fprintf(tw, "%s\t%d\t%.6f\n", row.Kind, row.ID, row.Frequency)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIRECTION\tLABEL\tTYPE\tAVERAGE\tSAMPLES")
	for _, row := range degreeRows(c) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%d\n", row.Direction, labelName(row.Label), row.RelType, row.Average, row.Samples)
	}
	return tw.Flush()
}

func labelName(label int) string {
	if label == heuristics.AnyLabel {
		return "*"
	}
	return fmt.Sprint(label)
}
