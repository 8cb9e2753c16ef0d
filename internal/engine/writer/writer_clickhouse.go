package writer

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/factory"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/pkg/retry"
	"GraphSpectra/internal/snapshot"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

var createTableStatements = []string{`
CREATE TABLE IF NOT EXISTS heuristics_frequency (
    Timestamp DateTime,
    Kind      LowCardinality(String),
    ID        Int64,
    Frequency Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Kind, ID, Timestamp);
`, `
CREATE TABLE IF NOT EXISTS heuristics_degree (
    Timestamp DateTime,
    Label     Int64,
    RelType   Int64,
    Direction LowCardinality(String),
    Average   Float64,
    Samples   Int64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Label, RelType, Direction, Timestamp);
`, `
CREATE TABLE IF NOT EXISTS heuristics_liveness (
    Timestamp    DateTime,
    LiveNodes    Int64,
    SkippedNodes Int64,
    LiveFraction Float64,
    MaxNodes     Int64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY Timestamp;
`}

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef, interval time.Duration) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse, interval)
	})
}

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewClickHouseWriter connects to ClickHouse and ensures the tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration) (*ClickHouseWriter, error) {
	conn, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range createTableStatements {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn, interval: interval}, nil
}

// Connect opens a ClickHouse connection, retrying the initial ping.
func Connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, retry.DefaultPolicy(), func(attempt int) error {
		if err := conn.Ping(ctx); err != nil {
			log.Printf("Warning: clickhouse ping attempt %d failed: %v", attempt, err)
			return err
		}
		return nil
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// GetInterval returns the configured snapshot interval for this writer.
func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

// Write inserts frequencies, degree buckets and liveness of a
// *heuristics.Collector payload.
func (w *ClickHouseWriter) Write(payload interface{}, timestamp string) error {
	c, err := collectorPayload(payload, "ClickHouseWriter")
	if err != nil {
		return err
	}
	ctx := context.Background()
	snapshotTime, err := time.ParseInLocation(snapshot.TimestampLayout, timestamp, time.Local)
	if err != nil {
		return fmt.Errorf("invalid snapshot timestamp '%s': %w", timestamp, err)
	}

	// 1. Frequencies
	freqs := frequencyRows(c)
	if len(freqs) > 0 {
		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO heuristics_frequency")
		if err != nil {
			return fmt.Errorf("failed to prepare frequency batch: %w", err)
		}
		err = appendAndSend(batch, len(freqs), func(i int) []any {
			row := freqs[i]
			return []any{snapshotTime, row.Kind, int64(row.ID), row.Frequency}
		})
		if err != nil {
			return fmt.Errorf("failed to write frequency batch: %w", err)
		}
	}

	// 2. Degree buckets
	degrees := degreeRows(c)
	if len(degrees) > 0 {
		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO heuristics_degree")
		if err != nil {
			return fmt.Errorf("failed to prepare degree batch: %w", err)
		}
		err = appendAndSend(batch, len(degrees), func(i int) []any {
			row := degrees[i]
			return []any{snapshotTime, int64(row.Label), int64(row.RelType), row.Direction, row.Average, row.Samples}
		})
		if err != nil {
			return fmt.Errorf("failed to write degree batch: %w", err)
		}
	}

	// 3. Liveness
	live, dead := c.SampledNodes()
	err = w.conn.Exec(ctx, "INSERT INTO heuristics_liveness VALUES (?, ?, ?, ?, ?)",
		snapshotTime, live, dead, c.LiveFraction(), c.MaxAddressableNodes())
	if err != nil {
		return fmt.Errorf("failed to insert liveness: %w", err)
	}

	log.Printf("Wrote %d frequencies and %d degree buckets to ClickHouse at %s", len(freqs), len(degrees), timestamp)
	return nil
}

// rowBatch is the part of driver.Batch used by appendAndSend.
type rowBatch interface {
	Append(v ...any) error
	Abort() error
	Send() error
}

// appendAndSend appends n rows and sends the batch. A failed append aborts
// the batch so its connection is released.
func appendAndSend(batch rowBatch, n int, row func(i int) []any) error {
	for i := 0; i < n; i++ {
		if err := batch.Append(row(i)...); err != nil {
			if abortErr := batch.Abort(); abortErr != nil {
				log.Printf("Warning: failed to abort clickhouse batch: %v", abortErr)
			}
			return fmt.Errorf("failed to append row %d: %w", i, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
