package query

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/engine/writer"
	"GraphSpectra/internal/heuristics"
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// DegreePoint is one historical value of a degree bucket.
type DegreePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Average   float64   `json:"average"`
	Samples   int64     `json:"samples"`
}

// HistoryQuerier returns how a degree bucket evolved over past snapshots.
type HistoryQuerier interface {
	DegreeHistory(ctx context.Context, label, relType int, dir heuristics.Direction, limit int) ([]DegreePoint, error)
}

// ClickHouseQuerier reads the tables written by the clickhouse writer.
type ClickHouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(ctx context.Context, cfg config.ClickHouseConfig) (*ClickHouseQuerier, error) {
	conn, err := writer.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &ClickHouseQuerier{conn: conn}, nil
}

const degreeHistoryQuery = `
	SELECT Timestamp, Average, Samples
	FROM heuristics_degree
	WHERE Label = ? AND RelType = ? AND Direction = ?
	ORDER BY Timestamp DESC
	LIMIT ?
`

// DegreeHistory returns up to limit points for (label, relType, dir), newest first.
func (q *ClickHouseQuerier) DegreeHistory(ctx context.Context, label, relType int, dir heuristics.Direction, limit int) ([]DegreePoint, error) {
	rows, err := q.conn.Query(ctx, degreeHistoryQuery, int64(label), int64(relType), dir.String(), uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var points []DegreePoint
	for rows.Next() {
		var p DegreePoint
		if err := rows.Scan(&p.Timestamp, &p.Average, &p.Samples); err != nil {
			return nil, fmt.Errorf("failed to scan degree history: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read degree history: %w", err)
	}
	return points, nil
}

// Close closes the ClickHouse connection.
func (q *ClickHouseQuerier) Close() error {
	return q.conn.Close()
}
