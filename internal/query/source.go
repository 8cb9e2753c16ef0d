package query

import "GraphSpectra/internal/heuristics"

// Source yields the collector queries are answered from. It returns nil until
// statistics have been published. The engine's manager and the snapshot
// watcher both implement it.
type Source interface {
	Current() *heuristics.Collector
}

// StaticSource serves a fixed collector.
type StaticSource struct {
	Collector *heuristics.Collector
}

// Current returns the fixed collector.
func (s StaticSource) Current() *heuristics.Collector {
	return s.Collector
}
