package writer

import (
	"GraphSpectra/internal/heuristics"
	"fmt"
)

// FrequencyRow is one label or relationship type frequency.
type FrequencyRow struct {
	Kind      string
	ID        int
	Frequency float64
}

// DegreeRow is one degree bucket of one direction table.
type DegreeRow struct {
	Label     int
	RelType   int
	Direction string
	Average   float64
	Samples   int64
}

// frequencyRows flattens the label and relationship type distributions.
func frequencyRows(c *heuristics.Collector) []FrequencyRow {
	var rows []FrequencyRow
	for _, id := range c.Labels() {
		rows = append(rows, FrequencyRow{Kind: "label", ID: id, Frequency: c.LabelFrequency(id)})
	}
	for _, id := range c.RelationshipTypes() {
		rows = append(rows, FrequencyRow{Kind: "reltype", ID: id, Frequency: c.RelationshipTypeFrequency(id)})
	}
	return rows
}

// degreeRows flattens the three degree tables in Directions order.
func degreeRows(c *heuristics.Collector) []DegreeRow {
	var rows []DegreeRow
	for _, dir := range heuristics.Directions() {
		table := c.Table(dir)
		for _, label := range table.Labels() {
			for _, relType := range table.RelTypes(label) {
				avg, _ := table.Lookup(label, relType)
				if avg.Samples() == 0 {
					continue
				}
				rows = append(rows, DegreeRow{
					Label:     label,
					RelType:   relType,
					Direction: dir.String(),
					Average:   avg.Average(),
					Samples:   avg.Samples(),
				})
			}
		}
	}
	return rows
}

func collectorPayload(payload interface{}, writer string) (*heuristics.Collector, error) {
	c, ok := payload.(*heuristics.Collector)
	if !ok || c == nil {
		return nil, fmt.Errorf("invalid payload type for %s: expected *heuristics.Collector, got %T", writer, payload)
	}
	return c, nil
}
