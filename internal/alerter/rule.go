package alerter

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/heuristics"
	"fmt"
)

// Metric names accepted in alerter rules.
const (
	MetricLiveFraction     = "live_fraction"
	MetricLabelFrequency   = "label_frequency"
	MetricRelTypeFrequency = "reltype_frequency"
	MetricDegree           = "degree"
	MetricMaxNodes         = "max_nodes"
)

type rule struct {
	name      string
	metric    string
	label     int
	relType   int
	direction heuristics.Direction
	operator  string
	threshold float64
}

func compileRule(rc config.AlerterRule) (rule, error) {
	r := rule{
		name:      rc.Name,
		metric:    rc.Metric,
		label:     heuristics.AnyLabel,
		relType:   rc.RelType,
		operator:  rc.Operator,
		threshold: rc.Threshold,
	}
	if rc.Label != nil {
		r.label = *rc.Label
	}

	switch rc.Operator {
	case ">", ">=", "<", "<=", "==", "!=":
	default:
		return rule{}, fmt.Errorf("rule '%s': unsupported operator '%s'", rc.Name, rc.Operator)
	}

	switch rc.Metric {
	case MetricLiveFraction, MetricMaxNodes:
	case MetricLabelFrequency:
		if rc.Label == nil || *rc.Label < 0 {
			return rule{}, fmt.Errorf("rule '%s': %s needs a non-negative label", rc.Name, rc.Metric)
		}
	case MetricRelTypeFrequency:
		if rc.RelType < 0 {
			return rule{}, fmt.Errorf("rule '%s': %s needs a non-negative rel_type", rc.Name, rc.Metric)
		}
	case MetricDegree:
		if rc.Label != nil && *rc.Label < 0 {
			return rule{}, fmt.Errorf("rule '%s': label must be non-negative or omitted", rc.Name)
		}
		if rc.RelType < 0 {
			return rule{}, fmt.Errorf("rule '%s': %s needs a non-negative rel_type", rc.Name, rc.Metric)
		}
		dir, err := heuristics.ParseDirection(rc.Direction)
		if err != nil {
			return rule{}, fmt.Errorf("rule '%s': %w", rc.Name, err)
		}
		r.direction = dir
	default:
		return rule{}, fmt.Errorf("rule '%s': unknown metric '%s'", rc.Name, rc.Metric)
	}
	return r, nil
}

func (r rule) value(c *heuristics.Collector) float64 {
	switch r.metric {
	case MetricLiveFraction:
		return c.LiveFraction()
	case MetricMaxNodes:
		return float64(c.MaxAddressableNodes())
	case MetricLabelFrequency:
		return c.LabelFrequency(r.label)
	case MetricRelTypeFrequency:
		return c.RelationshipTypeFrequency(r.relType)
	default:
		return c.Degree(r.label, r.relType, r.direction)
	}
}

func (r rule) triggered(value float64) bool {
	switch r.operator {
	case ">":
		return value > r.threshold
	case ">=":
		return value >= r.threshold
	case "<":
		return value < r.threshold
	case "<=":
		return value <= r.threshold
	case "==":
		return value == r.threshold
	default:
		return value != r.threshold
	}
}

func (r rule) describe() string {
	switch r.metric {
	case MetricLabelFrequency:
		return fmt.Sprintf("label_frequency(%d)", r.label)
	case MetricRelTypeFrequency:
		return fmt.Sprintf("reltype_frequency(%d)", r.relType)
	case MetricDegree:
		label := "*"
		if r.label != heuristics.AnyLabel {
			label = fmt.Sprint(r.label)
		}
		return fmt.Sprintf("degree(%s, %d, %s)", label, r.relType, r.direction)
	default:
		return r.metric
	}
}
