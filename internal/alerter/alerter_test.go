package alerter

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/query"
	"errors"
	"strings"
	"testing"
)

type fakeNotifier struct {
	subjects []string
	bodies   []string
	err      error
}

func (n *fakeNotifier) Send(subject, body string) error {
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return n.err
}

type mutableSource struct{ c *heuristics.Collector }

func (s *mutableSource) Current() *heuristics.Collector { return s.c }

func intPtr(v int) *int { return &v }

func newTestCollector() *heuristics.Collector {
	c := heuristics.NewCollector()
	c.RecordObservation([]int{0}, []int{3}, nil, map[int]int64{3: 1500})
	c.RecordObservation([]int{1}, []int{3}, nil, map[int]int64{3: 10})
	c.RecordSkippedObservation()
	c.RecordSkippedObservation()
	c.SetMaxAddressablePopulation(500)
	c.Recalculate()
	return c
}

func newTestConfig(rules ...config.AlerterRule) *config.AlerterConfig {
	return &config.AlerterConfig{Enabled: true, CheckInterval: "1m", Rules: rules}
}

func TestAlerter_Evaluate(t *testing.T) {
	notifier := &fakeNotifier{}
	source := &mutableSource{}
	a, err := NewAlerter(newTestConfig(
		config.AlerterRule{Name: "low liveness", Metric: "live_fraction", Operator: "<", Threshold: 0.6},
		config.AlerterRule{Name: "supernode", Metric: "degree", Label: intPtr(0), RelType: 3, Direction: "outgoing", Operator: ">", Threshold: 1000},
		config.AlerterRule{Name: "any supernode", Metric: "degree", RelType: 3, Direction: "outgoing", Operator: ">", Threshold: 1000},
		config.AlerterRule{Name: "rare label", Metric: "label_frequency", Label: intPtr(1), Operator: "<", Threshold: 0.1},
		config.AlerterRule{Name: "type coverage", Metric: "reltype_frequency", RelType: 3, Operator: "==", Threshold: 1},
		config.AlerterRule{Name: "small graph", Metric: "max_nodes", Operator: "<=", Threshold: 500},
	), source, notifier)
	if err != nil {
		t.Fatalf("NewAlerter() returned an error: %v", err)
	}

	// 1. Nothing published yet
	if got := a.Evaluate(); got != 0 || len(notifier.subjects) != 0 {
		t.Fatalf("Expected no alerts before publication, got %d", got)
	}

	// 2. Evaluate a published collector
	source.c = newTestCollector()
	if got := a.Evaluate(); got != 4 {
		t.Fatalf("Expected 4 triggered rules, got %d", got)
	}
	if len(notifier.subjects) != 1 {
		t.Fatalf("Expected one consolidated notification, got %d", len(notifier.subjects))
	}
	if want := "GraphSpectra Alert Summary (4 Triggered)"; notifier.subjects[0] != want {
		t.Errorf("Expected subject %q, got %q", want, notifier.subjects[0])
	}
	body := notifier.bodies[0]
	for _, want := range []string{"low liveness", "degree(0, 3, outgoing) = 1500", "type coverage", "small graph"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
	// The label-agnostic average is 755.
	for _, unwanted := range []string{"any supernode", "rare label"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("Body must not contain %q", unwanted)
		}
	}

	// 3. The same collector is evaluated once
	if got := a.Evaluate(); got != 0 || len(notifier.subjects) != 1 {
		t.Errorf("Expected no re-evaluation, got %d alerts and %d notifications", got, len(notifier.subjects))
	}
}

func TestAlerter_NotifierFailureIsLogged(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	a, err := NewAlerter(newTestConfig(
		config.AlerterRule{Name: "always", Metric: "live_fraction", Operator: ">=", Threshold: 0},
	), query.StaticSource{Collector: newTestCollector()}, notifier)
	if err != nil {
		t.Fatalf("NewAlerter() returned an error: %v", err)
	}

	if got := a.Evaluate(); got != 1 {
		t.Errorf("Expected 1 triggered rule, got %d", got)
	}
	if len(notifier.subjects) != 1 {
		t.Errorf("Expected one send attempt, got %d", len(notifier.subjects))
	}
}

func TestNewAlerter_InvalidRules(t *testing.T) {
	cases := map[string]config.AlerterRule{
		"operator":       {Name: "r", Metric: "live_fraction", Operator: "~"},
		"metric":         {Name: "r", Metric: "edges", Operator: ">"},
		"label missing":  {Name: "r", Metric: "label_frequency", Operator: ">"},
		"negative label": {Name: "r", Metric: "degree", Label: intPtr(-1), Operator: ">"},
		"direction":      {Name: "r", Metric: "degree", Direction: "up", Operator: ">"},
		"negative type":  {Name: "r", Metric: "reltype_frequency", RelType: -2, Operator: ">"},
	}
	for name, rc := range cases {
		if _, err := NewAlerter(newTestConfig(rc), query.StaticSource{}, nil); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	if _, err := NewAlerter(&config.AlerterConfig{CheckInterval: "often"}, query.StaticSource{}, nil); err == nil {
		t.Errorf("Expected an error for a bad check interval")
	}
}

func TestAlerter_StartStop(t *testing.T) {
	a, err := NewAlerter(newTestConfig(), query.StaticSource{}, nil)
	if err != nil {
		t.Fatalf("NewAlerter() returned an error: %v", err)
	}
	a.Start()
	a.Stop()
}
