package alerter

import (
	"GraphSpectra/internal/config"
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/model"
	"GraphSpectra/internal/query"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"
)

// Alerter evaluates the published statistics against predefined rules and
// sends one consolidated notification per evaluation that triggers any rule.
type Alerter struct {
	source        query.Source
	rules         []rule
	notifier      model.Notifier
	checkInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup

	lastEvaluated *heuristics.Collector
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, source query.Source, notifier model.Notifier) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("check_interval for alerter must be positive")
	}

	rules := make([]rule, 0, len(cfg.Rules))
	for _, rc := range cfg.Rules {
		r, err := compileRule(rc)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	return &Alerter{
		source:        source,
		rules:         rules,
		notifier:      notifier,
		checkInterval: interval,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start begins the periodic evaluation of alert rules.
func (a *Alerter) Start() {
	a.wg.Add(1)
	go a.run()
	log.Println("Alerter started")
}

func (a *Alerter) run() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Evaluate()
		case <-a.stopChan:
			return
		}
	}
}

// Stop gracefully stops the alerter's evaluation loop.
func (a *Alerter) Stop() {
	log.Println("Stopping Alerter...")
	close(a.stopChan)
	a.wg.Wait()
}

// Evaluate checks every rule against the current collector once. A collector
// already evaluated is skipped. It returns the number of triggered rules.
func (a *Alerter) Evaluate() int {
	c := a.source.Current()
	if c == nil || c == a.lastEvaluated {
		return 0
	}
	a.lastEvaluated = c

	var messages []string
	for _, r := range a.rules {
		value := r.value(c)
		if r.triggered(value) {
			messages = append(messages, r.message(value))
		}
	}
	if len(messages) == 0 {
		return 0
	}

	log.Printf("Alerter evaluation completed. %d alert(s) triggered.", len(messages))

	body := "<h1>GraphSpectra Alert Summary</h1>" +
		"<p>The following rules were triggered by the latest published statistics:</p><hr>" +
		strings.Join(messages, "<hr>")

	if a.notifier != nil {
		subject := fmt.Sprintf("GraphSpectra Alert Summary (%d Triggered)", len(messages))
		if err := a.notifier.Send(subject, body); err != nil {
			log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
		} else {
			log.Printf("INFO: Consolidated alert notification sent successfully.")
		}
	}
	return len(messages)
}

func (r rule) message(value float64) string {
	return fmt.Sprintf("<h3>%s</h3><p>%s = %.6g, threshold %s %.6g</p>",
		html.EscapeString(r.name), html.EscapeString(r.describe()), value, html.EscapeString(r.operator), r.threshold)
}
