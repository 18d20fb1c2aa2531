package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"log/slog"

	redis "github.com/redis/go-redis/v9"
)

// Aggregated statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// Per-component statuses.
const (
	componentUp   = "up"
	componentDown = "down"
)

// Probe checks one dependency. Required probes pull the whole service down
// when they fail; optional ones only degrade it.
type Probe struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// Component is the probe outcome reported to callers.
type Component struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is computed per request and never persisted.
type Report struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
	Timestamp  time.Time            `json:"timestamp"`
}

// Service aggregates dependency probes into a single status.
type Service struct {
	probes  []Probe
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a Service. Every probe is bounded by timeout.
func New(logger *slog.Logger, timeout time.Duration, probes ...Probe) Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return Service{probes: probes, timeout: timeout, logger: logger}
}

// Check runs all probes concurrently and aggregates their outcomes. It never
// mutates state and always returns a report: a probe that exceeds its
// timeout reports down instead of blocking the caller.
func (s Service) Check(ctx context.Context) Report {
	report := Report{
		Status:     StatusOK,
		Components: make(map[string]Component, len(s.probes)),
		Timestamp:  time.Now().UTC(),
	}

	type outcome struct {
		probe Probe
		err   error
	}
	results := make([]outcome, len(s.probes))

	var wg sync.WaitGroup
	for i, probe := range s.probes {
		wg.Add(1)
		go func(i int, probe Probe) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- probe.Check(probeCtx) }()
			select {
			case err := <-done:
				results[i] = outcome{probe: probe, err: err}
			case <-probeCtx.Done():
				results[i] = outcome{probe: probe, err: fmt.Errorf("probe timed out after %s", s.timeout)}
			}
		}(i, probe)
	}
	wg.Wait()

	for _, res := range results {
		if res.err == nil {
			report.Components[res.probe.Name] = Component{Status: componentUp}
			continue
		}
		report.Components[res.probe.Name] = Component{Status: componentDown, Error: res.err.Error()}
		s.logger.Warn("health probe failed", "component", res.probe.Name, "error", res.err)
		if res.probe.Required {
			report.Status = StatusDown
		} else if report.Status == StatusOK {
			report.Status = StatusDegraded
		}
	}
	return report
}

// DatabaseProbe wraps the connection pool ping as the required probe.
func DatabaseProbe(ping func(ctx context.Context) error) Probe {
	return Probe{Name: "database", Required: true, Check: ping}
}

// RedisProbe checks an optional Redis dependency.
func RedisProbe(client *redis.Client) Probe {
	return Probe{
		Name: "redis",
		Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// HTTPProbe checks a dependent service over HTTP. Any response below 500
// counts as reachable.
func HTTPProbe(name, url string) Probe {
	client := &http.Client{}
	return Probe{
		Name: name,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= http.StatusInternalServerError {
				return fmt.Errorf("dependency returned status %d", resp.StatusCode)
			}
			return nil
		},
	}
}
