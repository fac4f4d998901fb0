// Package health reports whether the risk scoring service is reachable.
package health

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ScorerService is the service name reported on the gRPC health server.
const ScorerService = "scorer"

type Prober interface {
	Probe(ctx context.Context) error
}

// ScorerProbe calls the scorer health endpoint with a client of its own,
// separate from the one used for scoring.
type ScorerProbe struct {
	url    string
	client *http.Client
}

func NewScorerProbe(baseURL, path string, timeout time.Duration) *ScorerProbe {
	if path == "" {
		path = "/health"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &ScorerProbe{
		url:    strings.TrimRight(baseURL, "/") + path,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *ScorerProbe) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("scorer health request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("scorer health returned HTTP %d", resp.StatusCode)
	}

	return nil
}

// StatusSetter is satisfied by *health.Server from google.golang.org/grpc/health.
type StatusSetter interface {
	SetServingStatus(service string, servingStatus healthpb.HealthCheckResponse_ServingStatus)
}

// Watch probes immediately and then every interval, publishing the result to
// setter until ctx is done.
func Watch(ctx context.Context, probe Prober, setter StatusSetter, service string, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		if err := probe.Probe(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if last != status {
				slog.WarnContext(ctx, "dependency unhealthy", "service", service, "error", err)
			}
		} else if last == healthpb.HealthCheckResponse_NOT_SERVING {
			slog.InfoContext(ctx, "dependency recovered", "service", service)
		}

		if ctx.Err() != nil {
			return nil
		}
		setter.SetServingStatus(service, status)
		last = status

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
