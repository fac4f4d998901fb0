package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestScorerProbe(t *testing.T) {
	var gotPath atomic.Value
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	probe := NewScorerProbe(srv.URL+"/", "health", time.Second)

	if err := probe.Probe(context.Background()); err != nil {
		t.Fatalf("Probe() err = %v", err)
	}
	if got, _ := gotPath.Load().(string); got != "/health" {
		t.Fatalf("path = %q, want /health", got)
	}

	healthy.Store(false)
	if err := probe.Probe(context.Background()); err == nil {
		t.Fatal("Probe() expected error for 503")
	}
}

func TestScorerProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	if err := NewScorerProbe(base, "", time.Second).Probe(context.Background()); err == nil {
		t.Fatal("Probe() expected error for closed server")
	}
}

type probeFunc func(ctx context.Context) error

func (f probeFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

type recordingSetter struct {
	mu       sync.Mutex
	statuses []healthpb.HealthCheckResponse_ServingStatus
	service  string
	changed  chan struct{}
}

func (r *recordingSetter) SetServingStatus(service string, status healthpb.HealthCheckResponse_ServingStatus) {
	r.mu.Lock()
	r.service = service
	r.statuses = append(r.statuses, status)
	r.mu.Unlock()

	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *recordingSetter) snapshot() []healthpb.HealthCheckResponse_ServingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]healthpb.HealthCheckResponse_ServingStatus(nil), r.statuses...)
}

func TestWatchPublishesStatus(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	probe := probeFunc(func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 2 {
			return errors.New("down")
		}
		return nil
	})

	setter := &recordingSetter{changed: make(chan struct{}, 10)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, probe, setter, ScorerService, 5*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for len(setter.snapshot()) < 3 {
		select {
		case <-setter.changed:
		case <-deadline:
			t.Fatalf("timeout, statuses so far: %v", setter.snapshot())
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Watch() err = %v", err)
	}

	got := setter.snapshot()
	want := []healthpb.HealthCheckResponse_ServingStatus{
		healthpb.HealthCheckResponse_SERVING,
		healthpb.HealthCheckResponse_NOT_SERVING,
		healthpb.HealthCheckResponse_SERVING,
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("status[%d] = %v, want %v (all: %v)", i, got[i], w, got)
		}
	}
	if setter.service != ScorerService {
		t.Fatalf("service = %q, want %q", setter.service, ScorerService)
	}
}
