//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("get port: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisSignals_Integration(t *testing.T) {
	ctx := context.Background()
	signals := NewRedisSignals(startRedis(t), "test")

	got, err := signals.Signals(ctx, "A1")
	if err != nil || got != nil {
		t.Fatalf("Signals(miss) = %+v, %v", got, err)
	}

	want := entity.Signals{OutDegree: 3, RiskRatio: 0.5, PopulationSize: "Small", JA3Detected: true, UnsupervisedScore: 0.42}
	if err := signals.Put(ctx, "A1", want, time.Minute); err != nil {
		t.Fatalf("Put() err = %v", err)
	}

	store := NewEnriched(NewInMemoryStore(&seqID{}), signals, time.Second)
	saved, err := store.Save(ctx, resolvedTx("A1", "A2", entity.VerdictApproved, scorePtr(0.1)))
	if err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	got = saved.Signals
	if got == nil || got.OutDegree != want.OutDegree || got.PopulationSize != want.PopulationSize ||
		!got.JA3Detected || got.UnsupervisedScore != want.UnsupervisedScore {
		t.Fatalf("unexpected signals: %+v", saved.Signals)
	}
}
