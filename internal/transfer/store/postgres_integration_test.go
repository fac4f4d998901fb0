//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "mulehunter",
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
			),
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
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("get port: %v", err)
	}

	return fmt.Sprintf("postgres://test:test@%s:%s/mulehunter?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()

	pool, err := OpenPostgresPool(ctx, PostgresConfig{URL: startPostgres(t), MaxConns: 4})
	if err != nil {
		t.Fatalf("OpenPostgresPool() err = %v", err)
	}
	defer pool.Close()

	store, err := NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() err = %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() err = %v", err)
	}
	// idempotent
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() err = %v", err)
	}

	in := resolvedTx("A1", "A2", entity.VerdictFlagged, scorePtr(0.9))
	in.Amount = in.Amount.Add(in.Amount.Shift(-15))
	in.Signals = &entity.Signals{OutDegree: 12, PopulationSize: "Large", LinkedAccounts: []string{"A9"}}

	saved, err := store.Save(ctx, in)
	if err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if !got.Amount.Equal(in.Amount) {
		t.Fatalf("amount = %s, want %s", got.Amount, in.Amount)
	}
	if got.Verdict != entity.VerdictFlagged || got.RiskScore == nil || *got.RiskScore != 0.9 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, in.CreatedAt)
	}
	if got.Signals == nil || got.Signals.OutDegree != 12 || got.Signals.LinkedAccounts[0] != "A9" {
		t.Fatalf("signals = %+v", got.Signals)
	}

	unknown, err := store.Save(ctx, resolvedTx("A3", "", entity.VerdictUnknown, nil))
	if err != nil {
		t.Fatalf("Save(UNKNOWN) err = %v", err)
	}
	got, err = store.Get(ctx, unknown.ID)
	if err != nil {
		t.Fatalf("Get(UNKNOWN) err = %v", err)
	}
	if got.RiskScore != nil {
		t.Fatalf("risk score = %v, want nil", *got.RiskScore)
	}
	if got.Signals != nil {
		t.Fatalf("signals = %+v, want nil", got.Signals)
	}

	if _, err := store.Save(ctx, resolvedTx("A1", "A2", entity.VerdictPending, nil)); !errors.Is(err, entity.ErrUnresolvedVerdict) {
		t.Fatalf("Save(PENDING) err = %v", err)
	}
	if _, err := store.Get(ctx, "999999"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("Get(missing) err = %v", err)
	}
}
