package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/usecase"
)

const defaultLookupTimeout = 50 * time.Millisecond

// SignalSource returns precomputed graph signals for an account. A nil result
// with a nil error means nothing is known about it.
type SignalSource interface {
	Signals(ctx context.Context, account string) (*entity.Signals, error)
}

// Enriched looks up graph signals for a record and stores them with it.
// Lookups are best effort: a slow or failing source leaves Signals nil.
type Enriched struct {
	next    usecase.Store
	source  SignalSource
	timeout time.Duration
}

func NewEnriched(next usecase.Store, source SignalSource, timeout time.Duration) *Enriched {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	return &Enriched{next: next, source: source, timeout: timeout}
}

func (e *Enriched) Save(ctx context.Context, tx entity.Transaction) (entity.Transaction, error) {
	if !tx.Resolved() {
		return entity.Transaction{}, entity.ErrUnresolvedVerdict
	}

	if tx.Signals == nil {
		tx.Signals = e.lookup(ctx, tx)
	}

	return e.next.Save(ctx, tx)
}

func (e *Enriched) lookup(ctx context.Context, tx entity.Transaction) *entity.Signals {
	account := tx.SourceAccount
	if account == "" {
		account = tx.TargetAccount
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	signals, err := e.source.Signals(lookupCtx, account)
	if err != nil {
		slog.DebugContext(ctx, "signal lookup failed", "account", pkglog.MaskAccount(account), "error", err)
		return nil
	}

	return signals
}

// RedisSignals reads JSON signal documents stored under {prefix}:signals:{account}.
type RedisSignals struct {
	client redis.Cmdable
	prefix string
}

func NewRedisSignals(client redis.Cmdable, prefix string) *RedisSignals {
	if prefix == "" {
		prefix = "mulehunter"
	}

	return &RedisSignals{client: client, prefix: prefix}
}

func (r *RedisSignals) key(account string) string {
	return r.prefix + ":signals:" + account
}

func (r *RedisSignals) Signals(ctx context.Context, account string) (*entity.Signals, error) {
	value, err := r.client.Get(ctx, r.key(account)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return decodeSignals([]byte(value))
}

// Put stores signals for an account. The analytics pipeline owns these keys;
// this exists for seeding and tests.
func (r *RedisSignals) Put(ctx context.Context, account string, signals entity.Signals, ttl time.Duration) error {
	raw, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("encoding signals: %w", err)
	}

	if err := r.client.Set(ctx, r.key(account), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}
