package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.TransactionEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
	// HandleTimeout bounds one delivery attempt.
	HandleTimeout time.Duration
}

// Consumer drains one bus into one handler with retries and duplicate
// suppression on event id.
type Consumer struct {
	name          string
	bus           *Bus
	handler       Handler
	workers       int
	maxRetries    int
	baseBackoff   time.Duration
	handleTimeout time.Duration
	seen          *recentIDs
	wg            sync.WaitGroup
}

func NewConsumer(name string, bus *Bus, handler Handler, cfg ConsumerConfig) *Consumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	handleTimeout := cfg.HandleTimeout
	if handleTimeout <= 0 {
		handleTimeout = 5 * time.Second
	}

	return &Consumer{
		name:          name,
		bus:           bus,
		handler:       handler,
		workers:       workers,
		maxRetries:    maxRetries,
		baseBackoff:   baseBackoff,
		handleTimeout: handleTimeout,
		seen:          newRecentIDs(4096),
	}
}

func (c *Consumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for queued events to drain.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logStats(ctx)
		return nil
	case <-ctx.Done():
		c.logStats(ctx)
		return ctx.Err()
	}
}

func (c *Consumer) logStats(ctx context.Context) {
	if c.bus == nil {
		return
	}

	stats := c.bus.Stats()
	level := slog.LevelInfo
	if stats.Dropped > 0 || stats.Queued > 0 {
		level = slog.LevelWarn
	}

	slog.Log(ctx, level, "event consumer stopped",
		"sink", c.name,
		"accepted", stats.Accepted,
		"dropped", stats.Dropped,
		"undelivered", stats.Queued,
	)
}

func (c *Consumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *Consumer) processEvent(event entity.TransactionEvent) {
	if c.handler == nil {
		return
	}

	ctx := pkglog.WithCorrelationID(context.Background(), event.CorrelationID)

	if event.EventID != "" && !c.seen.add(event.EventID) {
		slog.InfoContext(ctx, "skip duplicate transaction event", "sink", c.name, "event_id", event.EventID, "transaction_id", event.Transaction.ID)
		return
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handle(ctx, event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.ErrorContext(ctx, "failed to deliver transaction event after retries",
				"sink", c.name,
				"event_id", event.EventID,
				"transaction_id", event.Transaction.ID,
				"error", err,
			)
			return
		}

		if !sleepBackoff(backoff) {
			return
		}
		backoff *= 2
	}
}

func (c *Consumer) handle(ctx context.Context, event entity.TransactionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, c.handleTimeout)
	defer cancel()

	return c.handler.Handle(ctx, event)
}

func sleepBackoff(d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
	return true
}

// recentIDs remembers the last n ids it was given.
type recentIDs struct {
	mu   sync.Mutex
	set  map[string]struct{}
	ring []string
	next int
}

func newRecentIDs(n int) *recentIDs {
	return &recentIDs{
		set:  make(map[string]struct{}, n),
		ring: make([]string, n),
	}
}

// add reports false when id was already seen.
func (r *recentIDs) add(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.set[id]; ok {
		return false
	}

	if old := r.ring[r.next]; old != "" {
		delete(r.set, old)
	}
	r.ring[r.next] = id
	r.next = (r.next + 1) % len(r.ring)
	r.set[id] = struct{}{}

	return true
}
