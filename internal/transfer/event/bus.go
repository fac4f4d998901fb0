package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

var ErrBusClosed = errors.New("event bus is closed")

// BusStats counts what happened to events offered to one sink's bus.
type BusStats struct {
	Accepted uint64
	Dropped  uint64
	Queued   int
}

// Bus is the bounded queue in front of one sink. Events that cannot be
// queued in time are counted as dropped and reported with the sink name.
type Bus struct {
	name     string
	ch       chan entity.TransactionEvent
	accepted atomic.Uint64
	dropped  atomic.Uint64

	// closing takes the write lock so no Publish is mid-send on a closed
	// channel.
	mu     sync.RWMutex
	closed bool
}

func NewBus(name string, buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}

	return &Bus{
		name: name,
		ch:   make(chan entity.TransactionEvent, buffer),
	}
}

func (b *Bus) Name() string {
	return b.name
}

// Publish blocks while the buffer is full, until ctx is done.
func (b *Bus) Publish(ctx context.Context, event entity.TransactionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.dropped.Add(1)
		return fmt.Errorf("%s: %w", b.name, ErrBusClosed)
	}

	select {
	case b.ch <- event:
		b.accepted.Add(1)
		return nil
	case <-ctx.Done():
		b.dropped.Add(1)
		return fmt.Errorf("%s: event %s dropped: %w", b.name, event.EventID, ctx.Err())
	}
}

func (b *Bus) Subscribe() <-chan entity.TransactionEvent {
	return b.ch
}

func (b *Bus) Stats() BusStats {
	return BusStats{
		Accepted: b.accepted.Load(),
		Dropped:  b.dropped.Load(),
		Queued:   len(b.ch),
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.ch)
}
