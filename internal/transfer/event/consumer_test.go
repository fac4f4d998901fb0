package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

type handlerFunc func(ctx context.Context, event entity.TransactionEvent) error

func (h handlerFunc) Handle(ctx context.Context, event entity.TransactionEvent) error {
	return h(ctx, event)
}

func TestConsumerRetriesAndIdempotent(t *testing.T) {
	bus := NewBus("test", 10)

	var attempts int32
	done := make(chan struct{})
	handler := handlerFunc(func(ctx context.Context, event entity.TransactionEvent) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("temporary failure")
		}
		select {
		case <-done:
		default:
			close(done)
		}
		return nil
	})

	consumer := NewConsumer("test", bus, handler, ConsumerConfig{
		Workers:     1,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	})
	consumer.Start()

	event := entity.TransactionEvent{EventID: "evt-1", Transaction: entity.Transaction{ID: "1", Verdict: entity.VerdictFlagged}}
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish event: %v", err)
	}
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish duplicate: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler")
	}

	if err := consumer.Stop(context.Background()); err != nil {
		t.Fatalf("stop consumer: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestConsumerGivesUpAfterMaxRetries(t *testing.T) {
	bus := NewBus("test", 1)

	var attempts int32
	consumer := NewConsumer("test", bus, handlerFunc(func(ctx context.Context, event entity.TransactionEvent) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("permanent failure")
	}), ConsumerConfig{Workers: 1, MaxRetries: 1, BaseBackoff: time.Millisecond})
	consumer.Start()

	if err := bus.Publish(context.Background(), entity.TransactionEvent{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish event: %v", err)
	}

	if err := consumer.Stop(context.Background()); err != nil {
		t.Fatalf("stop consumer: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestConsumerStopDrainsQueue(t *testing.T) {
	bus := NewBus("test", 50)

	var mu sync.Mutex
	handled := make(map[string]bool)
	consumer := NewConsumer("test", bus, handlerFunc(func(ctx context.Context, event entity.TransactionEvent) error {
		mu.Lock()
		defer mu.Unlock()
		handled[event.EventID] = true
		return nil
	}), ConsumerConfig{Workers: 3})

	for i := 0; i < 20; i++ {
		if err := bus.Publish(context.Background(), entity.TransactionEvent{EventID: fmt.Sprintf("evt-%d", i)}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	consumer.Start()
	if err := consumer.Stop(context.Background()); err != nil {
		t.Fatalf("stop consumer: %v", err)
	}

	if len(handled) != 20 {
		t.Fatalf("handled %d events, want 20", len(handled))
	}
	if err := bus.Publish(context.Background(), entity.TransactionEvent{EventID: "late"}); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("publish after stop err = %v, want ErrBusClosed", err)
	}
}

func TestConsumerRestoresCorrelationID(t *testing.T) {
	bus := NewBus("test", 1)

	got := make(chan string, 1)
	consumer := NewConsumer("cid", bus, handlerFunc(func(ctx context.Context, _ entity.TransactionEvent) error {
		got <- pkglog.CorrelationID(ctx)
		return nil
	}), ConsumerConfig{Workers: 1})
	consumer.Start()

	ev := entity.TransactionEvent{EventID: "evt-cid", CorrelationID: "cid-5", Transaction: entity.Transaction{ID: "5"}}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case cid := <-got:
		if cid != "cid-5" {
			t.Fatalf("handler saw correlation id %q, want cid-5", cid)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for handler")
	}

	if err := consumer.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestBusPublishFullBufferHonoursContext(t *testing.T) {
	bus := NewBus("graph", 1)
	if err := bus.Publish(context.Background(), entity.TransactionEvent{EventID: "1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := bus.Publish(ctx, entity.TransactionEvent{EventID: "2"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("publish on full bus err = %v, want deadline exceeded", err)
	}
	if !strings.Contains(err.Error(), "graph") || !strings.Contains(err.Error(), "2") {
		t.Fatalf("drop error should name the sink and event, got %v", err)
	}

	if got := bus.Stats(); got != (BusStats{Accepted: 1, Dropped: 1, Queued: 1}) {
		t.Fatalf("Stats() = %+v", got)
	}
}

func TestBusCountsPublishAfterClose(t *testing.T) {
	bus := NewBus("kafka", 4)
	bus.Close()
	bus.Close()

	err := bus.Publish(context.Background(), entity.TransactionEvent{EventID: "1"})
	if !errors.Is(err, ErrBusClosed) {
		t.Fatalf("publish after close err = %v, want ErrBusClosed", err)
	}
	if !strings.Contains(err.Error(), "kafka") {
		t.Fatalf("error should name the sink, got %v", err)
	}
	if got := bus.Stats(); got.Dropped != 1 || got.Accepted != 0 {
		t.Fatalf("Stats() = %+v", got)
	}
}

func TestFanoutReportsWhichSinkDropped(t *testing.T) {
	full := NewBus("discord", 1)
	open := NewBus("graph", 4)
	if err := full.Publish(context.Background(), entity.TransactionEvent{EventID: "0"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Fanout{full, open}.Publish(ctx, entity.TransactionEvent{EventID: "1"})
	if err == nil || !strings.Contains(err.Error(), "discord") || strings.Contains(err.Error(), "graph") {
		t.Fatalf("Publish() err = %v, want a drop reported for discord only", err)
	}
	if open.Stats().Accepted != 1 || full.Stats().Dropped != 1 {
		t.Fatalf("stats: discord %+v, graph %+v", full.Stats(), open.Stats())
	}
}

func TestRecentIDsForgetsOldest(t *testing.T) {
	r := newRecentIDs(2)

	if !r.add("a") || !r.add("b") {
		t.Fatal("first adds must succeed")
	}
	if r.add("a") {
		t.Fatal("duplicate a must be rejected")
	}
	if !r.add("c") {
		t.Fatal("add c must succeed")
	}
	// a was evicted by c
	if !r.add("a") {
		t.Fatal("a should be accepted again after eviction")
	}
}

type recordingPublisher struct {
	err    error
	events []entity.TransactionEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event entity.TransactionEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func TestFanoutDeliversToAll(t *testing.T) {
	boom := errors.New("boom")
	first := &recordingPublisher{err: boom}
	second := &recordingPublisher{}

	err := Fanout{first, second}.Publish(context.Background(), entity.TransactionEvent{EventID: "evt-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() err = %v, want %v", err, boom)
	}
	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("expected each publisher to see the event, got %d and %d", len(first.events), len(second.events))
	}

	if err := (Fanout{}).Publish(context.Background(), entity.TransactionEvent{}); err != nil {
		t.Fatalf("empty fanout err = %v", err)
	}
}

func TestLogHandler(t *testing.T) {
	if err := (LogHandler{}).Handle(context.Background(), entity.TransactionEvent{}); err == nil {
		t.Fatal("expected error for missing event id")
	}
	if err := (LogHandler{}).Handle(context.Background(), entity.TransactionEvent{EventID: "evt-1"}); err != nil {
		t.Fatalf("Handle() err = %v", err)
	}
}
