package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultLimit applies when NewManager gets a non-positive limit.
const DefaultLimit = 10

// ErrPanic wraps the value recovered from a panicking task.
var ErrPanic = errors.New("task panicked")

// Manager tracks background tasks for the lifetime of the process.
type Manager struct {
	wg    sync.WaitGroup
	slots chan struct{}

	mu   sync.Mutex
	errs []error
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{slots: make(chan struct{}, limit)}
}

// Go starts f once a slot is free. If ctx ends first the task is dropped.
// A task error or panic is recorded under name and returned by Wait.
func (m *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) {
	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "task dropped before start", "task", name, "error", ctx.Err())
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() { <-m.slots }()

		if err := run(ctx, name, f); err != nil {
			m.record(fmt.Errorf("%s: %w", name, err))
		}
	}()
}

func run(ctx context.Context, name string, f func(context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "task panicked", "task", name, "panic", rvr, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrPanic, rvr)
		}
	}()

	return f(ctx)
}

func (m *Manager) record(err error) {
	m.mu.Lock()
	m.errs = append(m.errs, err)
	m.mu.Unlock()
}

// Wait blocks until every started task has returned.
func (m *Manager) Wait() error {
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
