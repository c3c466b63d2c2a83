package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Async queues events and publishes them from a single goroutine, so callers
// never wait on the broker. Events are dropped with a warning when the buffer
// is full or the publisher is closed.
type Async struct {
	next   Publisher
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan queued
	done   chan struct{}
}

type queued struct {
	subject string
	data    any
}

func NewAsync(next Publisher, logger zerolog.Logger, buffer int) *Async {
	a := &Async{
		next:   next,
		logger: logger,
		ch:     make(chan queued, buffer),
		done:   make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *Async) drain() {
	defer close(a.done)
	for ev := range a.ch {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := a.next.Publish(ctx, ev.subject, ev.data); err != nil {
			a.logger.Warn().Err(err).Str("subject", ev.subject).Msg("failed to publish event")
		}
		cancel()
	}
}

// Publish enqueues the event and returns immediately.
func (a *Async) Publish(_ context.Context, subject string, data any) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.logger.Warn().Str("subject", subject).Msg("event publisher closed, dropping event")
		return nil
	}
	select {
	case a.ch <- queued{subject: subject, data: data}:
	default:
		a.logger.Warn().Str("subject", subject).Msg("event buffer full, dropping event")
	}
	return nil
}

// Close flushes queued events and closes the underlying publisher.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	<-a.done
	return a.next.Close()
}
