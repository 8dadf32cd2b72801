// Package usecase drives the four-stage analysis pipeline.
package usecase

import (
	"sync"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

// ProgressBroadcaster fans progress events out to subscribed listeners.
// Emission is non-blocking: events flow through a buffered channel consumed
// by a single dispatcher goroutine, and are dropped when the buffer is full
// rather than stalling a stage worker.
type ProgressBroadcaster struct {
	mu        sync.Mutex
	listeners []domain.ProgressListener
	events    chan domain.ProgressEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewProgressBroadcaster starts the dispatcher goroutine.
func NewProgressBroadcaster() *ProgressBroadcaster {
	b := &ProgressBroadcaster{
		events: make(chan domain.ProgressEvent, 64),
		done:   make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *ProgressBroadcaster) dispatch() {
	defer close(b.done)
	for ev := range b.events {
		b.mu.Lock()
		listeners := make([]domain.ProgressListener, len(b.listeners))
		copy(listeners, b.listeners)
		b.mu.Unlock()
		for _, l := range listeners {
			l(ev)
		}
	}
}

// Subscribe registers a listener for subsequent events.
func (b *ProgressBroadcaster) Subscribe(l domain.ProgressListener) {
	if l == nil {
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Emit queues an event without blocking the caller.
func (b *ProgressBroadcaster) Emit(ev domain.ProgressEvent) {
	select {
	case b.events <- ev:
	default:
		// listener fell behind; dropping is preferable to stalling a worker
	}
}

// Close drains queued events and stops the dispatcher.
func (b *ProgressBroadcaster) Close() {
	b.closeOnce.Do(func() {
		close(b.events)
		<-b.done
	})
}
