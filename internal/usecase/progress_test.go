package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-job-analyzer/internal/domain"
)

func TestProgressBroadcaster_FanOut(t *testing.T) {
	t.Parallel()
	b := NewProgressBroadcaster()

	var mu sync.Mutex
	got := make(map[string]int)
	listener := func(name string) domain.ProgressListener {
		return func(domain.ProgressEvent) {
			mu.Lock()
			got[name]++
			mu.Unlock()
		}
	}
	b.Subscribe(listener("a"))
	b.Subscribe(listener("b"))
	b.Subscribe(nil) // ignored

	for i := 0; i < 5; i++ {
		b.Emit(domain.ProgressEvent{Stage: domain.StageExtract, Done: i + 1, Total: 5})
	}
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, got["a"])
	assert.Equal(t, 5, got["b"])
}

func TestProgressBroadcaster_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	b := NewProgressBroadcaster()
	b.Close()
	b.Close()
}
