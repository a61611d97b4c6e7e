package acquire

import (
	"context"
	"sync"
	"time"

	"github.com/mcodersir/axkhan/internal/models"
)

// Run is a single pass through the pipeline
type Run struct {
	ID     string
	Source Source

	mu   sync.RWMutex
	info models.RunInfo
	text string
	err  error
	done chan struct{}
}

func newRun(id string, source Source) *Run {
	return &Run{
		ID:     id,
		Source: source,
		info: models.RunInfo{
			ID:        id,
			Source:    string(source),
			State:     models.StateIdle,
			StartedAt: time.Now(),
		},
		done: make(chan struct{}),
	}
}

// Done is closed once the run reaches Done or Failed
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx ends. It returns the extracted
// text, or the classified extraction error.
func (r *Run) Wait(ctx context.Context) (string, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.text, r.err
}

func (r *Run) Info() models.RunInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info := r.info
	if r.info.FinishedAt != nil {
		t := *r.info.FinishedAt
		info.FinishedAt = &t
	}
	return info
}

func (r *Run) setState(state models.ProcessingState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.State = state
}

func (r *Run) setError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.Error = msg
}

func (r *Run) finish(text string, err error) {
	r.mu.Lock()
	now := time.Now()
	r.info.FinishedAt = &now
	r.text = text
	r.err = err
	r.mu.Unlock()
	close(r.done)
}
