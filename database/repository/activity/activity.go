package activityRepo

import (
	"context"
	"sync"
	"time"

	"chatbook/models"
)

const (
	DefaultLimit = 100
	// MaxEvents bounds the feed; older events are dropped.
	MaxEvents = 500
)

// Recorder stores the owner-facing activity feed.
type Recorder interface {
	Record(ctx context.Context, event models.ActivityEvent) error
	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxEvents {
		return MaxEvents
	}
	return limit
}

// MemoryRecorder keeps the newest MaxEvents events in process memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []models.ActivityEvent // newest first
	now    func() time.Time
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{now: time.Now}
}

func (r *MemoryRecorder) Record(_ context.Context, event models.ActivityEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append([]models.ActivityEvent{event}, r.events...)
	if len(r.events) > MaxEvents {
		r.events = r.events[:MaxEvents]
	}
	return nil
}

func (r *MemoryRecorder) Recent(_ context.Context, limit int) ([]models.ActivityEvent, error) {
	limit = clampLimit(limit)
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]models.ActivityEvent, limit)
	copy(out, r.events[:limit])
	return out, nil
}
