// Package quota tracks the advisory daily count of successful extractions.
//
// The count lives in the same key/value store as the settings and rolls
// over to zero the first time it is read on a new local calendar day.
// Separate processes sharing a store count independently.
package quota

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mcodersir/axkhan/internal/models"
	"github.com/mcodersir/axkhan/internal/storage"
)

const dateLayout = "2006-01-02"

// Tracker is safe for concurrent use
type Tracker struct {
	mu    sync.Mutex
	kv    storage.KV
	limit int
	now   func() time.Time
	rec   models.UsageRecord
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New loads the persisted record from kv. Missing or malformed values read
// as zero usage.
func New(kv storage.KV, limit int, opts ...Option) *Tracker {
	t := &Tracker{kv: kv, limit: limit, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	if d, ok := kv.Get(storage.KeyUsageDate); ok {
		t.rec.Date = d
	}
	if c, ok := kv.Get(storage.KeyUsageCount); ok {
		if n, err := strconv.Atoi(c); err == nil && n >= 0 {
			t.rec.Count = n
		}
	}
	return t
}

// CurrentUsage returns today's count, resetting it if the stored date is
// not today
func (t *Tracker) CurrentUsage() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollover().Count
}

// Increment records one successful extraction and persists immediately.
// A failed write is logged; the in-memory count stays authoritative.
func (t *Tracker) Increment() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollover()
	t.rec.Count++
	t.persist()
	return t.rec.Count
}

// Remaining is never negative
func (t *Tracker) Remaining() int {
	return max(0, t.limit-t.CurrentUsage())
}

func (t *Tracker) Limit() int {
	return t.limit
}

// Record returns today's usage record
func (t *Tracker) Record() models.UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollover()
}

func (t *Tracker) rollover() models.UsageRecord {
	today := t.now().Format(dateLayout)
	if t.rec.Date != today {
		slog.Debug("Resetting daily usage", "previous_date", t.rec.Date, "previous_count", t.rec.Count, "date", today)
		t.rec = models.UsageRecord{Date: today}
		t.persist()
	}
	return t.rec
}

func (t *Tracker) persist() {
	if err := t.kv.Set(storage.KeyUsageDate, t.rec.Date); err != nil {
		slog.Warn("Unable to persist usage date", "err", err)
	}
	if err := t.kv.Set(storage.KeyUsageCount, strconv.Itoa(t.rec.Count)); err != nil {
		slog.Warn("Unable to persist usage count", "err", err)
	}
}
