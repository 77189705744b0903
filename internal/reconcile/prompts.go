package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/polkiloo/ordertrack/internal/domain/repository"
	"github.com/polkiloo/ordertrack/internal/matcher"
)

// PromptTracker remembers which orders a rider has already been prompted
// about. The set is capped and entries expire, so long-lived sessions do not
// grow it without bound. When a repository is configured the set survives
// restarts.
type PromptTracker struct {
	repo   repository.PromptRepository
	logger *slog.Logger

	mu      sync.Mutex
	seen    *expirable.LRU[string, time.Time]
	riderID string
	now     func() time.Time
}

// NewPromptTracker constructs a tracker holding at most capacity ids for ttl.
// repo may be nil.
func NewPromptTracker(capacity int, ttl time.Duration, repo repository.PromptRepository, logger *slog.Logger) *PromptTracker {
	if capacity <= 0 {
		capacity = 256
	}
	return &PromptTracker{
		repo:   repo,
		logger: logger,
		seen:   expirable.NewLRU[string, time.Time](capacity, nil, ttl),
		now:    time.Now,
	}
}

func key(id string) string {
	return matcher.Normalize(id).Full
}

// Load resets the tracker to riderID and restores persisted ids.
func (t *PromptTracker) Load(ctx context.Context, riderID string) error {
	t.mu.Lock()
	t.seen.Purge()
	t.riderID = riderID
	t.mu.Unlock()

	if t.repo == nil || riderID == "" {
		return nil
	}
	ids, err := t.repo.Load(ctx, riderID)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		t.seen.Add(key(id), t.now())
	}
	return nil
}

// Reset forgets every id and the rider without touching the repository.
func (t *PromptTracker) Reset() {
	t.mu.Lock()
	t.seen.Purge()
	t.riderID = ""
	t.mu.Unlock()
}

// Mark adds id to the set and reports whether it was absent.
func (t *PromptTracker) Mark(ctx context.Context, id string) bool {
	k := key(id)
	if k == "" {
		return false
	}
	t.mu.Lock()
	if t.seen.Contains(k) {
		t.mu.Unlock()
		return false
	}
	t.seen.Add(k, t.now())
	riderID := t.riderID
	t.mu.Unlock()

	if t.repo != nil && riderID != "" {
		if err := t.repo.Add(ctx, riderID, k); err != nil {
			t.logger.Warn("persist prompted order failed", slog.String("order", id), slog.String("error", err.Error()))
		}
	}
	return true
}

// Seen reports whether id is in the set.
func (t *PromptTracker) Seen(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen.Contains(key(id))
}

// Forget removes id from the set.
func (t *PromptTracker) Forget(ctx context.Context, id string) {
	k := key(id)
	t.mu.Lock()
	removed := t.seen.Remove(k)
	riderID := t.riderID
	t.mu.Unlock()

	if removed && t.repo != nil && riderID != "" {
		if err := t.repo.Remove(ctx, riderID, k); err != nil {
			t.logger.Warn("forget prompted order failed", slog.String("order", id), slog.String("error", err.Error()))
		}
	}
}

// IDs returns the tracked ids, oldest first.
func (t *PromptTracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen.Keys()
}

// Len returns the number of tracked ids.
func (t *PromptTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen.Len()
}
