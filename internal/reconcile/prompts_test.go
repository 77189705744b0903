package reconcile

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/polkiloo/ordertrack/internal/test"
)

func TestPromptTrackerMark(t *testing.T) {
	tracker := NewPromptTracker(8, 0, nil, discardLogger())
	ctx := context.Background()

	if !tracker.Mark(ctx, "ABCDEF123456") {
		t.Fatalf("first mark should report new id")
	}
	if tracker.Mark(ctx, "abcdef123456") {
		t.Fatalf("ids must compare case-insensitively")
	}
	if tracker.Mark(ctx, "  ") {
		t.Fatalf("blank id must not be tracked")
	}
	tracker.Forget(ctx, "abcdef123456")
	if tracker.Seen("abcdef123456") {
		t.Fatalf("forget did not remove id")
	}
}

func TestPromptTrackerCapacity(t *testing.T) {
	tracker := NewPromptTracker(2, 0, nil, discardLogger())
	ctx := context.Background()
	for _, id := range []string{"a1", "b2", "c3"} {
		tracker.Mark(ctx, id)
	}
	if got := tracker.IDs(); !reflect.DeepEqual(got, []string{"b2", "c3"}) {
		t.Fatalf("expected oldest id evicted, got %v", got)
	}
}

func TestPromptTrackerExpires(t *testing.T) {
	tracker := NewPromptTracker(8, 10*time.Millisecond, nil, discardLogger())
	tracker.Mark(context.Background(), "o-1")

	deadline := time.Now().Add(time.Second)
	for tracker.Seen("o-1") {
		if time.Now().After(deadline) {
			t.Fatalf("tracked id never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPromptTrackerPersistence(t *testing.T) {
	repo := test.NewPromptRepositoryStub(map[string][]string{"rider-1": {"o-1", "o-2"}})
	tracker := NewPromptTracker(8, 0, repo, discardLogger())
	ctx := context.Background()

	if err := tracker.Load(ctx, "rider-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tracker.Seen("o-1") || !tracker.Seen("o-2") {
		t.Fatalf("persisted ids not restored: %v", tracker.IDs())
	}

	tracker.Mark(ctx, "o-3")
	tracker.Forget(ctx, "o-1")
	if got := repo.IDs("rider-1"); !reflect.DeepEqual(got, []string{"o-2", "o-3"}) {
		t.Fatalf("unexpected persisted ids: %v", got)
	}

	tracker.Reset()
	if tracker.Len() != 0 {
		t.Fatalf("reset kept ids")
	}
	if len(repo.IDs("rider-1")) != 2 {
		t.Fatalf("reset must not touch the repository")
	}
}

func TestPromptTrackerRepositoryErrors(t *testing.T) {
	repo := test.NewPromptRepositoryStub(nil)
	repo.AddErr = errors.New("db down")
	tracker := NewPromptTracker(8, 0, repo, discardLogger())
	ctx := context.Background()

	if err := tracker.Load(ctx, "rider-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tracker.Mark(ctx, "o-1") {
		t.Fatalf("persistence failure must not block tracking")
	}

	repo.LoadErr = errors.New("db down")
	if err := tracker.Load(ctx, "rider-1"); err == nil {
		t.Fatalf("expected load error")
	}
}
