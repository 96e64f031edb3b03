package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestControllerEnforcesLimit(t *testing.T) {
	store := NewMemoryStore()
	controller := NewController(store, 2, 4*time.Hour)
	ctx := context.Background()

	first, err := controller.Start(ctx, "user-1", "ep-1")
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if first == "" {
		t.Fatal("expected session id")
	}

	if _, err := controller.Start(ctx, "user-1", "ep-2"); err != nil {
		t.Fatalf("second start: %v", err)
	}

	if _, err := controller.Start(ctx, "user-1", "ep-3"); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}

	count, err := controller.Active(ctx, "user-1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 active sessions after rejection, got %d", count)
	}
}

func TestControllerEndThenStart(t *testing.T) {
	store := NewMemoryStore()
	controller := NewController(store, 2, 4*time.Hour)
	ctx := context.Background()

	first, err := controller.Start(ctx, "user-1", "ep-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := controller.Start(ctx, "user-1", "ep-2"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := controller.End(ctx, "user-1", first); err != nil {
		t.Fatalf("end: %v", err)
	}

	if _, err := controller.Start(ctx, "user-1", "ep-3"); err != nil {
		t.Fatalf("start after end should not hit the limit: %v", err)
	}
}

func TestControllerEndIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	controller := NewController(store, 2, 4*time.Hour)
	ctx := context.Background()

	if err := controller.End(ctx, "user-1", "never-started"); err != nil {
		t.Fatalf("ending an absent session should not error: %v", err)
	}

	id, err := controller.Start(ctx, "user-1", "ep-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := controller.End(ctx, "user-1", id); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := controller.End(ctx, "user-1", id); err != nil {
		t.Fatalf("double end: %v", err)
	}
}

func TestControllerSessionsExpireWithSet(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	store.WithNowFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})

	controller := NewController(store, 2, 4*time.Hour)
	ctx := context.Background()

	if _, err := controller.Start(ctx, "user-1", "ep-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := controller.Start(ctx, "user-1", "ep-2"); err != nil {
		t.Fatalf("start: %v", err)
	}

	mu.Lock()
	current = current.Add(4*time.Hour + time.Minute)
	mu.Unlock()

	count, err := controller.Active(ctx, "user-1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected expired set to be empty, got %d", count)
	}

	// The set vanished, so the user can start fresh sessions again.
	if _, err := controller.Start(ctx, "user-1", "ep-3"); err != nil {
		t.Fatalf("start after expiry: %v", err)
	}
}

func TestMemoryStoreAddIsAtomicUnderConcurrency(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Add(ctx, "user-1", fmt.Sprintf("session-%d", i), 2, time.Hour)
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			} else if !errors.Is(err, ErrTooManySessions) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if admitted != 2 {
		t.Fatalf("expected exactly 2 admissions, got %d", admitted)
	}
}
