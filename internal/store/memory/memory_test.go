package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

func newStore() *Store {
	return New(1000, time.Minute)
}

func event(incident string) *models.DispatchEvent {
	return &models.DispatchEvent{
		ID:         incident + "-id",
		IncidentID: incident,
		CallSID:    "CA123",
		EventType:  models.EventTypeLocationUpdate,
		ReceivedAt: time.Now().UTC(),
	}
}

func TestStore_AppendAndList(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	for _, inc := range []string{"inc-1", "inc-2", "inc-3"} {
		stored, err := s.Append(ctx, event(inc), "")
		if err != nil || !stored {
			t.Fatalf("Append(%s) = %v, %v", inc, stored, err)
		}
	}

	events, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	// Newest first.
	if events[0].IncidentID != "inc-3" || events[2].IncidentID != "inc-1" {
		t.Fatalf("unexpected order: %s, %s, %s",
			events[0].IncidentID, events[1].IncidentID, events[2].IncidentID)
	}
}

func TestStore_DuplicateKeySuppressed(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	stored, err := s.Append(ctx, event("inc-1"), "key-1")
	if err != nil || !stored {
		t.Fatalf("first Append = %v, %v", stored, err)
	}

	seen, err := s.Seen(ctx, "key-1")
	if err != nil || !seen {
		t.Fatalf("Seen = %v, %v", seen, err)
	}

	stored, err = s.Append(ctx, event("inc-1"), "key-1")
	if err != nil {
		t.Fatalf("second Append: %v", err)
	}
	if stored {
		t.Fatal("duplicate key was stored")
	}

	events, _ := s.List(ctx)
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
}

func TestStore_EmptyKeyNeverDeduped(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stored, err := s.Append(ctx, event(fmt.Sprintf("inc-%d", i)), "")
		if err != nil || !stored {
			t.Fatalf("Append #%d = %v, %v", i, stored, err)
		}
	}

	events, _ := s.List(ctx)
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
}

// Concurrent deliveries with the same key must store exactly one event.
func TestStore_ConcurrentDuplicatesStoreOnce(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	const goroutines = 40
	var wg sync.WaitGroup
	var storedCount atomic.Int32

	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			stored, err := s.Append(ctx, event("inc-race"), "same-key")
			if err != nil {
				t.Errorf("Append: %v", err)
				return
			}
			if stored {
				storedCount.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if storedCount.Load() != 1 {
		t.Fatalf("stored %d events, want 1", storedCount.Load())
	}
	events, _ := s.List(ctx)
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
}
