package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/stickynotes/internal/storage"
)

func TestSchedulerStressWithConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	engine, err := storage.Open(ctx, filepath.Join(t.TempDir(), "stress.db"), []byte("stress-test-key-0123456789abcdef"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer engine.Close()

	sink := NewChannelSink(4096)
	s := New(engine, sink, Config{Interval: 5 * time.Millisecond})
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	const workers = 8
	const perWorker = 25
	past := time.Now().Add(-time.Minute).Unix()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := engine.CreateNote(ctx, fmt.Sprintf("w%d-%d", w, i), nil)
				if err != nil {
					t.Errorf("create note: %v", err)
					return
				}
				if _, err := engine.CreateReminder(ctx, id, past); err != nil {
					t.Errorf("create reminder: %v", err)
					return
				}
				if _, err := engine.TogglePin(ctx, id); err != nil {
					t.Errorf("toggle pin: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	total := workers * perWorker
	seen := make(map[int64]bool, total)
	deadline := time.After(5 * time.Second)
	for len(seen) < total {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting notifications: seen=%d total=%d dropped=%d", len(seen), total, sink.Dropped())
		case n := <-sink.C():
			seen[n.ReminderID] = true
			if err := engine.MarkTriggered(ctx, n.ReminderID); err != nil {
				t.Fatalf("mark triggered: %v", err)
			}
		}
	}
	s.Stop()

	pending, err := engine.ListDueReminders(ctx, storage.DueQuery{})
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected every reminder acknowledged, %d pending", len(pending))
	}
	if s.Stats().FailedPolls != 0 {
		t.Fatalf("unexpected failed polls: %#v", s.Stats())
	}
}
