package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

func TestQueueNonBlockingEnqueue(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	for i := 0; i < 1000; i++ {
		if ok := q.Enqueue(model.Update{Kind: model.KindCommand, Command: "start"}); !ok {
			t.Fatalf("enqueue failed at %d", i)
		}
	}
	if q.BacklogSize() == 0 {
		t.Fatalf("expected backlog > 0")
	}
}

func TestQueueShutdownIntake(t *testing.T) {
	q := New(1)
	q.CloseIntake()
	if !q.IsShuttingDown() {
		t.Fatalf("expected shutting down true")
	}
	if ok := q.Enqueue(model.Update{}); ok {
		t.Fatalf("expected enqueue false when shutting down")
	}
}

func TestManagerDrainCountsFailures(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	h := func(_ context.Context, u model.Update) error {
		mu.Lock()
		seen[u.ID]++
		mu.Unlock()
		switch u.Command {
		case "fail":
			return errors.New("boom")
		case "panic":
			panic("handler bug")
		}
		return nil
	}
	mgr := NewManager(4, New(16), h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)
	defer mgr.Stop()

	cmds := []string{"ok", "fail", "panic"}
	for i := 0; i < 99; i++ {
		u := model.Update{ID: fmt.Sprintf("u-%d", i), Kind: model.KindCommand, Command: cmds[i%3]}
		if !mgr.Enqueue(u) {
			t.Fatalf("enqueue rejected")
		}
	}
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDrain()
	if ok := mgr.DrainUntil(ctxDrain); !ok {
		t.Fatalf("drain timeout")
	}
	m := mgr.Metrics()
	if m.Enqueued != 99 || m.Processed != 99 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if m.Failed != 66 {
		t.Fatalf("expected 66 failures, got %d", m.Failed)
	}
	mu.Lock()
	defer mu.Unlock()
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("update %s handled %d times", id, n)
		}
	}
	if len(seen) != 99 {
		t.Fatalf("expected 99 distinct updates, got %d", len(seen))
	}
}

func TestManagerInFlightSurvivesStop(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	h := func(ctx context.Context, _ model.Update) error {
		close(started)
		<-release
		done <- ctx.Err()
		return nil
	}
	mgr := NewManager(1, New(1), h)
	mgr.Start(context.Background())
	mgr.Enqueue(model.Update{ID: "x"})
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never started")
	}
	mgr.CloseIntake()
	mgr.Stop()
	close(release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handler context canceled by Stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler did not finish")
	}
	if mgr.WorkerCount() != 0 {
		t.Fatalf("expected workers stopped")
	}
	if mgr.Enqueue(model.Update{}) {
		t.Fatalf("expected intake closed")
	}
}
