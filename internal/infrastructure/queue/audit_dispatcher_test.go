package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

type captureStore struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	wg     sync.WaitGroup
	fail   map[string]error
}

func newCaptureStore(expected int) *captureStore {
	s := &captureStore{fail: map[string]error{}}
	s.wg.Add(expected)
	return s
}

func (s *captureStore) Insert(_ context.Context, event domain.AuditEvent) error {
	defer s.wg.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[event.ID]; ok {
		return err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *captureStore) wait(t *testing.T) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for audit writes")
	}
}

func (s *captureStore) stored() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func auditEvent(id, actor string) domain.AuditEvent {
	return domain.AuditEvent{
		ID:         id,
		Action:     domain.AuditLoginSuccess,
		ActorID:    actor,
		IP:         "10.0.0.1",
		RecordedAt: time.Now().UTC(),
	}
}

func TestAuditDispatcher_WritesAllEvents(t *testing.T) {
	store := newCaptureStore(20)
	d := NewAuditDispatcher(3, store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		d.Record(auditEvent(fmt.Sprintf("ev-%02d", i), fmt.Sprintf("actor-%d", i%5)))
	}
	store.wait(t)

	if got := len(store.stored()); got != 20 {
		t.Fatalf("expected 20 stored events, got %d", got)
	}
}

func TestAuditDispatcher_PerActorOrderPreserved(t *testing.T) {
	const perActor = 8
	actors := []string{"alice", "bob", "carol"}

	store := newCaptureStore(perActor * len(actors))
	d := NewAuditDispatcher(2, store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for seq := 0; seq < perActor; seq++ {
		for _, actor := range actors {
			e := auditEvent(fmt.Sprintf("%s-%d", actor, seq), actor)
			e.Metadata = map[string]any{"seq": seq}
			d.Record(e)
		}
	}
	store.wait(t)

	last := map[string]int{}
	for _, e := range store.stored() {
		seq := e.Metadata["seq"].(int)
		if prev, ok := last[e.ActorID]; ok && seq <= prev {
			t.Fatalf("actor %s: event %d stored after %d", e.ActorID, seq, prev)
		}
		last[e.ActorID] = seq
	}
	for _, actor := range actors {
		if last[actor] != perActor-1 {
			t.Fatalf("actor %s: missing events, last seq %d", actor, last[actor])
		}
	}
}

func TestAuditDispatcher_RecordNeverBlocksOnFullQueue(t *testing.T) {
	store := newCaptureStore(0)
	d := NewAuditDispatcher(1, store, zerolog.Nop())
	// Never started: nothing drains, so the single writer queue fills up.

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < channelBuffer+50; i++ {
			d.Record(auditEvent(fmt.Sprintf("ev-%03d", i), "alice"))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked on a full writer queue")
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected %d buffered events, got %d", channelBuffer, got)
	}
}

func TestAuditDispatcher_StoreErrorDoesNotStopWorker(t *testing.T) {
	store := newCaptureStore(3)
	store.fail["bad"] = errors.New("mongo down")

	d := NewAuditDispatcher(1, store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(auditEvent("ok-1", "alice"))
	d.Record(auditEvent("bad", "alice"))
	d.Record(auditEvent("ok-2", "alice"))
	store.wait(t)

	got := store.stored()
	if len(got) != 2 || got[0].ID != "ok-1" || got[1].ID != "ok-2" {
		t.Fatalf("expected ok-1 and ok-2 stored in order, got %+v", got)
	}
}
