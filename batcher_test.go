package lingo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recordingApplier captures applied mutations for inspection.
type recordingApplier struct {
	mu      sync.Mutex
	applied []appliedMutation
	err     error
}

type appliedMutation struct {
	channelID string
	messageID string
	mutation  Mutation
}

func (r *recordingApplier) ApplyContent(channelID, messageID string, m Mutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, appliedMutation{channelID, messageID, m})
	return r.err
}

func (r *recordingApplier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.applied)
}

func (r *recordingApplier) last() appliedMutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied[len(r.applied)-1]
}

func newTestBatcher(a Applier, scrollActive func() bool) *Batcher {
	b := NewBatcher(a, scrollActive, zerolog.Nop())
	b.SetDelays(5*time.Millisecond, 10*time.Millisecond)
	return b
}

func TestBatcher_FlushAppliesPending(t *testing.T) {
	a := &recordingApplier{}
	b := newTestBatcher(a, nil)
	defer b.Close()

	b.Enqueue("m1", Mutation{ChannelID: "c1", Content: "hola"})

	waitFor(t, func() bool { return a.count() == 1 })
	got := a.last()
	if got.messageID != "m1" || got.channelID != "c1" || got.mutation.Content != "hola" {
		t.Errorf("applied %+v", got)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", b.Pending())
	}
}

func TestBatcher_LastWriteWins(t *testing.T) {
	a := &recordingApplier{}
	var active atomic.Bool
	active.Store(true)
	b := newTestBatcher(a, active.Load)
	defer b.Close()

	b.Enqueue("m1", Mutation{Content: "first"})
	b.Enqueue("m1", Mutation{Content: "second"})

	if b.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1 (superseded)", b.Pending())
	}

	active.Store(false)
	b.Kick()
	waitFor(t, func() bool { return a.count() == 1 })
	if got := a.last().mutation.Content; got != "second" {
		t.Errorf("applied %q, want the superseding mutation", got)
	}
}

func TestBatcher_NoFlushWhileScrollActive(t *testing.T) {
	a := &recordingApplier{}
	var active atomic.Bool
	active.Store(true)
	b := newTestBatcher(a, active.Load)
	defer b.Close()

	b.Enqueue("m1", Mutation{Content: "hola"})
	b.Enqueue("m2", Mutation{Content: "mundo"})

	// The flush tick must defer, not apply, while scrolling.
	time.Sleep(40 * time.Millisecond)
	if a.count() != 0 {
		t.Fatalf("%d mutations applied during active scroll, want 0", a.count())
	}

	active.Store(false)
	waitFor(t, func() bool { return a.count() == 2 })
}

func TestBatcher_ApplyNowBypassesScrollGate(t *testing.T) {
	a := &recordingApplier{}
	b := newTestBatcher(a, func() bool { return true })
	defer b.Close()

	// A manual toggle lands immediately even though scroll-active is
	// permanently true here.
	b.ApplyNow("m1", Mutation{Content: "hola"})
	if a.count() != 1 {
		t.Fatalf("count = %d, want immediate apply", a.count())
	}
}

func TestBatcher_ApplyNowSupersedesPending(t *testing.T) {
	a := &recordingApplier{}
	b := newTestBatcher(a, func() bool { return true })
	defer b.Close()

	b.Enqueue("m1", Mutation{Content: "queued"})
	b.ApplyNow("m1", Mutation{Content: "manual"})

	if b.Pending() != 0 {
		t.Errorf("Pending = %d, want 0 after manual apply", b.Pending())
	}
	if got := a.last().mutation.Content; got != "manual" {
		t.Errorf("applied %q, want %q", got, "manual")
	}
}

func TestBatcher_BatchSizeBounded(t *testing.T) {
	a := &recordingApplier{}
	b := newTestBatcher(a, nil)
	defer b.Close()

	for i := 0; i < 12; i++ {
		b.Enqueue(string(rune('a'+i)), Mutation{Content: "x"})
	}

	// All 12 are eventually applied across multiple ticks.
	waitFor(t, func() bool { return a.count() == 12 })
}

func TestBatcher_ApplyErrorsSwallowed(t *testing.T) {
	a := &recordingApplier{err: errors.New("message gone")}
	b := newTestBatcher(a, nil)
	defer b.Close()

	b.Enqueue("m1", Mutation{Content: "hola"})
	waitFor(t, func() bool { return a.count() == 1 })

	// Still operational after the failure.
	b.Enqueue("m2", Mutation{Content: "mundo"})
	waitFor(t, func() bool { return a.count() == 2 })
}

func TestBatcher_ClearDropsPending(t *testing.T) {
	a := &recordingApplier{}
	b := newTestBatcher(a, func() bool { return true })
	defer b.Close()

	b.Enqueue("m1", Mutation{Content: "hola"})
	b.Clear()

	if b.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", b.Pending())
	}
}

func TestBatcher_CloseCancelsTimer(t *testing.T) {
	a := &recordingApplier{}
	b := newTestBatcher(a, nil)

	b.Enqueue("m1", Mutation{Content: "hola"})
	b.Close()

	time.Sleep(30 * time.Millisecond)
	if a.count() != 0 {
		t.Errorf("count = %d, want 0 after close", a.count())
	}
}
