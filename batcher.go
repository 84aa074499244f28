package lingo

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// defaultFlushDelay is the pause between flush ticks.
	defaultFlushDelay = 50 * time.Millisecond
	// defaultFlushBatch is the number of mutations applied per tick, kept
	// small so a tick never stalls the host's render loop.
	defaultFlushBatch = 5
	// defaultScrollDefer is how long a flush is pushed back while the user
	// is actively scrolling.
	defaultScrollDefer = 150 * time.Millisecond
)

// Mutation is an intended but not-yet-applied content change for one
// displayed message. Re-enqueueing for the same message before the flush
// supersedes the earlier intent (last-write-wins).
type Mutation struct {
	ChannelID  string
	Content    string // Content to display after the flush
	Original   string // Pristine content, for later restoration
	Translated string // Translated content, for toggling back
}

// Applier is the host's write-back mechanism. Implementations must
// tolerate ids that no longer exist; any returned error is swallowed.
type Applier interface {
	ApplyContent(channelID, messageID string, m Mutation) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(channelID, messageID string, m Mutation) error

// ApplyContent calls f.
func (f ApplierFunc) ApplyContent(channelID, messageID string, m Mutation) error {
	return f(channelID, messageID, m)
}

// Batcher coalesces per-message content mutations into a rate-limited,
// activity-aware flush loop so visual updates don't fight user scrolling.
// While scroll-active is true no flush runs; attempts are re-armed until
// scrolling ends. A manual toggle bypasses the loop entirely via
// ApplyNow.
type Batcher struct {
	mu           sync.Mutex
	apply        Applier
	scrollActive func() bool
	log          zerolog.Logger

	pending map[string]Mutation
	order   []string

	delay      time.Duration
	batchSize  int
	deferDelay time.Duration

	timer  *time.Timer
	closed bool
}

// NewBatcher creates a batcher writing through apply, gated by the
// scrollActive probe. Both may be nil: a nil applier makes every flush a
// no-op, a nil probe disables the scroll gate.
func NewBatcher(apply Applier, scrollActive func() bool, log zerolog.Logger) *Batcher {
	if scrollActive == nil {
		scrollActive = func() bool { return false }
	}
	return &Batcher{
		apply:        apply,
		scrollActive: scrollActive,
		log:          log,
		pending:      make(map[string]Mutation),
		delay:        defaultFlushDelay,
		batchSize:    defaultFlushBatch,
		deferDelay:   defaultScrollDefer,
	}
}

// SetDelays overrides the flush cadence. Intended for tests.
func (b *Batcher) SetDelays(flush, scrollDefer time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = flush
	b.deferDelay = scrollDefer
}

// Enqueue records a mutation for messageID, superseding any pending one,
// and arms the flush loop.
func (b *Batcher) Enqueue(messageID string, m Mutation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if _, exists := b.pending[messageID]; !exists {
		b.order = append(b.order, messageID)
	}
	b.pending[messageID] = m
	b.armLocked(b.delay)
}

// ApplyNow applies a mutation immediately, bypassing the flush loop and
// the scroll gate. Used for manual show-original / show-translation
// toggles, which must land regardless of scroll state. Any pending
// mutation for the message is dropped as superseded.
func (b *Batcher) ApplyNow(messageID string, m Mutation) {
	b.mu.Lock()
	delete(b.pending, messageID)
	b.mu.Unlock()
	b.applyOne(messageID, m)
}

// Kick re-arms the flush loop if mutations are pending. Called when
// scroll-active reverts to false.
func (b *Batcher) Kick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || len(b.pending) == 0 {
		return
	}
	b.armLocked(b.delay)
}

// Pending reports the number of queued mutations.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Clear drops all pending mutations without applying them. Used on full
// cache invalidation.
func (b *Batcher) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = make(map[string]Mutation)
	b.order = nil
}

// Close cancels the flush timer. Pending mutations are dropped with the
// process lifetime.
func (b *Batcher) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// armLocked schedules a flush tick if one is not already scheduled.
func (b *Batcher) armLocked(d time.Duration) {
	if b.timer != nil {
		return
	}
	b.timer = time.AfterFunc(d, b.flushTick)
}

func (b *Batcher) flushTick() {
	b.mu.Lock()
	b.timer = nil
	if b.closed {
		b.mu.Unlock()
		return
	}
	if b.scrollActive() {
		// Hard invariant: no mutations while the user is scrolling.
		b.armLocked(b.deferDelay)
		b.mu.Unlock()
		return
	}

	n := b.batchSize
	if n > len(b.order) {
		n = len(b.order)
	}
	batch := make([]string, 0, n)
	muts := make([]Mutation, 0, n)
	for _, id := range b.order[:n] {
		if m, ok := b.pending[id]; ok {
			batch = append(batch, id)
			muts = append(muts, m)
			delete(b.pending, id)
		}
	}
	b.order = b.order[n:]
	if len(b.pending) > 0 {
		b.armLocked(b.delay)
	}
	b.mu.Unlock()

	for i, id := range batch {
		b.applyOne(id, muts[i])
	}
}

func (b *Batcher) applyOne(messageID string, m Mutation) {
	if b.apply == nil {
		return
	}
	if err := b.apply.ApplyContent(m.ChannelID, messageID, m); err != nil {
		// The message may have left the consumer's state; never fatal.
		b.log.Debug().Err(err).Str("message", messageID).Msg("write-back failed")
	}
}
