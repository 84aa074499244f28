package lingo

import (
	"sync"
	"time"
)

// defaultScrollQuiet is how long after the last scroll signal the tracker
// waits before declaring the user idle again.
const defaultScrollQuiet = 320 * time.Millisecond

// Tracker publishes two signals: per-message visibility and a global
// scroll-active flag. Visibility defaults to true for messages the host
// never reported, so platforms without intersection detection still
// translate everything. Scroll-active turns on immediately on any scroll
// signal and reverts only after a quiet period with no further signals;
// on reverting, scroll-idle subscribers (the mutation batcher) are
// notified so deferred work can resume.
//
// One Tracker multiplexes all messages; subscriptions return an
// unsubscribe func, and dropping the last subscriber for a message id
// forgets its last-known visibility.
type Tracker struct {
	mu     sync.Mutex
	nextID int

	visible map[string]*visEntry

	scrollActive bool
	quiet        time.Duration
	idleTimer    *time.Timer
	idleSubs     map[int]func()

	closed bool
}

type visEntry struct {
	visible bool
	subs    map[int]func(visible bool)
}

// NewTracker creates a tracker with the default quiet period.
func NewTracker() *Tracker {
	return &Tracker{
		visible:  make(map[string]*visEntry),
		quiet:    defaultScrollQuiet,
		idleSubs: make(map[int]func()),
	}
}

// SetQuietPeriod overrides the scroll-idle quiet period. Intended for
// tests.
func (t *Tracker) SetQuietPeriod(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quiet = d
}

// Visible reports the last-known visibility of a message, defaulting to
// true when the message was never observed.
func (t *Tracker) Visible(messageID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.visible[messageID]; ok {
		return e.visible
	}
	return true
}

// SetVisible records a visibility change reported by the host and fans it
// out to that message's subscribers.
func (t *Tracker) SetVisible(messageID string, visible bool) {
	t.mu.Lock()
	e, ok := t.visible[messageID]
	if !ok {
		e = &visEntry{visible: true, subs: make(map[int]func(bool))}
		t.visible[messageID] = e
	}
	e.visible = visible
	var fns []func(bool)
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(visible)
	}
}

// Subscribe registers a visibility callback for one message and returns
// an unsubscribe func. Unsubscribing the last interested party forgets
// the message's last-known visibility.
func (t *Tracker) Subscribe(messageID string, fn func(visible bool)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.visible[messageID]
	if !ok {
		e = &visEntry{visible: true, subs: make(map[int]func(bool))}
		t.visible[messageID] = e
	}
	id := t.nextID
	t.nextID++
	e.subs[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if e, ok := t.visible[messageID]; ok {
			delete(e.subs, id)
			if len(e.subs) == 0 {
				delete(t.visible, messageID)
			}
		}
	}
}

// MarkScroll records a scroll, page-navigation-key, or touch-move signal.
// Scroll-active becomes true immediately and the quiet timer restarts.
func (t *Tracker) MarkScroll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.scrollActive = true
	if t.idleTimer != nil {
		t.idleTimer.Stop()
	}
	t.idleTimer = time.AfterFunc(t.quiet, t.scrollIdle)
}

// ScrollActive reports whether the user is currently scrolling.
func (t *Tracker) ScrollActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scrollActive
}

// OnScrollIdle registers a callback fired each time scroll-active reverts
// to false. Returns an unsubscribe func.
func (t *Tracker) OnScrollIdle(fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.idleSubs[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.idleSubs, id)
	}
}

func (t *Tracker) scrollIdle() {
	t.mu.Lock()
	if t.closed || !t.scrollActive {
		t.mu.Unlock()
		return
	}
	t.scrollActive = false
	var fns []func()
	for _, fn := range t.idleSubs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close cancels the quiet timer so no callback touches disposed state.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
}
