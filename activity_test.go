package lingo

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTracker_DefaultVisible(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()

	if !tr.Visible("never-seen") {
		t.Error("unknown messages should default to visible")
	}
}

func TestTracker_SetVisibleNotifiesSubscribers(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()

	var got atomic.Int32
	unsub := tr.Subscribe("m1", func(visible bool) {
		if !visible {
			got.Add(1)
		}
	})
	defer unsub()

	tr.SetVisible("m1", false)

	if tr.Visible("m1") {
		t.Error("m1 should be hidden")
	}
	if got.Load() != 1 {
		t.Errorf("subscriber called %d times, want 1", got.Load())
	}
}

func TestTracker_LastUnsubscribeForgetsMessage(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()

	unsub1 := tr.Subscribe("m1", func(bool) {})
	unsub2 := tr.Subscribe("m1", func(bool) {})
	tr.SetVisible("m1", false)

	unsub1()
	if tr.Visible("m1") {
		t.Error("visibility should survive while a subscriber remains")
	}

	unsub2()
	// Last subscriber gone: last-known visibility is forgotten.
	if !tr.Visible("m1") {
		t.Error("visibility should reset to the default after the last unsubscribe")
	}
}

func TestTracker_ScrollActiveQuietPeriod(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()
	tr.SetQuietPeriod(20 * time.Millisecond)

	tr.MarkScroll()
	if !tr.ScrollActive() {
		t.Fatal("scroll-active should be true immediately after a signal")
	}

	// A fresh signal restarts the quiet period.
	time.Sleep(10 * time.Millisecond)
	tr.MarkScroll()
	time.Sleep(10 * time.Millisecond)
	if !tr.ScrollActive() {
		t.Error("scroll-active should persist while signals keep arriving")
	}

	waitFor(t, func() bool { return !tr.ScrollActive() })
}

func TestTracker_OnScrollIdleFires(t *testing.T) {
	tr := NewTracker()
	defer tr.Close()
	tr.SetQuietPeriod(10 * time.Millisecond)

	var fired atomic.Int32
	unsub := tr.OnScrollIdle(func() { fired.Add(1) })
	defer unsub()

	tr.MarkScroll()
	waitFor(t, func() bool { return fired.Load() == 1 })

	tr.MarkScroll()
	waitFor(t, func() bool { return fired.Load() == 2 })
}

func TestTracker_CloseCancelsQuietTimer(t *testing.T) {
	tr := NewTracker()
	tr.SetQuietPeriod(10 * time.Millisecond)

	var fired atomic.Int32
	tr.OnScrollIdle(func() { fired.Add(1) })

	tr.MarkScroll()
	tr.Close()

	time.Sleep(30 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("idle callback should not fire after Close")
	}
}
