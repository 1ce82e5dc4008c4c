package ratelimit

import (
	"testing"
	"time"
)

func TestBudgetExhaustionAndRecovery(t *testing.T) {
	base := time.Unix(0, 0)
	cur := base
	l := NewWithBudget(3, 10*time.Second)
	l.now = func() time.Time { return cur }

	for i := 0; i < 3; i++ {
		if !l.CanSearch() {
			t.Fatalf("search %d: expected budget available", i)
		}
		l.RecordSearch()
	}
	if l.CanSearch() {
		t.Fatal("expected budget exhausted after 3 searches")
	}
	if d, ok := l.TimeUntilNextSlot(); !ok || d != 10*time.Second {
		t.Fatalf("TimeUntilNextSlot = (%v, %v), want (10s, true)", d, ok)
	}

	cur = base.Add(10 * time.Second)
	if !l.CanSearch() {
		t.Fatal("expected budget recovered after window elapsed")
	}
	if got := l.SearchesRemaining(); got != 3 {
		t.Fatalf("SearchesRemaining = %d, want 3", got)
	}
}

func TestQueueFIFO(t *testing.T) {
	l := New()
	l.QueueSearch(QueuedSearch{Token: 1, Query: "a"})
	l.QueueSearch(QueuedSearch{Token: 2, Query: "b"})
	if got := l.QueuedCount(); got != 2 {
		t.Fatalf("QueuedCount = %d, want 2", got)
	}
	first, ok := l.PopQueued()
	if !ok || first.Token != 1 {
		t.Fatalf("PopQueued = %+v, %v, want token 1", first, ok)
	}
	second, ok := l.PopQueued()
	if !ok || second.Token != 2 {
		t.Fatalf("PopQueued = %+v, %v, want token 2", second, ok)
	}
	if _, ok := l.PopQueued(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestDefaultBudgetMatchesServerObservation(t *testing.T) {
	l := New()
	if got := l.SearchesRemaining(); got != DefaultMaxSearches {
		t.Fatalf("SearchesRemaining = %d, want %d", got, DefaultMaxSearches)
	}
}
