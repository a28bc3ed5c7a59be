package ratelimit

import (
	"sync"
	"time"
)

// Tracker implements per-nickname spam detection over a rolling window
// ARCHITECTURAL DISCOVERY: Keyed by nickname, not connection — reconnecting
// under the same nickname inherits prior history within the window, so a
// spammer cannot reset the counter by dropping the socket
type Tracker struct {
	mu        sync.Mutex
	history   map[string][]time.Time
	window    time.Duration
	threshold int
	now       func() time.Time // injected clock for deterministic tests
}

// NewTracker creates a spam tracker with the given window and threshold
// FUNCTIONAL DISCOVERY: Initialize map to prevent nil access during
// concurrent checks from independent connection goroutines
func NewTracker(window time.Duration, threshold int) *Tracker {
	return &Tracker{
		history:   make(map[string][]time.Time),
		window:    window,
		threshold: threshold,
		now:       time.Now,
	}
}

// SetClock overrides the tracker's time source. Test hook only.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// IsSpamming prunes entries older than the window and reports whether the
// nickname's remaining history already meets the threshold.
// FUNCTIONAL DISCOVERY: The check uses prior history only — the message being
// admitted is not counted here. Callers Record it separately after admission,
// so a spam-triggering message is never added to history.
func (t *Tracker) IsSpamming(nickname string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	recent := t.history[nickname][:0:0]
	for _, ts := range t.history[nickname] {
		if now.Sub(ts) < t.window {
			recent = append(recent, ts)
		}
	}
	t.history[nickname] = recent

	return len(recent) >= t.threshold
}

// Record appends the current time to the nickname's history.
// Called only on the admission path, after IsSpamming returned false.
func (t *Tracker) Record(nickname string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history[nickname] = append(t.history[nickname], t.now())
}

// Cleanup removes nicknames whose entire history has aged out of the window
// TECHNICAL DISCOVERY: Prevents unbounded map growth across long uptimes;
// safe to call from a periodic goroutine
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for nickname, entries := range t.history {
		stale := true
		for _, ts := range entries {
			if now.Sub(ts) < t.window {
				stale = false
				break
			}
		}
		if stale {
			delete(t.history, nickname)
		}
	}
}
