package ratelimit

import (
	"sync"
	"time"
)

// Window is one rolling quota constraint: at most MaxRequests within
// any trailing Duration.
type Window struct {
	MaxRequests int
	Duration    time.Duration
}

// Profile is a named set of windows matching an API key tier.
type Profile struct {
	Name    string
	Windows []Window
}

// PersonalProfile uses conservative values below the published dev-key
// caps (actual: 20/1s and 100/2min).
func PersonalProfile() Profile {
	return Profile{
		Name: "personal",
		Windows: []Window{
			{MaxRequests: 15, Duration: time.Second},
			{MaxRequests: 90, Duration: 2 * time.Minute},
		},
	}
}

// ProductionProfile uses conservative values below the production-key
// caps (actual: 500/10s and 30000/10min).
func ProductionProfile() Profile {
	return Profile{
		Name: "production",
		Windows: []Window{
			{MaxRequests: 450, Duration: 10 * time.Second},
			{MaxRequests: 27000, Duration: 10 * time.Minute},
		},
	}
}

// ProfileByName resolves a profile from configuration. Unknown names
// fall back to the personal profile.
func ProfileByName(name string) Profile {
	if name == "production" {
		return ProductionProfile()
	}
	return PersonalProfile()
}

// Limiter tracks request timestamps against one or more rolling
// windows. All methods are safe for concurrent use; the request log is
// the single shared mutable structure and is guarded by one mutex so
// an admission check and the recording of the admitted request cannot
// race past the count.
type Limiter struct {
	mu      sync.Mutex
	windows []Window
	logs    [][]time.Time

	// now is swappable for tests
	now func() time.Time
}

// New creates a limiter for the given profile.
func New(profile Profile) *Limiter {
	logs := make([][]time.Time, len(profile.Windows))
	for i := range logs {
		logs[i] = make([]time.Time, 0)
	}
	return &Limiter{
		windows: profile.Windows,
		logs:    logs,
		now:     time.Now,
	}
}

// prune drops log entries older than each window. Caller must hold mu.
func (l *Limiter) prune(now time.Time) {
	for i, w := range l.windows {
		cutoff := now.Add(-w.Duration)
		kept := l.logs[i][:0]
		for _, t := range l.logs[i] {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		l.logs[i] = kept
	}
}

// CanAdmit reports whether another request fits every window right now.
func (l *Limiter) CanAdmit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canAdmitLocked(l.now())
}

func (l *Limiter) canAdmitLocked(now time.Time) bool {
	l.prune(now)
	for i, w := range l.windows {
		if len(l.logs[i]) >= w.MaxRequests {
			return false
		}
	}
	return true
}

// RecordRequest logs an admitted request against every window. Call
// only after admission is confirmed.
func (l *Limiter) RecordRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for i := range l.logs {
		l.logs[i] = append(l.logs[i], now)
	}
}

// TryAcquire checks admission and records the request in one critical
// section. This is what concurrent callers should use; a separate
// CanAdmit/RecordRequest pair is only race-free from a single owner.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !l.canAdmitLocked(now) {
		return false
	}
	for i := range l.logs {
		l.logs[i] = append(l.logs[i], now)
	}
	return true
}

// TimeUntilNextSlot returns how long until a request could be
// admitted. Zero means a slot is free now. No retry policy lives here:
// callers decide whether to wait it out or fail fast.
func (l *Limiter) TimeUntilNextSlot() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	var wait time.Duration
	for i, w := range l.windows {
		if len(l.logs[i]) < w.MaxRequests {
			continue
		}
		// Window is full; a slot opens when its oldest entry ages out.
		idx := len(l.logs[i]) - w.MaxRequests
		d := l.logs[i][idx].Add(w.Duration).Sub(now)
		if d > wait {
			wait = d
		}
	}
	return wait
}
