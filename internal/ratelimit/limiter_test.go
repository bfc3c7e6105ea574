package ratelimit

import (
	"testing"
	"time"
)

// fakeClock lets tests advance time manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(windows ...Window) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New(Profile{Name: "test", Windows: windows})
	l.now = clock.now
	return l, clock
}

func TestAdmissionSequence(t *testing.T) {
	// max=2 per 1000ms: first two admitted, third denied until the
	// first request ages out of the window.
	l, clock := newTestLimiter(Window{MaxRequests: 2, Duration: time.Second})

	if !l.TryAcquire() {
		t.Fatal("first request should be admitted")
	}
	clock.advance(50 * time.Millisecond)
	if !l.TryAcquire() {
		t.Fatal("second request should be admitted")
	}
	clock.advance(50 * time.Millisecond)
	if l.TryAcquire() {
		t.Fatal("third request within window should be denied")
	}

	wait := l.TimeUntilNextSlot()
	if wait <= 0 {
		t.Fatalf("expected positive wait, got %v", wait)
	}
	// First request was 100ms ago, so the slot opens in ~900ms.
	if wait != 900*time.Millisecond {
		t.Errorf("expected 900ms wait, got %v", wait)
	}

	clock.advance(wait)
	if !l.TryAcquire() {
		t.Error("request should be admitted after the window slides")
	}
}

func TestNeverExceedsWindow(t *testing.T) {
	// Arbitrary admission/time sequence: count admissions inside each
	// trailing window and verify the cap holds throughout.
	const max = 5
	window := 500 * time.Millisecond
	l, clock := newTestLimiter(Window{MaxRequests: max, Duration: window})

	var admitted []time.Time
	steps := []time.Duration{
		0, 10, 10, 10, 10, 10, 10, 100, 100, 100,
		5, 5, 5, 250, 250, 30, 30, 30, 30, 600,
		1, 1, 1, 1, 1, 1, 1, 1,
	}
	for _, step := range steps {
		clock.advance(step * time.Millisecond)
		if l.TryAcquire() {
			admitted = append(admitted, clock.t)
		}

		// Invariant: no trailing window holds more than max admissions.
		count := 0
		cutoff := clock.t.Add(-window)
		for _, at := range admitted {
			if at.After(cutoff) {
				count++
			}
		}
		if count > max {
			t.Fatalf("window holds %d admissions, max is %d", count, max)
		}
	}

	if len(admitted) == 0 {
		t.Fatal("expected at least some admissions")
	}
}

func TestDualWindows(t *testing.T) {
	// Both windows must have room; the long window keeps denying after
	// the short one clears.
	l, clock := newTestLimiter(
		Window{MaxRequests: 2, Duration: time.Second},
		Window{MaxRequests: 3, Duration: time.Minute},
	)

	for i := 0; i < 2; i++ {
		if !l.TryAcquire() {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if l.TryAcquire() {
		t.Fatal("short window should deny the third burst request")
	}

	clock.advance(2 * time.Second)
	if !l.TryAcquire() {
		t.Fatal("third request should pass once the short window slides")
	}
	// Long window now holds 3 of 3.
	clock.advance(2 * time.Second)
	if l.TryAcquire() {
		t.Fatal("long window should deny the fourth request")
	}

	clock.advance(time.Minute)
	if !l.TryAcquire() {
		t.Fatal("fourth request should pass once the long window slides")
	}
}

func TestCanAdmitDoesNotConsume(t *testing.T) {
	l, _ := newTestLimiter(Window{MaxRequests: 1, Duration: time.Second})

	for i := 0; i < 5; i++ {
		if !l.CanAdmit() {
			t.Fatal("CanAdmit must not consume a slot")
		}
	}
	l.RecordRequest()
	if l.CanAdmit() {
		t.Fatal("expected denial after the slot is recorded")
	}
}

func TestTimeUntilNextSlotIdle(t *testing.T) {
	l, _ := newTestLimiter(Window{MaxRequests: 3, Duration: time.Second})
	if wait := l.TimeUntilNextSlot(); wait != 0 {
		t.Errorf("idle limiter should report zero wait, got %v", wait)
	}
}

func TestProfiles(t *testing.T) {
	tests := []struct {
		name        string
		profile     Profile
		wantWindows int
	}{
		{"personal", ProfileByName("personal"), 2},
		{"production", ProfileByName("production"), 2},
		{"unknown falls back to personal", ProfileByName("bogus"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.profile.Windows) != tt.wantWindows {
				t.Errorf("got %d windows, want %d", len(tt.profile.Windows), tt.wantWindows)
			}
			for _, w := range tt.profile.Windows {
				if w.MaxRequests <= 0 || w.Duration <= 0 {
					t.Errorf("invalid window %+v", w)
				}
			}
		})
	}

	if ProfileByName("bogus").Name != "personal" {
		t.Error("unknown profile should resolve to personal")
	}
}
