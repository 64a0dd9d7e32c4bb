package gesture

import (
	"sync"
	"time"
)

// DefaultWindow is how long a count must hold before it is accepted.
const DefaultWindow = time.Second

// NoCount marks the absence of a stabilized or pending count.
const NoCount = -1

// Stabilizer debounces noisy per-frame finger counts.
//
// It is IDLE while the raw count matches the stabilized count. A different
// count starts PENDING; the candidate is accepted once it has been seen
// continuously for longer than the window. Any other count seen while
// PENDING restarts the timer with that count as the new candidate, and a
// return to the stabilized count drops back to IDLE.
type Stabilizer struct {
	window time.Duration

	mu        sync.Mutex
	stable    int
	candidate int
	since     time.Time
}

// NewStabilizer creates a Stabilizer with the given window.
// Non-positive windows fall back to DefaultWindow.
func NewStabilizer(window time.Duration) *Stabilizer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Stabilizer{
		window:    window,
		stable:    NoCount,
		candidate: NoCount,
	}
}

// Window returns the stability window.
func (s *Stabilizer) Window() time.Duration {
	return s.window
}

// Update feeds the raw count observed at time at. It returns the stabilized
// count and whether it changed on this call.
func (s *Stabilizer) Update(count int, at time.Time) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count == s.stable {
		s.candidate = NoCount
		return s.stable, false
	}

	if count != s.candidate {
		s.candidate = count
		s.since = at
		return s.stable, false
	}

	if at.Sub(s.since) > s.window {
		s.stable = count
		s.candidate = NoCount
		return s.stable, true
	}

	return s.stable, false
}

// Stable returns the stabilized count, if any has been accepted yet.
func (s *Stabilizer) Stable() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stable, s.stable != NoCount
}

// Pending returns the candidate count being timed, if any.
func (s *Stabilizer) Pending() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate, s.candidate != NoCount
}

// Reset forgets both the stabilized count and any pending candidate.
func (s *Stabilizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stable = NoCount
	s.candidate = NoCount
	s.since = time.Time{}
}
