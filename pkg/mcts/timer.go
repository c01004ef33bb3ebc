package mcts

import (
	"time"
)

// Search clock, with an optional deadline
type stopwatch struct {
	start time.Time
	// Zero when the search has no time limit
	deadline time.Time
}

// Start measuring from now, movetime in milliseconds, non-positive disables the deadline
func (s *stopwatch) restart(movetime int) {
	s.start = time.Now()
	s.deadline = time.Time{}
	if movetime > 0 {
		s.deadline = s.start.Add(time.Duration(movetime) * time.Millisecond)
	}
}

func (s *stopwatch) expired() bool {
	return !s.deadline.IsZero() && !time.Now().Before(s.deadline)
}

// Milliseconds since the restart, at least 1
func (s *stopwatch) elapsed() uint32 {
	return uint32(max(time.Since(s.start).Milliseconds(), 1))
}
