package mcts

import (
	"context"
	"strings"
	"sync/atomic"
)

type StopReason int

const (
	StopNone      StopReason = 0
	StopInterrupt StopReason = 1 // Stopped by user, by calling .SetStop(true) or context cancellation
	StopMovetime  StopReason = 2 // Time limit reached
	StopNodes     StopReason = 4 // Node limit reached
	StopCycles    StopReason = 8 // Cycle limit (or the iteration budget) reached
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopMovetime, "Movetime"},
		{StopNodes, "Nodes"},
		{StopCycles, "Cycles"},
	}

	names := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			names = append(names, r.name)
		}
	}

	return strings.Join(names, "|")
}

type Limiter struct {
	limits *Limits
	clock  stopwatch
	budget uint32
	stop   atomic.Bool
	reason StopReason
	ctx    context.Context
}

func NewLimiter() *Limiter {
	return &Limiter{
		limits: DefaultLimits(),
		budget: DefaultCyclesLimit,
		ctx:    context.Background(),
	}
}

// Prepare for a new search with at most 'budget' iterations
func (l *Limiter) Reset(budget uint32) {
	l.clock.restart(l.limits.Movetime)
	l.stop.Store(false)
	l.reason = StopNone
	l.budget = budget
	if !l.limits.Infinite {
		l.budget = min(l.budget, l.limits.Cycles)
	}
}

func (l *Limiter) StopReason() StopReason {
	return l.reason
}

func (l *Limiter) SetContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	l.ctx = ctx
}

func (l *Limiter) Context() context.Context {
	return l.ctx
}

// Safe to call from other goroutines
func (l *Limiter) SetStop(v bool) {
	l.stop.Store(v)
}

// Get the stop signal, set either by SetStop or by the context
func (l *Limiter) Stop() bool {
	select {
	case <-l.ctx.Done():
		l.stop.Store(true)
	default:
	}
	return l.stop.Load()
}

func (l *Limiter) SetLimits(limits *Limits) {
	if limits == nil {
		limits = DefaultLimits()
	}
	l.limits = limits
}

func (l *Limiter) Limits() *Limits {
	return l.limits
}

// Get elapsed time in ms (from the last 'Reset' call)
func (l *Limiter) Elapsed() uint32 {
	return l.clock.elapsed()
}

// Reasons the search should stop now, StopNone if it may continue
func (l *Limiter) limitReason(size, cycles uint32) StopReason {
	reason := StopNone
	if l.Stop() {
		reason |= StopInterrupt
	}
	if cycles >= l.budget {
		reason |= StopCycles
	}
	if l.limits.Infinite {
		return reason
	}
	if l.clock.expired() {
		reason |= StopMovetime
	}
	if size >= l.limits.Nodes {
		reason |= StopNodes
	}
	return reason
}

// Wheter the search may run another iteration, called in the main search loop
func (l *Limiter) Ok(size, cycles uint32) bool {
	return l.limitReason(size, cycles) == StopNone
}

// Evaluate stop reason based on current state, and set it internally,
// called once after the search loop ends
func (l *Limiter) EvaluateStopReason(size, cycles uint32) {
	l.reason = l.limitReason(size, cycles)
}
