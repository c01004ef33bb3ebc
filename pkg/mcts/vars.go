package mcts

import "time"

// Exploration parameter used in UCT formula, higher values increase exploration
// while lower values increase exploitation.
// Default is 1.4
var ExplorationParam float64 = 1.4

// Set the exploration parameter used in UCT formula
func SetExplorationParam(c float64) {
	ExplorationParam = max(0.0, c)
}

var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function for random number generators in MCTS,
// by default uses current time in nanoseconds
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}

const (
	// When choosing the best child, choose the one with most visits,
	// this is the go-to method for MCTS
	BestChildMostVisits BestChildPolicy = iota

	// Choose the child with the best win rate (for the player choosing the move),
	// among the children with at least MinWinRateVisits visits
	BestChildWinRate
)

// Children with fewer visits are ignored by the BestChildWinRate policy
var MinWinRateVisits int32 = 10

func (p BestChildPolicy) String() string {
	if p == BestChildWinRate {
		return "WinRate"
	}
	return "MostVisits"
}
