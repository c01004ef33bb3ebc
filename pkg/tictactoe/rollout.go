package tictactoe

import (
	"math/bits"

	"golang.org/x/exp/rand"
)

// Move choice used during the playouts
type RolloutPolicy int

const (
	// Uniformly random legal move
	RandomRollout RolloutPolicy = iota
	// Take a win if available, otherwise block the opponent's win, otherwise random
	HeuristicRollout
	// Perfect play, deterministic (first best move in square order)
	OptimalRollout
)

func (rp RolloutPolicy) String() string {
	switch rp {
	case HeuristicRollout:
		return "heuristic"
	case OptimalRollout:
		return "optimal"
	}
	return "random"
}

// Parse the policy name, as printed by String
func ParseRolloutPolicy(name string) (RolloutPolicy, bool) {
	for _, rp := range []RolloutPolicy{RandomRollout, HeuristicRollout, OptimalRollout} {
		if rp.String() == name {
			return rp, true
		}
	}
	return RandomRollout, false
}

// Choose the next move, position must not be terminal
func (rp RolloutPolicy) choose(p Position, r *rand.Rand) Square {
	switch rp {
	case HeuristicRollout:
		if win := p.threats(CellOf(p.turn)); win != 0 {
			return Square(bits.TrailingZeros(win))
		}
		if block := p.threats(CellOf(p.turn.Opponent())); block != 0 {
			return Square(bits.TrailingZeros(block))
		}
	case OptimalRollout:
		return BestMove(p)
	}
	return randomSquare(p.free(), r)
}

// Pick random set bit of the mask
func randomSquare(free uint, r *rand.Rand) Square {
	n := r.Intn(bits.OnesCount(free))
	for ; n > 0; n-- {
		free &= free - 1
	}
	return Square(bits.TrailingZeros(free))
}
