package tictactoe

import (
	"sync"
)

// Game-theoretic values of positions, from the mover's perspective (1 win, 0 draw, -1 loss).
// Shared between goroutines (e.g. the versus arena workers)
var solved sync.Map

func (p Position) key() uint32 {
	return uint32(p.bitboards[_bitboardCrossIdx]) |
		uint32(p.bitboards[_bitboardCircleIdx])<<9 |
		uint32(p.turn)<<18
}

// Value of the position under perfect play, for the player to move
func Solve(p Position) int {
	if v, ok := solved.Load(p.key()); ok {
		return v.(int)
	}

	var value int
	switch p.Termination() {
	case TerminationDraw:
		value = 0
	case TerminationCrossWon, TerminationCircleWon:
		// The previous mover completed the line
		value = -1
	default:
		value = -2
		moves := p.GenerateMoves()
		for _, mv := range moves.Slice() {
			if v := -Solve(p.MakeMove(mv)); v > value {
				value = v
				if value == 1 {
					break
				}
			}
		}
	}

	solved.Store(p.key(), value)
	return value
}

// First move (in square order) with the best game-theoretic value,
// SquareIllegal for a terminal position
func BestMove(p Position) Square {
	best, bestValue := SquareIllegal, -2
	moves := p.GenerateMoves()
	for _, mv := range moves.Slice() {
		if v := -Solve(p.MakeMove(mv)); v > bestValue {
			best, bestValue = mv, v
			if bestValue == 1 {
				break
			}
		}
	}
	return best
}
