package tictactoe

import "math/bits"

type Termination int

const (
	TerminationNone      Termination = 0
	TerminationCircleWon Termination = 1
	TerminationCrossWon  Termination = 2
	TerminationDraw      Termination = 4
)

func (t Termination) String() string {
	switch t {
	case TerminationCircleWon:
		return "circle won"
	case TerminationCrossWon:
		return "cross won"
	case TerminationDraw:
		return "draw"
	}
	return "none"
}

// horizontal, vertical and diagonal patterns as bitboards
var _winningBitboardPatterns = [8]uint{
	0b111000000, 0b000111000, 0b000000111,
	0b100100100, 0b010010010, 0b001001001,
	0b100010001, 0b001010100,
}

func popcount(bb uint) int {
	return bits.OnesCount(bb)
}

func hasLine(bb uint) bool {
	for _, pattern := range _winningBitboardPatterns {
		if bb&pattern == pattern {
			return true
		}
	}
	return false
}

// Evaluate the termination of the position
func (p Position) Termination() Termination {
	crossbb := uint(p.bitboards[_bitboardCrossIdx])
	circlebb := uint(p.bitboards[_bitboardCircleIdx])

	if hasLine(crossbb) {
		return TerminationCrossWon
	}
	if hasLine(circlebb) {
		return TerminationCircleWon
	}

	// If not, check if that's a draw (the board is fully filled)
	if (crossbb | circlebb) == _fullBoard {
		return TerminationDraw
	}
	return TerminationNone
}

// Squares which would complete a line for the given mark
func (p Position) threats(c Cell) uint {
	own := uint(p.bitboards[_bitboardCrossIdx])
	if c == Circle {
		own = uint(p.bitboards[_bitboardCircleIdx])
	}

	free := p.free()
	threats := uint(0)
	for _, pattern := range _winningBitboardPatterns {
		if popcount(own&pattern) == 2 {
			threats |= pattern & free
		}
	}
	return threats
}
