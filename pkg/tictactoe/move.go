package tictactoe

import (
	"fmt"
	"math/bits"
)

type MoveList struct {
	Moves [9]Square
	Size  uint8
}

func (ml *MoveList) AppendMove(mv Square) {
	ml.Moves[ml.Size] = mv
	ml.Size++
}

func (ml *MoveList) Slice() []Square {
	return ml.Moves[:ml.Size]
}

// Generate the legal moves, in the square order (A3 first)
func (p Position) GenerateMoves() MoveList {
	movelist := MoveList{}
	if p.IsTerminal() {
		return movelist
	}

	free := p.free()
	for free != 0 {
		movelist.AppendMove(Square(bits.TrailingZeros(free)))
		free &= free - 1
	}

	return movelist
}

// Parse square in the 'a3' format
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return SquareIllegal, fmt.Errorf("%w: square %q", ErrInvalidNotation, s)
	}
	file, rank := s[0], s[1]
	if file >= 'A' && file <= 'C' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'c' || rank < '1' || rank > '3' {
		return SquareIllegal, fmt.Errorf("%w: square %q", ErrInvalidNotation, s)
	}
	return Square(('3'-rank)*3 + (file - 'a')), nil
}
