package tictactoe

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidNotation = errors.New("tictactoe: invalid notation")
	ErrIllegalMove     = errors.New("tictactoe: illegal move")
)

const StartingPosition = ".../.../..."

// Parse the position from 9 cells ('x', 'o', '.'), rows from the top, optionally
// separated by '/'. The player to move is inferred from the mark counts.
func Parse(notation string) (Position, error) {
	cells := strings.ReplaceAll(notation, "/", "")
	if len(cells) != 9 {
		return Position{}, fmt.Errorf("%w: expected 9 cells, got %d in %q", ErrInvalidNotation, len(cells), notation)
	}

	pos := NewPosition()
	crosses, circles := 0, 0
	for i := 0; i < len(cells); i++ {
		switch cells[i] {
		case 'x', 'X':
			pos.bitboards[_bitboardCrossIdx] |= 1 << i
			crosses++
		case 'o', 'O':
			pos.bitboards[_bitboardCircleIdx] |= 1 << i
			circles++
		case '.', '-':
		default:
			return Position{}, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidNotation, cells[i], notation)
		}
	}

	switch crosses - circles {
	case 0:
		pos.turn = CrossPlayer
	case 1:
		pos.turn = CirclePlayer
	default:
		return Position{}, fmt.Errorf("%w: %d crosses and %d circles", ErrInvalidNotation, crosses, circles)
	}

	if hasLine(uint(pos.bitboards[_bitboardCrossIdx])) && hasLine(uint(pos.bitboards[_bitboardCircleIdx])) {
		return Position{}, fmt.Errorf("%w: both players have a line", ErrInvalidNotation)
	}
	return pos, nil
}

// Inverse of Parse, rows separated by '/'
func (p Position) String() string {
	builder := strings.Builder{}
	for sq := A3; sq <= C1; sq++ {
		if sq != A3 && sq%3 == 0 {
			builder.WriteByte('/')
		}
		builder.WriteString(p.At(sq).String())
	}
	return builder.String()
}
