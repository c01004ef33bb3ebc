package tictactoe

import "github.com/IlikeChooros/go-uct/pkg/mcts"

type Square uint8
type Cell uint8

// Enum for the squares, row 3 is the top one
const (
	A3 Square = iota
	B3
	C3
	A2
	B2
	C2
	A1
	B1
	C1
)

const (
	SquareIllegal Square = 255
)

const (
	Empty  Cell = 0
	Cross  Cell = 1
	Circle Cell = 2
)

// Cross always moves first
const (
	CrossPlayer  = mcts.Player1
	CirclePlayer = mcts.Player2
)

func (c Cell) String() string {
	switch c {
	case Cross:
		return "x"
	case Circle:
		return "o"
	}
	return "."
}

// Mark placed by given player
func CellOf(p mcts.Player) Cell {
	if p == CirclePlayer {
		return Circle
	}
	return Cross
}

func (sq Square) String() string {
	if sq > C1 {
		return "-"
	}
	return string([]byte{'a' + byte(sq%3), '3' - byte(sq/3)})
}
