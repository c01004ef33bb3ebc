package tictactoe

import (
	"fmt"

	"github.com/IlikeChooros/go-uct/pkg/mcts"
	"golang.org/x/exp/rand"
)

const (
	_bitboardCrossIdx  = 0
	_bitboardCircleIdx = 1

	_fullBoard uint = 0b111111111
)

// Immutable tic tac toe position, every move returns a new value
type Position struct {
	bitboards [2]uint16
	turn      mcts.Player
	policy    RolloutPolicy
}

// Empty board, cross to move, random rollouts
func NewPosition() Position {
	return Position{turn: CrossPlayer, policy: RandomRollout}
}

// Same position, with different rollout policy
func (p Position) WithPolicy(policy RolloutPolicy) Position {
	p.policy = policy
	return p
}

func (p Position) Policy() RolloutPolicy {
	return p.policy
}

func (p Position) ToMove() mcts.Player {
	return p.turn
}

func (p Position) free() uint {
	return _fullBoard ^ uint(p.bitboards[_bitboardCrossIdx]|p.bitboards[_bitboardCircleIdx])
}

// Number of marks on the board
func (p Position) Ply() int {
	return 9 - popcount(p.free())
}

func (p Position) At(sq Square) Cell {
	switch {
	case p.bitboards[_bitboardCrossIdx]&(1<<sq) != 0:
		return Cross
	case p.bitboards[_bitboardCircleIdx]&(1<<sq) != 0:
		return Circle
	}
	return Empty
}

func (p Position) Board() [9]Cell {
	var board [9]Cell
	for sq := A3; sq <= C1; sq++ {
		board[sq] = p.At(sq)
	}
	return board
}

// Place the mover's mark on given square, no legality checks
func (p Position) MakeMove(mv Square) Position {
	idx := _bitboardCrossIdx
	if p.turn == CirclePlayer {
		idx = _bitboardCircleIdx
	}

	p.bitboards[idx] |= 1 << mv
	p.turn = p.turn.Opponent()
	return p
}

// Checked version of MakeMove
func (p Position) Play(mv Square) (Position, error) {
	if mv > C1 || p.At(mv) != Empty {
		return p, fmt.Errorf("%w: square %v is not free", ErrIllegalMove, mv)
	}
	if p.IsTerminal() {
		return p, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	return p.MakeMove(mv), nil
}

func (p Position) LegalActions() []Square {
	moves := p.GenerateMoves()
	return append([]Square(nil), moves.Slice()...)
}

func (p Position) Apply(mv Square) Position {
	return p.MakeMove(mv)
}

func (p Position) IsTerminal() bool {
	return p.Termination() != TerminationNone
}

func (p Position) Winner() mcts.Outcome {
	switch p.Termination() {
	case TerminationCrossWon:
		return mcts.WinFor(CrossPlayer)
	case TerminationCircleWon:
		return mcts.WinFor(CirclePlayer)
	case TerminationDraw:
		return mcts.OutcomeDraw
	}
	return mcts.OutcomeNone
}

// Play the game to the end with the position's rollout policy
func (p Position) Rollout(r *rand.Rand) mcts.Outcome {
	for !p.IsTerminal() {
		p = p.MakeMove(p.policy.choose(p, r))
	}
	return p.Winner()
}
