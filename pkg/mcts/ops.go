package mcts

import "golang.org/x/exp/rand"

// Capability contract of a two-player, perfect-information, alternating-move game.
// Implementations must be immutable values: Apply returns a new state and leaves
// the receiver untouched, since every tree node owns its own state.
type GameState[A MoveLike, G any] interface {
	// Actions available from this state, always in the same order for the same state.
	// Empty only if the state is terminal
	LegalActions() []A
	// Make a move with given action, producing the next state (with the mover flipped)
	Apply(action A) G
	// Whether the game is over
	IsTerminal() bool
	// The result of the game, OutcomeNone only if the state is not terminal
	Winner() Outcome
	// Player who must act from this state
	ToMove() Player
	// Function to make the playout, until terminal state is reached,
	// in case of tic tac toe, play random (or heuristic) moves, until we reach draw/win/loss.
	// On a terminal state it must return Winner()
	Rollout(r *rand.Rand) Outcome
}
