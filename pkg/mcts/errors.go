package mcts

import "errors"

var (
	// Contract violation by the caller: expanding a fully expanded or terminal node,
	// or selecting from a terminal one
	ErrInvalidState = errors.New("mcts: invalid state")

	// The game returned no legal actions for a non-terminal state
	ErrEmptyActions = errors.New("mcts: no legal actions in a non-terminal state")

	// Iteration budget must be a positive integer
	ErrInvalidBudget = errors.New("mcts: iteration budget must be positive")

	// Final move selection on a node without any (visited) children
	ErrNoChildren = errors.New("mcts: node has no visited children")

	// Search cancelled through its context (or Stop) before the budget was used
	ErrInterrupted = errors.New("mcts: search interrupted")
)
