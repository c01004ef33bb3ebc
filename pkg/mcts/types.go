package mcts

// Other types, which didn't fit to MCTS or Node files

// Any comparable value can be used as an action (move), it's used as a key
// for the explored-actions set of each node
type MoveLike comparable

type BestChildPolicy int
type SeedGeneratorFnType func() int64

// Index of a node in the tree's arena
type NodeID int32

// Marks an absent parent (root node) or a missing child
const NoNode NodeID = -1

// One of the two players of an alternating-move game
type Player uint8

const (
	Player1 Player = iota + 1
	Player2
)

func (p Player) Opponent() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "Player1"
	case Player2:
		return "Player2"
	}
	return "Invalid"
}

// Outcome of a (simulated) game, from a fixed perspective: it names the winner
// or a draw, never "the current player"
type Outcome uint8

const (
	// Game not finished yet, only valid for non-terminal states
	OutcomeNone Outcome = iota
	OutcomePlayer1
	OutcomePlayer2
	OutcomeDraw
)

// Outcome in which given player is the winner
func WinFor(p Player) Outcome {
	if p == Player2 {
		return OutcomePlayer2
	}
	return OutcomePlayer1
}

// Returns the winner, and false if the outcome is a draw or none
func (o Outcome) Winner() (Player, bool) {
	switch o {
	case OutcomePlayer1:
		return Player1, true
	case OutcomePlayer2:
		return Player2, true
	}
	return 0, false
}

// Whether this is a final result (win of either player or draw)
func (o Outcome) Decided() bool {
	return o == OutcomePlayer1 || o == OutcomePlayer2 || o == OutcomeDraw
}

// Resolve the outcome against given player
func (o Outcome) For(p Player) Result {
	if winner, ok := o.Winner(); ok {
		if winner == p {
			return Win
		}
		return Loss
	}
	return Draw
}

func (o Outcome) String() string {
	switch o {
	case OutcomePlayer1:
		return "Player1"
	case OutcomePlayer2:
		return "Player2"
	case OutcomeDraw:
		return "Draw"
	}
	return "None"
}

// Result of a rollout, as seen by a single node's player to move
type Result uint8

const (
	Win Result = iota
	Loss
	Draw
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Loss:
		return "loss"
	}
	return "draw"
}
