package bench

import (
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/IlikeChooros/go-uct/pkg/mcts"
)

var ErrInvalidSetup = errors.New("bench: invalid arena setup")

type VersusMatchResult int

const (
	VersusPl1Win VersusMatchResult = 1
	VersusPl2Win VersusMatchResult = -1
	VersusDraw   VersusMatchResult = 0
)

func (r VersusMatchResult) String() string {
	switch r {
	case VersusPl1Win:
		return "player1"
	case VersusPl2Win:
		return "player2"
	}
	return "draw"
}

// One side of the arena: every game builds a fresh engine from these settings
type Contender[A mcts.MoveLike, G mcts.GameState[A, G]] struct {
	Name string
	// Search budget per move
	Iterations int
	Options    []mcts.Option[A, G]
}

// Shared between the workers, updated atomically
type VersusArenaStats struct {
	p1Wins           uint32
	p2Wins           uint32
	draws            uint32
	firstToMoveWins  uint32
	secondToMoveWins uint32
}

func (vas *VersusArenaStats) Total() int {
	return vas.P1Wins() + vas.P2Wins() + vas.Draws()
}

func (vas *VersusArenaStats) P1Wins() int {
	return int(atomic.LoadUint32(&vas.p1Wins))
}

func (vas *VersusArenaStats) P2Wins() int {
	return int(atomic.LoadUint32(&vas.p2Wins))
}

func (vas *VersusArenaStats) Draws() int {
	return int(atomic.LoadUint32(&vas.draws))
}

func (vas *VersusArenaStats) FirstToMoveWins() int {
	return int(atomic.LoadUint32(&vas.firstToMoveWins))
}

func (vas *VersusArenaStats) SecondToMoveWins() int {
	return int(atomic.LoadUint32(&vas.secondToMoveWins))
}

func (vas *VersusArenaStats) add(outcome GameOutcome, p1WentFirst bool) VersusMatchResult {
	result := toAgentResult(outcome, p1WentFirst)
	switch result {
	case VersusDraw:
		atomic.AddUint32(&vas.draws, 1)
		return result
	case VersusPl1Win:
		atomic.AddUint32(&vas.p1Wins, 1)
	case VersusPl2Win:
		atomic.AddUint32(&vas.p2Wins, 1)
	}

	if outcome.FirstPlayerWon {
		atomic.AddUint32(&vas.firstToMoveWins, 1)
	} else {
		atomic.AddUint32(&vas.secondToMoveWins, 1)
	}
	return result
}

// Passed to the listener after every move and every finished game
type VersusWorkerInfo[A mcts.MoveLike] struct {
	WorkerID int
	// Index of the game in the whole arena run
	Game          int
	FinishedGames int
	GameMoveNum   int
	Moves         []A
	// Whether 'Player1' contender moved first in this game
	P1First bool
	// Set only for the finished game
	Result VersusMatchResult
	P1Wins int
	P2Wins int
	Draws  int
	P1Name string
	P2Name string
}

type VersusSummaryInfo struct {
	TotalGames       int    `json:"total_games"`
	P1Wins           int    `json:"player1_wins"`
	P2Wins           int    `json:"player2_wins"`
	FirstToMoveWins  int    `json:"first_to_move_wins"`
	SecondToMoveWins int    `json:"second_to_move_wins"`
	Draws            int    `json:"draws"`
	Workers          int    `json:"workers"`
	P1Name           string `json:"player1_name"`
	P2Name           string `json:"player2_name"`
}

func (s VersusSummaryInfo) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// represents result from the first-player's perspective in a single game
type GameOutcome struct {
	FirstPlayerWon bool
	IsDraw         bool
}

// maps a game outcome to which agent won, given player assignments
func toAgentResult(outcome GameOutcome, p1WentFirst bool) VersusMatchResult {
	if outcome.IsDraw {
		return VersusDraw
	}

	if p1WentFirst == outcome.FirstPlayerWon {
		return VersusPl1Win
	}
	return VersusPl2Win
}

// determines the winner of a finished game, 'first' is the player who made the first move
func computeOutcome(winner mcts.Outcome, first mcts.Player) GameOutcome {
	player, ok := winner.Winner()
	if !ok {
		return GameOutcome{IsDraw: true}
	}
	return GameOutcome{FirstPlayerWon: player == first}
}
