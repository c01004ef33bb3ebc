package bench

import (
	"fmt"

	"github.com/IlikeChooros/go-uct/pkg/mcts"
	"github.com/rs/zerolog"
)

// Arena progress hooks, called from the worker goroutines: implementations
// must be safe for concurrent use
type ListenerLike[A mcts.MoveLike] interface {
	OnMoveMade(info VersusWorkerInfo[A])
	OnFinishedGame(info VersusWorkerInfo[A])
}

type DefaultListener[A mcts.MoveLike] struct{}

func (DefaultListener[A]) OnMoveMade(VersusWorkerInfo[A])     {}
func (DefaultListener[A]) OnFinishedGame(VersusWorkerInfo[A]) {}

// Logs every finished game at info level, moves at debug level
type LogListener[A mcts.MoveLike] struct {
	Logger zerolog.Logger
}

func (l LogListener[A]) OnMoveMade(info VersusWorkerInfo[A]) {
	l.Logger.Debug().
		Int("worker", info.WorkerID).
		Int("game", info.Game).
		Int("ply", info.GameMoveNum).
		Interface("move", info.Moves[len(info.Moves)-1]).
		Msg("move made")
}

func (l LogListener[A]) OnFinishedGame(info VersusWorkerInfo[A]) {
	l.Logger.Info().
		Int("worker", info.WorkerID).
		Int("game", info.Game).
		Int("finished", info.FinishedGames).
		Bool("p1_first", info.P1First).
		Stringer("result", info.Result).
		Interface("moves", info.Moves).
		Str("score", scoreline(info)).
		Msg("game finished")
}

func scoreline[A mcts.MoveLike](info VersusWorkerInfo[A]) string {
	return fmt.Sprintf("%s %d - %d %s (draws %d)", info.P1Name, info.P1Wins, info.P2Wins, info.P2Name, info.Draws)
}
