package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IlikeChooros/go-uct/pkg/mcts"
	"github.com/rs/zerolog"
)

/*
Arena benchmark subpackage, allows to play a series of games between two
different engine configurations (Contenders), starting from the same position.
Every game uses fresh trees, the contenders alternate who moves first.
*/

type VersusArena[A mcts.MoveLike, G mcts.GameState[A, G]] struct {
	VersusArenaStats
	Player1  Contender[A, G]
	Player2  Contender[A, G]
	NGames   int
	NWorkers int
	Position G
	listener ListenerLike[A]
	logger   zerolog.Logger
	wg       sync.WaitGroup
	next     atomic.Int64
	errOnce  sync.Once
	err      error
}

func NewVersusArena[A mcts.MoveLike, G mcts.GameState[A, G]](position G, p1, p2 Contender[A, G]) *VersusArena[A, G] {
	return &VersusArena[A, G]{
		Player1:  p1,
		Player2:  p2,
		NGames:   100,
		NWorkers: 2,
		Position: position,
		listener: DefaultListener[A]{},
		logger:   zerolog.Nop(),
	}
}

func (va *VersusArena[A, G]) WithListener(listener ListenerLike[A]) *VersusArena[A, G] {
	va.listener = listener
	return va
}

func (va *VersusArena[A, G]) WithLogger(logger zerolog.Logger) *VersusArena[A, G] {
	va.logger = logger
	return va
}

func (va *VersusArena[A, G]) Setup(nGames, nWorkers int) *VersusArena[A, G] {
	va.NGames = nGames
	va.NWorkers = nWorkers
	return va
}

// Start the workers, returns immediately. Cancelling the context stops the
// games in progress, those are not counted.
func (va *VersusArena[A, G]) Start(ctx context.Context) error {
	if va.NGames <= 0 || va.NWorkers <= 0 {
		return fmt.Errorf("%w: %d games on %d workers", ErrInvalidSetup, va.NGames, va.NWorkers)
	}
	if va.Player1.Iterations <= 0 || va.Player2.Iterations <= 0 {
		return fmt.Errorf("%w: iterations %d vs %d", ErrInvalidSetup, va.Player1.Iterations, va.Player2.Iterations)
	}
	if va.Position.IsTerminal() {
		return fmt.Errorf("%w: starting position is terminal", ErrInvalidSetup)
	}

	va.logger.Info().
		Str("player1", va.Player1.Name).
		Str("player2", va.Player2.Name).
		Int("games", va.NGames).
		Int("workers", va.NWorkers).
		Msg("arena started")

	va.next.Store(0)
	for i, n := 0, min(va.NWorkers, va.NGames); i < n; i++ {
		va.wg.Add(1)
		go va.worker(ctx, i)
	}
	return nil
}

// Block until every worker is done, returns the aggregated stats and the
// first error a worker ran into (context cancellation is not an error)
func (va *VersusArena[A, G]) Wait() (VersusSummaryInfo, error) {
	va.wg.Wait()

	summary := VersusSummaryInfo{
		TotalGames:       va.Total(),
		P1Wins:           va.P1Wins(),
		P2Wins:           va.P2Wins(),
		FirstToMoveWins:  va.FirstToMoveWins(),
		SecondToMoveWins: va.SecondToMoveWins(),
		Draws:            va.Draws(),
		Workers:          va.NWorkers,
		P1Name:           va.Player1.Name,
		P2Name:           va.Player2.Name,
	}
	va.logger.Info().Stringer("summary", summary).Msg("arena finished")
	return summary, va.err
}

func (va *VersusArena[A, G]) fail(err error) {
	va.errOnce.Do(func() {
		va.err = err
	})
}

func (va *VersusArena[A, G]) worker(ctx context.Context, id int) {
	defer va.wg.Done()

	for ctx.Err() == nil {
		game := int(va.next.Add(1)) - 1
		if game >= va.NGames {
			return
		}

		// Alternate who moves first
		p1First := game%2 == 0
		moves, winner, err := va.playGame(ctx, id, game, p1First)
		if errors.Is(err, mcts.ErrInterrupted) {
			return
		}
		if err != nil {
			va.logger.Error().Err(err).Int("worker", id).Int("game", game).Msg("game failed")
			va.fail(err)
			return
		}

		outcome := computeOutcome(winner, va.Position.ToMove())
		result := va.add(outcome, p1First)
		va.listener.OnFinishedGame(va.info(id, game, moves, p1First, result))
	}
}

func (va *VersusArena[A, G]) newEngine(c Contender[A, G], seed uint64) (*mcts.MCTS[A, G], error) {
	options := append([]mcts.Option[A, G]{
		mcts.WithSeed[A, G](seed),
		mcts.WithLogger[A, G](va.logger),
	}, c.Options...)
	return mcts.NewMCTS[A](va.Position, options...)
}

// Play single game, returns the moves and the final result
func (va *VersusArena[A, G]) playGame(ctx context.Context, id, game int, p1First bool) ([]A, mcts.Outcome, error) {
	first, second := va.Player1, va.Player2
	if !p1First {
		first, second = second, first
	}

	seed := uint64(mcts.SeedGeneratorFn()) + uint64(game)*2
	engines := [2]*mcts.MCTS[A, G]{}
	contenders := [2]Contender[A, G]{first, second}
	for i, c := range contenders {
		engine, err := va.newEngine(c, seed+uint64(i))
		if err != nil {
			return nil, mcts.OutcomeNone, err
		}
		engines[i] = engine
	}

	moves := make([]A, 0, 16)
	for turn := 0; !engines[0].Tree.IsTerminal(engines[0].Root()); turn ^= 1 {
		mover := engines[turn]
		best, err := mover.SearchContext(ctx, mover.Root(), contenders[turn].Iterations)
		if err != nil {
			return moves, mcts.OutcomeNone, err
		}

		move := mover.Tree.Node(best).Action
		for _, engine := range engines {
			if err := engine.Advance(move); err != nil {
				return moves, mcts.OutcomeNone, err
			}
		}

		moves = append(moves, move)
		va.listener.OnMoveMade(va.info(id, game, moves, p1First, VersusDraw))
	}

	return moves, engines[0].State().Winner(), nil
}

func (va *VersusArena[A, G]) info(id, game int, moves []A, p1First bool, result VersusMatchResult) VersusWorkerInfo[A] {
	return VersusWorkerInfo[A]{
		WorkerID:      id,
		Game:          game,
		FinishedGames: va.Total(),
		GameMoveNum:   len(moves),
		Moves:         moves,
		P1First:       p1First,
		Result:        result,
		P1Wins:        va.P1Wins(),
		P2Wins:        va.P2Wins(),
		Draws:         va.Draws(),
		P1Name:        va.Player1.Name,
		P2Name:        va.Player2.Name,
	}
}
