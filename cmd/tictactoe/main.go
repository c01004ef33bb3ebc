package main

/*
Self-play driver: builds an empty tic tac toe board, lets the engine play both
sides to the end and prints every move with the searched tree.
With -games > 0 plays an arena between two configurations instead:
the given exploration constant against the default one.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/IlikeChooros/go-uct/pkg/bench"
	"github.com/IlikeChooros/go-uct/pkg/mcts"
	"github.com/IlikeChooros/go-uct/pkg/render"
	"github.com/IlikeChooros/go-uct/pkg/tictactoe"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	option  = mcts.Option[tictactoe.Square, tictactoe.Position]
	contest = bench.Contender[tictactoe.Square, tictactoe.Position]
)

func main() {
	iterations := flag.Int("iterations", 1000, "Search iterations per move")
	c := flag.Float64("c", mcts.ExplorationParam, "UCT exploration constant")
	policyName := flag.String("policy", "random", "Rollout policy: random, heuristic or optimal")
	winRate := flag.Bool("win-rate", false, "Choose the final move by win rate instead of visit count")
	games := flag.Int("games", 0, "If > 0, play this many arena games (c vs default c) instead of a single self-play game")
	workers := flag.Int("workers", 2, "Arena worker goroutines")
	seed := flag.Int64("seed", 0, "Random seed, 0 for time based")
	treeDepth := flag.Int("tree-depth", 1, "Depth of the printed search tree after every move, negative for all, 0 to disable")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level: %v\n", err)
		os.Exit(2)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	policy, ok := tictactoe.ParseRolloutPolicy(*policyName)
	if !ok {
		log.Fatal().Str("policy", *policyName).Msg("unknown rollout policy")
	}
	if *seed != 0 {
		s := *seed
		mcts.SetSeedGeneratorFn(func() int64 { return s })
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	options := []option{
		mcts.WithExplorationParam[tictactoe.Square, tictactoe.Position](*c),
		mcts.WithLogger[tictactoe.Square, tictactoe.Position](log.Logger),
	}
	if *winRate {
		options = append(options, mcts.WithBestChildPolicy[tictactoe.Square, tictactoe.Position](mcts.BestChildWinRate))
	}

	start := tictactoe.NewPosition().WithPolicy(policy)
	out := termenv.NewOutput(os.Stdout)

	if *games > 0 {
		err = runArena(ctx, start, options, *iterations, *games, *workers)
	} else {
		err = selfPlay(ctx, out, start, options, *iterations, *treeDepth)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

func selfPlay(ctx context.Context, out *termenv.Output, start tictactoe.Position, options []option, iterations, treeDepth int) error {
	tree, err := mcts.NewMCTS[tictactoe.Square](start, options...)
	if err != nil {
		return err
	}
	tree.SetContext(ctx)

	if treeDepth == 0 {
		if _, err := tree.PlayToCompletion(iterations); err != nil {
			return err
		}
		return printTrace(out, start, tree.History())
	}

	// Same as PlayToCompletion, with the tree printed before committing each move
	for !tree.Tree.IsTerminal(tree.Root()) {
		best, err := tree.Search(tree.Root(), iterations)
		if err != nil {
			return err
		}
		if err := render.Tree(out, tree.Tree, tree.Root(), render.TreeOptions{
			Depth: treeDepth, C: tree.ExplorationParam(), HideVirgin: true,
		}); err != nil {
			return err
		}

		move := tree.Tree.Node(best).Action
		fmt.Fprintf(out, "%v plays %v, pv %v\n\n", tree.State().ToMove(), move, tree.Pv(tree.Root(), tree.BestChildPolicy()))
		tree.MakeMove(move)
	}
	return printTrace(out, start, tree.History())
}

func printTrace(out *termenv.Output, start tictactoe.Position, moves []tictactoe.Square) error {
	pos := start
	for i, mv := range moves {
		next, err := pos.Play(mv)
		if err != nil {
			return err
		}
		pos = next

		fmt.Fprintf(out, "%d. %v\n", i+1, mv)
		if err := render.Board(out, pos, mv); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return render.Result(out, pos)
}

func runArena(ctx context.Context, start tictactoe.Position, options []option, iterations, games, workers int) error {
	arena := bench.NewVersusArena(start,
		contest{Name: "tuned", Iterations: iterations, Options: options},
		contest{Name: "default", Iterations: iterations},
	).Setup(games, workers).
		WithLogger(log.Logger).
		WithListener(bench.LogListener[tictactoe.Square]{Logger: log.Logger})

	if err := arena.Start(ctx); err != nil {
		return err
	}
	summary, err := arena.Wait()
	if err != nil {
		return err
	}
	fmt.Println(summary.String())
	return nil
}
