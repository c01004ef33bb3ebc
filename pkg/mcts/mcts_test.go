package mcts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const (
	branchFactor = 4
	dummyDepth   = 5
)

type Move int

// A dummy game for testing purposes.
// Always has 'branchFactor' moves, ends at 'dummyDepth' with a draw, and does random rollouts
type DummyState struct {
	depth  int
	player Player
}

func NewDummyState() DummyState {
	return DummyState{player: Player1}
}

func (d DummyState) LegalActions() []Move {
	if d.IsTerminal() {
		return nil
	}
	moves := make([]Move, branchFactor)
	for i := range moves {
		moves[i] = Move(i)
	}
	return moves
}

func (d DummyState) Apply(m Move) DummyState {
	return DummyState{depth: d.depth + 1, player: d.player.Opponent()}
}

func (d DummyState) IsTerminal() bool {
	return d.depth >= dummyDepth
}

func (d DummyState) Winner() Outcome {
	if d.IsTerminal() {
		return OutcomeDraw
	}
	return OutcomeNone
}

func (d DummyState) ToMove() Player {
	return d.player
}

func (d DummyState) Rollout(r *rand.Rand) Outcome {
	if d.IsTerminal() {
		return d.Winner()
	}
	switch r.Intn(3) {
	case 0:
		return OutcomeDraw
	case 1:
		return OutcomePlayer1
	default:
		return OutcomePlayer2
	}
}

// Broken game: no moves, yet not terminal
type NoMovesState struct{ DummyState }

func (s NoMovesState) LegalActions() []Move     { return nil }
func (s NoMovesState) Apply(m Move) NoMovesState { return s }

// Broken game: rollouts never finish with a result
type UndecidedState struct{ DummyState }

func (s UndecidedState) Apply(m Move) UndecidedState {
	return UndecidedState{s.DummyState.Apply(m)}
}
func (s UndecidedState) Rollout(r *rand.Rand) Outcome { return OutcomeNone }

func TestMain(m *testing.M) {
	SetSeedGeneratorFn(func() int64 {
		return 42
	})
	fmt.Printf("Using seed %d\n", SeedGeneratorFn())

	os.Exit(m.Run())
}

func NewDummyMCTS(t *testing.T, options ...Option[Move, DummyState]) *MCTS[Move, DummyState] {
	t.Helper()
	tree, err := NewMCTS[Move](NewDummyState(), options...)
	require.NoError(t, err)
	return tree
}

// Check the structural and statistical invariants of every node in the tree
func requireTreeInvariants[A MoveLike, G GameState[A, G]](t *testing.T, tree *Tree[A, G]) {
	t.Helper()
	for id := NodeID(0); int(id) < tree.Size(); id++ {
		node := tree.Node(id)
		require.LessOrEqual(t, len(node.Children), len(node.LegalActions()), "node %d has too many children", id)
		require.Equal(t, node.Stats.N(), node.Stats.Tally().Total(), "node %d tally doesn't sum to visits", id)

		if id == tree.Root() {
			require.Equal(t, NoNode, node.Parent)
			continue
		}

		parent := tree.Node(node.Parent)
		require.LessOrEqual(t, node.Stats.N(), parent.Stats.N(), "node %d has more visits than its parent", id)
		require.Equal(t, parent.Depth+1, node.Depth)
		require.Contains(t, parent.Children, id)
	}
}

// Tests checking if the search is working correctly

func TestDummySearch(t *testing.T) {
	tree := NewDummyMCTS(t)

	best, err := tree.Search(tree.Root(), 1000)
	require.NoError(t, err)
	require.NotEqual(t, NoNode, best)
	require.Len(t, tree.Tree.Node(tree.Root()).Children, branchFactor)
	require.Equal(t, 1000, tree.Cycles())
	require.Equal(t, StopCycles, tree.StopReason())

	pv := tree.Pv(tree.Root(), BestChildMostVisits)
	require.NotEmpty(t, pv)
	require.Equal(t, tree.Tree.Node(best).Action, pv[0])
	t.Logf("eval %.2f cps %d cycles %d pv %v", tree.RootScore(), tree.Cps(), tree.Cycles(), pv)

	requireTreeInvariants(t, tree.Tree)
}

func TestSearchVisitConservation(t *testing.T) {
	tree := NewDummyMCTS(t)
	root := tree.Root()

	_, err := tree.Search(root, 100)
	require.NoError(t, err)
	require.Equal(t, int32(100), tree.Tree.Node(root).Stats.N())

	_, err = tree.Search(root, 250)
	require.NoError(t, err)
	require.Equal(t, int32(350), tree.Tree.Node(root).Stats.N())

	requireTreeInvariants(t, tree.Tree)
}

func TestSearchSingleIteration(t *testing.T) {
	tree := NewDummyMCTS(t)

	best, err := tree.Search(tree.Root(), 1)
	require.NoError(t, err)

	root := tree.Tree.Node(tree.Root())
	require.Len(t, root.Children, 1)
	require.Equal(t, root.Children[0], best)
	require.Equal(t, int32(1), tree.Tree.Node(best).Stats.N())
}

func TestSearchErrors(t *testing.T) {
	t.Run("non-positive budget", func(t *testing.T) {
		tree := NewDummyMCTS(t)
		for _, budget := range []int{0, -1} {
			_, err := tree.Search(tree.Root(), budget)
			require.ErrorIs(t, err, ErrInvalidBudget)
		}
		require.Equal(t, int32(0), tree.Tree.Node(tree.Root()).Stats.N())
	})

	t.Run("terminal root", func(t *testing.T) {
		tree, err := NewMCTS[Move](DummyState{depth: dummyDepth, player: Player1})
		require.NoError(t, err)

		_, err = tree.Search(tree.Root(), 10)
		require.ErrorIs(t, err, ErrInvalidState)
		_, err = tree.SelectOrExpand(tree.Root())
		require.ErrorIs(t, err, ErrInvalidState)
		_, err = tree.PlayToCompletion(10)
		require.NoError(t, err, "Already finished game needs no moves")
	})

	t.Run("no legal moves in a non-terminal state", func(t *testing.T) {
		_, err := NewMCTS[Move](NoMovesState{NewDummyState()})
		require.ErrorIs(t, err, ErrEmptyActions)
	})

	t.Run("invalid player to move", func(t *testing.T) {
		_, err := NewMCTS[Move](DummyState{})
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rollout without result", func(t *testing.T) {
		tree, err := NewMCTS[Move](UndecidedState{NewDummyState()})
		require.NoError(t, err)

		_, err = tree.Search(tree.Root(), 5)
		require.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestSearchDeterministicWithSeed(t *testing.T) {
	run := func() []int32 {
		tree := NewDummyMCTS(t, WithSeed[Move, DummyState](7))
		_, err := tree.Search(tree.Root(), 500)
		require.NoError(t, err)

		visits := []int32{}
		for _, ch := range tree.Tree.Node(tree.Root()).Children {
			visits = append(visits, tree.Tree.Node(ch).Stats.N())
		}
		return visits
	}

	require.Equal(t, run(), run())
}

func TestSearchWithListener(t *testing.T) {
	cycles, depths, stops := 0, 0, 0
	listener := NewStatsListener[Move]()
	listener.
		OnDepth(func(stats ListenerTreeStats[Move]) {
			depths++
			require.Greater(t, stats.Maxdepth, 0)
		}).
		OnCycle(func(stats ListenerTreeStats[Move]) {
			cycles++
			require.Zero(t, stats.Cycles%100)
			t.Logf("cycle %d depth %d cps %d eval %.2f pv %v", stats.Cycles, stats.Maxdepth, stats.Cps, stats.Eval, stats.Pv)
		}).
		SetCycleInterval(100).
		OnStop(func(stats ListenerTreeStats[Move]) {
			stops++
			require.Equal(t, StopCycles, stats.StopReason)
			require.NotEmpty(t, stats.Pv)
		})

	tree := NewDummyMCTS(t, WithListener[Move, DummyState](listener))
	_, err := tree.Search(tree.Root(), 1000)
	require.NoError(t, err)

	require.Equal(t, 10, cycles)
	require.Equal(t, 1, stops)
	require.Equal(t, dummyDepth, depths, "max depth grows one level at a time")
}

func TestSearchStop(t *testing.T) {
	t.Run("stop signal from the listener", func(t *testing.T) {
		var tree *MCTS[Move, DummyState]
		listener := NewStatsListener[Move]()
		listener.OnCycle(func(stats ListenerTreeStats[Move]) {
			tree.Stop()
		}).SetCycleInterval(50)

		tree = NewDummyMCTS(t, WithListener[Move, DummyState](listener))
		_, err := tree.Search(tree.Root(), 1000)
		require.ErrorIs(t, err, ErrInterrupted)
		require.Equal(t, 50, tree.Cycles())
		require.Equal(t, StopInterrupt, tree.StopReason())
		requireTreeInvariants(t, tree.Tree)
	})

	t.Run("cancelled context", func(t *testing.T) {
		tree := NewDummyMCTS(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tree.SearchContext(ctx, tree.Root(), 1000)
		require.ErrorIs(t, err, ErrInterrupted)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, tree.Cycles())

		// The context is detached after the search
		_, err = tree.Search(tree.Root(), 10)
		require.NoError(t, err)
	})

	t.Run("node limit", func(t *testing.T) {
		tree := NewDummyMCTS(t, WithLimits[Move, DummyState](DefaultLimits().SetNodes(20)))
		_, err := tree.Search(tree.Root(), 1000)
		require.NoError(t, err)
		require.Equal(t, 20, tree.Size())
		require.Equal(t, StopNodes, tree.StopReason())
	})
}

func TestPlayToCompletion(t *testing.T) {
	tree := NewDummyMCTS(t)

	final, err := tree.PlayToCompletion(200)
	require.NoError(t, err)
	require.True(t, tree.Tree.IsTerminal(final))
	require.Len(t, tree.History(), dummyDepth)
	require.Equal(t, OutcomeDraw, tree.Tree.Node(final).State.Winner())
	require.Equal(t, NoNode, tree.Tree.Node(final).Parent)
}

// Actual unit tests for MCTS components, like expansion, UCT calculation, etc.

func TestExpand(t *testing.T) {
	tree, err := NewTree[Move](NewDummyState())
	require.NoError(t, err)
	root := tree.Root()

	child, err := tree.Expand(root, 2)
	require.NoError(t, err)
	require.Equal(t, root, tree.Node(child).Parent)
	require.Equal(t, Move(2), tree.Node(child).Action)
	require.Equal(t, Player2, tree.Node(child).ToMove)
	require.True(t, tree.Node(child).Stats.Virgin())
	require.True(t, tree.Node(root).Explored(2))

	_, err = tree.Expand(root, 2)
	require.ErrorIs(t, err, ErrInvalidState, "action already explored")
	_, err = tree.Expand(root, branchFactor)
	require.ErrorIs(t, err, ErrInvalidState, "illegal action")

	// ExpandNext takes the untried actions in order: 0, 1, 3
	for _, want := range []Move{0, 1, 3} {
		id, err := tree.ExpandNext(root)
		require.NoError(t, err)
		require.Equal(t, want, tree.Node(id).Action)
	}
	require.True(t, tree.FullyExpanded(root))
	require.Equal(t, branchFactor+1, tree.Size())

	_, err = tree.ExpandNext(root)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = tree.Expand(root, 0)
	require.ErrorIs(t, err, ErrInvalidState)

	terminal, err := NewTree[Move](DummyState{depth: dummyDepth, player: Player1})
	require.NoError(t, err)
	_, err = terminal.Expand(terminal.Root(), 0)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUCT(t *testing.T) {
	tree, err := NewTree[Move](NewDummyState())
	require.NoError(t, err)
	root := tree.Root()
	a, _ := tree.ExpandNext(root)
	b, _ := tree.ExpandNext(root)

	require.True(t, math.IsInf(tree.UCT(root, 1.4), 1), "root")
	require.True(t, math.IsInf(tree.UCT(a, 1.4), 1), "virgin node")

	// Player1 chooses at the root, children have Player2 to move
	// a: 3 rollouts, Player1 won 2, Player2 won 1
	// b: 1 rollout, draw
	for _, o := range []Outcome{OutcomePlayer1, OutcomePlayer1, OutcomePlayer2} {
		tree.Backpropagate(a, o)
	}
	tree.Backpropagate(b, OutcomeDraw)
	require.Equal(t, Tally{Wins: 1, Losses: 2}, tree.Node(a).Stats.Tally(), "tally is relative to Player2")

	lnN := math.Log(4)
	wantA := 1.0/3.0 + 1.4*math.Sqrt(2*lnN/3)
	wantB := 0.0 + 1.4*math.Sqrt(2*lnN/1)
	require.InDelta(t, wantA, tree.UCT(a, 1.4), 1e-9)
	require.InDelta(t, wantB, tree.UCT(b, 1.4), 1e-9)
	require.Equal(t, tree.UCT(a, 1.4), tree.UCT(a, 1.4), "UCT must be a pure function")

	// Pure exploitation prefers 'a', exploration 'b'
	require.Equal(t, a, SelectUCT(tree, root, 0))
	require.Equal(t, b, SelectUCT(tree, root, 1.4))
}

func TestSelectUCTTies(t *testing.T) {
	tree, err := NewTree[Move](NewDummyState())
	require.NoError(t, err)
	root := tree.Root()

	require.Equal(t, NoNode, SelectUCT(tree, root, 1.4))

	children := []NodeID{}
	for i := 0; i < branchFactor; i++ {
		id, err := tree.ExpandNext(root)
		require.NoError(t, err)
		children = append(children, id)
		tree.Backpropagate(id, OutcomeDraw)
	}
	require.Equal(t, children[0], SelectUCT(tree, root, 1.4), "ties go to the first child")
}

func TestBackpropagatePolarity(t *testing.T) {
	tree, err := NewTree[Move](NewDummyState())
	require.NoError(t, err)
	root := tree.Root()
	child, _ := tree.ExpandNext(root)
	grandchild, _ := tree.ExpandNext(child)

	tree.Backpropagate(grandchild, OutcomePlayer1)
	tree.Backpropagate(grandchild, OutcomeDraw)
	tree.Backpropagate(child, OutcomePlayer2)

	require.Equal(t, Tally{Wins: 1, Losses: 1, Draws: 1}, tree.Node(root).Stats.Tally())
	require.Equal(t, Tally{Wins: 1, Losses: 1, Draws: 1}, tree.Node(child).Stats.Tally())
	require.Equal(t, Tally{Wins: 1, Draws: 1}, tree.Node(grandchild).Stats.Tally())
	require.Equal(t, int32(3), tree.Node(root).Stats.N())
	require.Equal(t, int32(3), tree.Node(child).Stats.N())
	require.Equal(t, int32(2), tree.Node(grandchild).Stats.N())

	require.Equal(t, []Move{0, 0}, tree.Path(grandchild))
	require.Empty(t, tree.Path(root))
}

func TestBestChild(t *testing.T) {
	tree := NewDummyMCTS(t)
	root := tree.Root()
	require.Equal(t, NoNode, tree.BestChild(root, BestChildMostVisits))

	a, _ := tree.Tree.ExpandNext(root)
	b, _ := tree.Tree.ExpandNext(root)

	// 'a' has more visits, 'b' better win rate for Player1
	for i := 0; i < 20; i++ {
		tree.Tree.Backpropagate(a, OutcomeDraw)
	}
	for i := 0; i < 12; i++ {
		tree.Tree.Backpropagate(b, OutcomePlayer1)
	}

	require.Equal(t, a, tree.BestChild(root, BestChildMostVisits))
	require.Equal(t, b, tree.BestChild(root, BestChildWinRate))
	require.InDelta(t, 1.0, tree.Tree.Node(b).WinRateFor(Player1), 1e-9)
	require.InDelta(t, 0.0, tree.Tree.Node(b).WinRateFor(Player2), 1e-9)
}

func TestMakeMove(t *testing.T) {
	tree := NewDummyMCTS(t)
	_, err := tree.Search(tree.Root(), 2000)
	require.NoError(t, err)

	// Save the current stats
	size := tree.Size()
	maxdepth := tree.MaxDepth()
	pv := tree.Pv(tree.Root(), BestChildMostVisits)
	require.Greater(t, len(pv), 2, "No pv found after search")

	child := tree.Tree.Child(tree.Root(), pv[0])
	childStats := tree.Tree.Node(child).Stats

	require.True(t, tree.MakeMove(pv[0]))
	require.Less(t, tree.Size(), size)
	require.Less(t, tree.MaxDepth(), maxdepth)
	require.Equal(t, NoNode, tree.Tree.Node(tree.Root()).Parent)
	require.Equal(t, childStats, tree.Tree.Node(tree.Root()).Stats)
	require.Equal(t, []Move{pv[0]}, tree.History())
	requireTreeInvariants(t, tree.Tree)

	newPv := tree.Pv(tree.Root(), BestChildMostVisits)
	require.Equal(t, pv[1:], newPv, "PV must be kept after MakeMove")

	require.ErrorIs(t, tree.Advance(Move(branchFactor)), ErrInvalidState)
}

func TestAdvance(t *testing.T) {
	tree := NewDummyMCTS(t)
	_, err := tree.Search(tree.Root(), 1)
	require.NoError(t, err)

	// Only the first action was expanded, MakeMove refuses, Advance starts a new tree
	require.False(t, tree.MakeMove(3))
	require.NoError(t, tree.Advance(3))
	require.Equal(t, 1, tree.Size())
	require.Equal(t, []Move{3}, tree.History())
	require.Equal(t, Player2, tree.State().ToMove())

	// Expanded action reuses the subtree
	_, err = tree.Search(tree.Root(), 10)
	require.NoError(t, err)
	visits := tree.Tree.Node(tree.Tree.Child(tree.Root(), 0)).Stats.N()
	require.NoError(t, tree.Advance(0))
	require.Equal(t, visits, tree.Tree.Node(tree.Root()).Stats.N())
	require.Equal(t, []Move{3, 0}, tree.History())
}

func TestReset(t *testing.T) {
	tree := NewDummyMCTS(t)
	_, err := tree.PlayToCompletion(50)
	require.NoError(t, err)

	require.NoError(t, tree.Reset(NewDummyState()))
	require.Equal(t, 1, tree.Size())
	require.Empty(t, tree.History())
	require.Equal(t, 0, tree.Cycles())

	err = tree.Reset(DummyState{})
	require.True(t, errors.Is(err, ErrInvalidState))
}
