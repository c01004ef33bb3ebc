package mcts

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

type Option[A MoveLike, G GameState[A, G]] func(mcts *MCTS[A, G])

// Set the exploration constant of the UCT formula, by default uses ExplorationParam
func WithExplorationParam[A MoveLike, G GameState[A, G]](c float64) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		mcts.explorationParam = max(0, c)
	}
}

// Set the final move selection policy, by default BestChildMostVisits
func WithBestChildPolicy[A MoveLike, G GameState[A, G]](policy BestChildPolicy) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		mcts.bestChildPolicy = policy
	}
}

// Set the in-tree selection policy, by default SelectUCT
func WithSelectionPolicy[A MoveLike, G GameState[A, G]](policy SelectionPolicy[A, G]) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		if policy != nil {
			mcts.selectionPolicy = policy
		}
	}
}

func WithLimits[A MoveLike, G GameState[A, G]](limits *Limits) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		mcts.Limiter.SetLimits(limits)
	}
}

func WithListener[A MoveLike, G GameState[A, G]](listener StatsListener[A]) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		mcts.SetListener(listener)
	}
}

func WithLogger[A MoveLike, G GameState[A, G]](logger zerolog.Logger) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		mcts.logger = logger
	}
}

// Seed the random number generator used by rollouts, by default seeded with SeedGeneratorFn
func WithSeed[A MoveLike, G GameState[A, G]](seed uint64) Option[A, G] {
	return func(mcts *MCTS[A, G]) {
		mcts.rand = rand.New(rand.NewSource(seed))
	}
}

// Single-threaded Monte Carlo tree search over a game implementing GameState
type MCTS[A MoveLike, G GameState[A, G]] struct {
	Tree             *Tree[A, G]
	Limiter          *Limiter
	listener         *StatsListener[A]
	selectionPolicy  SelectionPolicy[A, G]
	bestChildPolicy  BestChildPolicy
	explorationParam float64
	rand             *rand.Rand
	logger           zerolog.Logger
	cycles           int
	cps              uint32
	history          []A
}

// Create new search tree, rooted at given state
func NewMCTS[A MoveLike, G GameState[A, G]](state G, options ...Option[A, G]) (*MCTS[A, G], error) {
	tree, err := NewTree[A](state)
	if err != nil {
		return nil, err
	}

	mcts := &MCTS[A, G]{
		Tree:             tree,
		Limiter:          NewLimiter(),
		listener:         &StatsListener[A]{nCycles: 1},
		selectionPolicy:  SelectUCT[A, G],
		bestChildPolicy:  BestChildMostVisits,
		explorationParam: ExplorationParam,
		logger:           zerolog.Nop(),
	}

	for _, option := range options {
		option(mcts)
	}

	if mcts.rand == nil {
		mcts.rand = rand.New(rand.NewSource(uint64(SeedGeneratorFn())))
	}

	return mcts, nil
}

func (mcts *MCTS[A, G]) Root() NodeID {
	return mcts.Tree.Root()
}

// State at the root of the tree
func (mcts *MCTS[A, G]) State() G {
	return mcts.Tree.Node(mcts.Tree.Root()).State
}

func (mcts *MCTS[A, G]) ExplorationParam() float64 {
	return mcts.explorationParam
}

func (mcts *MCTS[A, G]) BestChildPolicy() BestChildPolicy {
	return mcts.bestChildPolicy
}

func (mcts *MCTS[A, G]) invokeListener(f ListenerFunc[A], root NodeID) {
	if f != nil {
		f(toListenerStats(mcts, root))
	}
}

func (mcts *MCTS[A, G]) ResetListener() {
	mcts.listener.OnCycle(nil).OnDepth(nil).OnStop(nil)
}

func (mcts *MCTS[A, G]) StatsListener() *StatsListener[A] {
	return mcts.listener
}

func (mcts *MCTS[A, G]) SetListener(listener StatsListener[A]) {
	*mcts.listener = listener
	mcts.listener.SetCycleInterval(listener.nCycles)
}

// Adds custom context to the limiter, enabling cancellation through it
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
//	defer cancel()
//
//	tree.SetContext(ctx)
//	tree.Search(tree.Root(), 1_000_000)
func (mcts *MCTS[A, G]) SetContext(ctx context.Context) {
	mcts.Limiter.SetContext(ctx)
}

// Stop the search, the current iteration is always finished
func (mcts *MCTS[A, G]) Stop() {
	mcts.Limiter.SetStop(true)
}

// Maxiumum depth reached in the tree, note that usually MaxDepth != len(pv)
func (mcts *MCTS[A, G]) MaxDepth() int {
	return mcts.Tree.MaxDepth()
}

// Total number of 'iterations', 'cycles', 'simluations' ran during the last search
func (mcts *MCTS[A, G]) Cycles() int {
	return mcts.cycles
}

// Get cycles per second statistic
func (mcts *MCTS[A, G]) Cps() uint32 {
	return mcts.cps
}

// Get the size of the tree
func (mcts *MCTS[A, G]) Size() int {
	return mcts.Tree.Size()
}

// Get the reason why the search was stopped, valid after search ends
func (mcts *MCTS[A, G]) StopReason() StopReason {
	return mcts.Limiter.StopReason()
}

func (mcts *MCTS[A, G]) SetLimits(limits *Limits) {
	mcts.Limiter.SetLimits(limits)
}

func (mcts *MCTS[A, G]) Limits() *Limits {
	return mcts.Limiter.Limits()
}

// Actions committed with MakeMove/Advance since the engine was created (or Reset)
func (mcts *MCTS[A, G]) History() []A {
	return mcts.history
}

func (mcts *MCTS[A, G]) String() string {
	root := mcts.Tree.Node(mcts.Root())
	return fmt.Sprintf("MCTS={Size=%d, Stats:{maxdepth=%d, cps=%d, cycles=%d}, Stop=%v, Root=%s, Root.Children=%d}",
		mcts.Size(), mcts.MaxDepth(), mcts.Cps(), mcts.Cycles(), mcts.StopReason(), root.Stats.String(), len(root.Children))
}

// Tries to make given 'move' a new root, keeping its subtree and discarding the rest
// of the tree. Returns false (and does nothing) if the move was never expanded.
func (mcts *MCTS[A, G]) MakeMove(move A) bool {
	child := mcts.Tree.Child(mcts.Root(), move)
	if child == NoNode {
		return false
	}

	mcts.Tree = mcts.Tree.Subtree(child)
	mcts.history = append(mcts.history, move)
	return true
}

// Commit the move, reusing its subtree if it exists, otherwise starting a new tree
// at the resulting state. Fails if the move is not legal at the root.
func (mcts *MCTS[A, G]) Advance(move A) error {
	if mcts.MakeMove(move) {
		return nil
	}

	root := mcts.Tree.Node(mcts.Root())
	if root.Terminal {
		return fmt.Errorf("%w: cannot advance from a terminal state", ErrInvalidState)
	}

	if !slices.Contains(root.actions, move) {
		return fmt.Errorf("%w: action %v is not legal", ErrInvalidState, move)
	}

	tree, err := NewTree[A](root.State.Apply(move))
	if err != nil {
		return err
	}
	mcts.Tree = tree
	mcts.history = append(mcts.history, move)
	return nil
}

// Remove previous tree & history, and start from given state
func (mcts *MCTS[A, G]) Reset(state G) error {
	tree, err := NewTree[A](state)
	if err != nil {
		return err
	}

	mcts.Tree = tree
	mcts.history = nil
	mcts.cycles = 0
	mcts.cps = 0
	return nil
}

// Return best child, based on the policy, NoNode if there is no visited child
func (mcts *MCTS[A, G]) BestChild(id NodeID, policy BestChildPolicy) NodeID {
	node := mcts.Tree.Node(id)
	best := NoNode

	switch policy {
	case BestChildWinRate:
		// We optimize the winning chances, looking from the node's player to move
		bestWinRate := -1.0
		for _, ch := range node.Children {
			child := mcts.Tree.Node(ch)
			if child.Stats.N() < MinWinRateVisits {
				continue
			}
			if wr := child.WinRateFor(node.ToMove); wr > bestWinRate {
				bestWinRate = wr
				best = ch
			}
		}
		if best != NoNode {
			return best
		}
		// Not enough samples, fall back to the visit count
		fallthrough
	case BestChildMostVisits:
		maxVisits := int32(0)
		for _, ch := range node.Children {
			if v := mcts.Tree.Node(ch).Stats.N(); v > maxVisits {
				maxVisits = v
				best = ch
			}
		}
	}

	return best
}

// Get the principal variation (ie. the best sequence of moves)
// from given starting node, based on given best child policy
func (mcts *MCTS[A, G]) Pv(id NodeID, policy BestChildPolicy) []A {
	pv := make([]A, 0, mcts.MaxDepth())
	for node := mcts.BestChild(id, policy); node != NoNode; node = mcts.BestChild(node, policy) {
		pv = append(pv, mcts.Tree.Node(node).Action)
	}
	return pv
}

// Current evaluation of the root position: win rate of the best child for the
// player to move, -1 if nothing was searched yet
func (mcts *MCTS[A, G]) RootScore() float64 {
	root := mcts.Root()
	if best := mcts.BestChild(root, mcts.bestChildPolicy); best != NoNode {
		return mcts.Tree.Node(best).WinRateFor(mcts.Tree.Node(root).ToMove)
	}
	return -1
}

// 'the best move' in the root position, false if nothing was searched yet
func (mcts *MCTS[A, G]) RootMove() (A, bool) {
	var move A
	best := mcts.BestChild(mcts.Root(), mcts.bestChildPolicy)
	if best == NoNode {
		return move, false
	}
	return mcts.Tree.Node(best).Action, true
}
