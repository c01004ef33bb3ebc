package mcts

type ListenerTreeStats[A MoveLike] struct {
	Maxdepth int
	Cycles   int
	TimeMs   int
	Cps      uint32
	Size     int
	// Best line from the search root, according to the engine's best child policy
	Pv []A
	// Win rate of the first move in Pv, for the player to move at the search root,
	// -1 if there is no such move yet
	Eval       float64
	StopReason StopReason
}

// Convert the search state to 'ListenerTreeStats' struct
func toListenerStats[A MoveLike, G GameState[A, G]](tree *MCTS[A, G], root NodeID) ListenerTreeStats[A] {
	stats := ListenerTreeStats[A]{
		Maxdepth:   tree.MaxDepth(),
		Cycles:     tree.Cycles(),
		TimeMs:     int(tree.Limiter.Elapsed()),
		Cps:        tree.Cps(),
		Size:       tree.Size(),
		Pv:         tree.Pv(root, tree.bestChildPolicy),
		Eval:       -1,
		StopReason: tree.Limiter.StopReason(),
	}

	if best := tree.BestChild(root, tree.bestChildPolicy); best != NoNode {
		stats.Eval = tree.Tree.Node(best).WinRateFor(tree.Tree.Node(root).ToMove)
	}
	return stats
}

// Listener function callback, will recieve current tree statistics, like
// max depth of tree, number of iterations so far
type ListenerFunc[A MoveLike] func(ListenerTreeStats[A])

type StatsListener[A MoveLike] struct {
	// called when 'max depth' increases
	onDepth ListenerFunc[A]

	// called every N full iterations
	onCycle ListenerFunc[A]
	nCycles int // call 'onCycle' every N cycles

	// called when the search stops (either by limiter or 'stop' signal)
	onStop ListenerFunc[A]
}

func NewStatsListener[A MoveLike]() StatsListener[A] {
	return StatsListener[A]{nCycles: 1}
}

// Attach new on max depth change callback
func (listener *StatsListener[A]) OnDepth(onDepth ListenerFunc[A]) *StatsListener[A] {
	listener.onDepth = onDepth
	return listener
}

// Attach new on iteration increase callback, this will slow down the search,
// because of pv evaluation, so use it with a large cycle interval
func (listener *StatsListener[A]) OnCycle(onCycle ListenerFunc[A]) *StatsListener[A] {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener[A]) SetCycleInterval(n int) *StatsListener[A] {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// Attach 'on search end' callback, called once per search,
// makes 'StopReason' available in the stats
func (listener *StatsListener[A]) OnStop(onStop ListenerFunc[A]) *StatsListener[A] {
	listener.onStop = onStop
	return listener
}
