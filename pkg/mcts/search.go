package mcts

import (
	"context"
	"fmt"
)

// Single step of the tree descent: expand the next untried action of a not fully expanded
// node, otherwise pick the child chosen by the selection policy (UCT by default).
// Fails with ErrInvalidState on a terminal node.
func (mcts *MCTS[A, G]) SelectOrExpand(id NodeID) (NodeID, error) {
	if mcts.Tree.IsTerminal(id) {
		return NoNode, fmt.Errorf("%w: cannot select from a terminal node", ErrInvalidState)
	}

	if !mcts.Tree.FullyExpanded(id) {
		return mcts.Tree.ExpandNext(id)
	}

	child := mcts.selectionPolicy(mcts.Tree, id, mcts.explorationParam)
	if child == NoNode {
		return NoNode, fmt.Errorf("%w: selection policy returned no child", ErrInvalidState)
	}
	return child, nil
}

// Descend from 'root' until reaching a freshly expanded node (or a terminal one),
// run the rollout from it and backpropagate the outcome up to the tree's root
func (mcts *MCTS[A, G]) RunIteration(root NodeID) error {
	node := root
	for {
		next, err := mcts.SelectOrExpand(node)
		if err != nil {
			return err
		}
		node = next

		if mcts.Tree.Node(node).Stats.Virgin() || mcts.Tree.IsTerminal(node) {
			break
		}
	}

	// Get the result of the rollout/playout
	outcome, err := mcts.Tree.Rollout(node, mcts.rand)
	if err != nil {
		return err
	}

	mcts.Tree.Backpropagate(node, outcome)
	return nil
}

// Same as Search, with the context attached to the limiter for the duration of the search
func (mcts *MCTS[A, G]) SearchContext(ctx context.Context, root NodeID, budget int) (NodeID, error) {
	prev := mcts.Limiter.Context()
	mcts.Limiter.SetContext(ctx)
	defer mcts.Limiter.SetContext(prev)

	return mcts.Search(root, budget)
}

// Run exactly 'budget' iterations from given node (fewer only if an optional limit
// or the stop signal ends the search earlier), then return the child of the node
// chosen by the best child policy: most visits by default.
//
// Actual search function implementation, simply calls:
//
// 1. selection/expansion - to choose the most promising node
//
// 2. rollout - to simulate the user-defined game, and get the result of a playout
//
// 3. backpropagate - to increment counters up to the root
func (mcts *MCTS[A, G]) Search(root NodeID, budget int) (NodeID, error) {
	if budget <= 0 {
		return NoNode, fmt.Errorf("%w: got %d", ErrInvalidBudget, budget)
	}
	if mcts.Tree.IsTerminal(root) {
		return NoNode, fmt.Errorf("%w: cannot search from a terminal node", ErrInvalidState)
	}

	mcts.setupSearch(uint32(budget))
	depth := mcts.MaxDepth()

	for mcts.Limiter.Ok(uint32(mcts.Size()), uint32(mcts.cycles)) {
		if err := mcts.RunIteration(root); err != nil {
			mcts.Limiter.EvaluateStopReason(uint32(mcts.Size()), uint32(mcts.cycles))
			mcts.invokeListener(mcts.listener.onStop, root)
			mcts.logger.Error().Err(err).Int("cycles", mcts.cycles).Msg("search iteration failed")
			return NoNode, err
		}

		// Increment cycle count and store the cps
		mcts.cycles++
		mcts.cps = uint32(uint64(mcts.cycles) * 1000 / uint64(mcts.Limiter.Elapsed()))

		// Invoke the 'onCycle' listener
		if mcts.listener.onCycle != nil && mcts.cycles%mcts.listener.nCycles == 0 {
			mcts.listener.onCycle(toListenerStats(mcts, root))
		}
		if d := mcts.MaxDepth(); d > depth {
			depth = d
			mcts.invokeListener(mcts.listener.onDepth, root)
		}
	}

	mcts.Limiter.EvaluateStopReason(uint32(mcts.Size()), uint32(mcts.cycles))
	mcts.invokeListener(mcts.listener.onStop, root)

	mcts.logger.Debug().
		Int("cycles", mcts.cycles).
		Int("size", mcts.Size()).
		Int("maxdepth", mcts.MaxDepth()).
		Uint32("cps", mcts.cps).
		Stringer("stop", mcts.StopReason()).
		Msg("search finished")

	if mcts.StopReason()&StopInterrupt != 0 {
		if cause := context.Cause(mcts.Limiter.Context()); cause != nil {
			return NoNode, fmt.Errorf("%w after %d cycles: %w", ErrInterrupted, mcts.cycles, cause)
		}
		return NoNode, fmt.Errorf("%w after %d cycles", ErrInterrupted, mcts.cycles)
	}

	best := mcts.BestChild(root, mcts.bestChildPolicy)
	if best == NoNode {
		return NoNode, ErrNoChildren
	}
	return best, nil
}

// Repeatedly search from the root and commit the chosen move, until the root
// is terminal. Returns the final (terminal) root, the played moves are in History.
func (mcts *MCTS[A, G]) PlayToCompletion(budget int) (NodeID, error) {
	for !mcts.Tree.IsTerminal(mcts.Root()) {
		best, err := mcts.Search(mcts.Root(), budget)
		if err != nil {
			return NoNode, err
		}

		move := mcts.Tree.Node(best).Action
		mcts.logger.Debug().
			Int("ply", len(mcts.history)+1).
			Interface("move", move).
			Float64("winrate", mcts.RootScore()).
			Msg("move chosen")

		mcts.MakeMove(move)
	}

	return mcts.Root(), nil
}

// This function only resets the counters, limiter and the stop flag,
// doesn't actually start the search
func (mcts *MCTS[A, G]) setupSearch(budget uint32) {
	mcts.Limiter.Reset(budget)
	mcts.cps = 0
	mcts.cycles = 0
}
