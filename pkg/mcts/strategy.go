package mcts

// Walk from the node up to the root, incrementing visits and the matching tally bucket
// on every ancestor. The outcome is resolved independently against each node's own
// player to move, since it changes between tree levels.
func (t *Tree[A, G]) Backpropagate(id NodeID, outcome Outcome) {
	for id != NoNode {
		node := &t.nodes[id]
		node.Stats.record(outcome.For(node.ToMove))
		id = node.Parent
	}
}
