package mcts

import "math"

// Will be called, when the node is fully expanded, to choose the child to descend into
type SelectionPolicy[A MoveLike, G GameState[A, G]] func(tree *Tree[A, G], parent NodeID, c float64) NodeID

// UCT score of the node:
//
//	(wins - losses)/visits + c * sqrt(2 * ln(parent_visits) / visits)
//
// The exploitation term is taken from the perspective of the player who chose the
// move leading to this node (the parent's player to move). Returns +Inf for the root
// and for a node without visits, so unvisited nodes are always tried first.
func (t *Tree[A, G]) UCT(id NodeID, c float64) float64 {
	node := &t.nodes[id]
	if node.Parent == NoNode || node.Stats.Virgin() {
		return math.Inf(1)
	}

	parent := &t.nodes[node.Parent]
	visits := float64(node.Stats.N())
	exploitation := node.ValueFor(parent.ToMove)
	return exploitation + c*math.Sqrt(2*math.Log(float64(parent.Stats.N()))/visits)
}

// Choose the child with maximum UCT score, ties broken by the first encountered child.
// Returns NoNode if the node has no children.
func SelectUCT[A MoveLike, G GameState[A, G]](tree *Tree[A, G], parent NodeID, c float64) NodeID {
	best := NoNode
	bestScore := math.Inf(-1)

	for _, child := range tree.nodes[parent].Children {
		score := tree.UCT(child, c)
		// Pick the unvisited one
		if math.IsInf(score, 1) {
			return child
		}
		if best == NoNode || score > bestScore {
			bestScore = score
			best = child
		}
	}

	return best
}
