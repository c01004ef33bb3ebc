package mcts

// One game position of the search tree. Nodes are stored in the tree's arena,
// the parent link and children are arena indices: the parent owns its children,
// the child only reads its parent (ancestor visits, backpropagation walk).
type Node[A MoveLike, G GameState[A, G]] struct {
	Stats NodeStats
	// Owned game state, never modified after construction
	State G
	// Action that led from the parent to this node, zero value for the root
	Action A
	// NoNode for the root
	Parent NodeID
	// In the order the actions were expanded
	Children []NodeID
	// Cached State.ToMove()
	ToMove   Player
	Terminal bool
	// Distance from the root
	Depth int

	actions  []A
	explored map[A]struct{}
}

// Legal actions of the owned state (cached at construction)
func (node *Node[A, G]) LegalActions() []A {
	return node.actions
}

// Whether a child for this action already exists
func (node *Node[A, G]) Explored(action A) bool {
	_, ok := node.explored[action]
	return ok
}

// Every legal action has a child. Terminal nodes are trivially fully expanded
func (node *Node[A, G]) FullyExpanded() bool {
	return len(node.Children) >= len(node.actions)
}

// Next untried action in enumeration order
func (node *Node[A, G]) untried() (A, bool) {
	for _, a := range node.actions {
		if !node.Explored(a) {
			return a, true
		}
	}
	var zero A
	return zero, false
}

// Average outcome for the given player: (wins - losses) / visits where the tally
// is flipped if p is not this node's player to move
func (node *Node[A, G]) ValueFor(p Player) float64 {
	v := node.Stats.Value()
	if p != node.ToMove {
		return -v
	}
	return v
}

// Win rate (draws count as half) for the given player
func (node *Node[A, G]) WinRateFor(p Player) float64 {
	if node.Stats.Virgin() {
		return 0
	}
	if p == node.ToMove {
		return node.Stats.WinRate()
	}
	t := node.Stats.Tally()
	return (float64(t.Losses) + 0.5*float64(t.Draws)) / float64(node.Stats.N())
}
