package mcts

import (
	"fmt"
	"slices"

	"golang.org/x/exp/rand"
)

// Arena of search nodes. Node pointers returned by Node are valid until the
// next expansion, NodeID values are stable for the lifetime of the tree.
type Tree[A MoveLike, G GameState[A, G]] struct {
	nodes    []Node[A, G]
	root     NodeID
	maxdepth int
}

// Create new tree, with given state as the root
func NewTree[A MoveLike, G GameState[A, G]](state G) (*Tree[A, G], error) {
	tree := &Tree[A, G]{root: NoNode}
	var zero A
	root, err := tree.newNode(state, zero, NoNode)
	if err != nil {
		return nil, err
	}
	tree.root = root
	return tree, nil
}

func (t *Tree[A, G]) newNode(state G, action A, parent NodeID) (NodeID, error) {
	toMove := state.ToMove()
	if !toMove.Valid() {
		return NoNode, fmt.Errorf("%w: state has no player to move (%d)", ErrInvalidState, toMove)
	}

	terminal := state.IsTerminal()
	var actions []A
	if terminal {
		if !state.Winner().Decided() {
			return NoNode, fmt.Errorf("%w: terminal state without a result", ErrInvalidState)
		}
	} else {
		actions = state.LegalActions()
		if len(actions) == 0 {
			return NoNode, ErrEmptyActions
		}
	}

	depth := 0
	if parent != NoNode {
		depth = t.nodes[parent].Depth + 1
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node[A, G]{
		State:    state,
		Action:   action,
		Parent:   parent,
		ToMove:   toMove,
		Terminal: terminal,
		Depth:    depth,
		actions:  actions,
	})
	t.maxdepth = max(t.maxdepth, depth)
	return id, nil
}

func (t *Tree[A, G]) Root() NodeID {
	return t.root
}

// Get the node, the pointer is invalidated by the next expansion
func (t *Tree[A, G]) Node(id NodeID) *Node[A, G] {
	return &t.nodes[id]
}

// Number of nodes in the tree
func (t *Tree[A, G]) Size() int {
	return len(t.nodes)
}

// Maximum depth reached in the tree
func (t *Tree[A, G]) MaxDepth() int {
	return t.maxdepth
}

func (t *Tree[A, G]) IsTerminal(id NodeID) bool {
	return t.nodes[id].Terminal
}

func (t *Tree[A, G]) LegalActions(id NodeID) []A {
	return t.nodes[id].actions
}

func (t *Tree[A, G]) FullyExpanded(id NodeID) bool {
	return t.nodes[id].FullyExpanded()
}

// Find the child created for given action, NoNode if it wasn't expanded
func (t *Tree[A, G]) Child(id NodeID, action A) NodeID {
	for _, ch := range t.nodes[id].Children {
		if t.nodes[ch].Action == action {
			return ch
		}
	}
	return NoNode
}

// Construct exactly one new child for the unexplored action. Fails with ErrInvalidState
// if the node is terminal, fully expanded, or the action is illegal or already explored.
func (t *Tree[A, G]) Expand(id NodeID, action A) (NodeID, error) {
	node := &t.nodes[id]
	if node.Terminal {
		return NoNode, fmt.Errorf("%w: cannot expand a terminal node", ErrInvalidState)
	}
	if node.FullyExpanded() {
		return NoNode, fmt.Errorf("%w: node is fully expanded", ErrInvalidState)
	}
	if node.Explored(action) {
		return NoNode, fmt.Errorf("%w: action %v already explored", ErrInvalidState, action)
	}
	if !slices.Contains(node.actions, action) {
		return NoNode, fmt.Errorf("%w: action %v is not legal", ErrInvalidState, action)
	}

	state := node.State.Apply(action)
	child, err := t.newNode(state, action, id)
	if err != nil {
		return NoNode, err
	}

	// The arena may have grown, take the parent again
	node = &t.nodes[id]
	if node.explored == nil {
		node.explored = make(map[A]struct{}, len(node.actions))
	}
	node.explored[action] = struct{}{}
	node.Children = append(node.Children, child)
	return child, nil
}

// Expand the next untried action, in the enumeration order of LegalActions
func (t *Tree[A, G]) ExpandNext(id NodeID) (NodeID, error) {
	node := &t.nodes[id]
	if node.Terminal {
		return NoNode, fmt.Errorf("%w: cannot expand a terminal node", ErrInvalidState)
	}
	action, ok := node.untried()
	if !ok {
		return NoNode, fmt.Errorf("%w: node is fully expanded", ErrInvalidState)
	}
	return t.Expand(id, action)
}

// Simulate play from the node's state to a terminal state, doesn't modify the tree
func (t *Tree[A, G]) Rollout(id NodeID, r *rand.Rand) (Outcome, error) {
	node := &t.nodes[id]
	if node.Terminal {
		return node.State.Winner(), nil
	}

	outcome := node.State.Rollout(r)
	if !outcome.Decided() {
		return OutcomeNone, fmt.Errorf("%w: rollout ended without a result", ErrInvalidState)
	}
	return outcome, nil
}

// Actions from the root to given node
func (t *Tree[A, G]) Path(id NodeID) []A {
	path := make([]A, 0, t.nodes[id].Depth)
	for ; id != NoNode && t.nodes[id].Parent != NoNode; id = t.nodes[id].Parent {
		path = append(path, t.nodes[id].Action)
	}
	slices.Reverse(path)
	return path
}

// Copy the subtree rooted at given node into a new arena, the node becomes the root.
// Children keep their order, statistics are preserved.
func (t *Tree[A, G]) Subtree(id NodeID) *Tree[A, G] {
	sub := &Tree[A, G]{root: 0, nodes: make([]Node[A, G], 0, t.countNodes(id))}

	type entry struct {
		old    NodeID
		parent NodeID
	}
	queue := []entry{{old: id, parent: NoNode}}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		src := &t.nodes[e.old]
		newID := NodeID(len(sub.nodes))
		depth := 0
		if e.parent != NoNode {
			depth = sub.nodes[e.parent].Depth + 1
			sub.nodes[e.parent].Children = append(sub.nodes[e.parent].Children, newID)
		}

		node := Node[A, G]{
			Stats:    src.Stats,
			State:    src.State,
			Action:   src.Action,
			Parent:   e.parent,
			ToMove:   src.ToMove,
			Terminal: src.Terminal,
			Depth:    depth,
			actions:  src.actions,
		}
		if len(src.Children) > 0 {
			node.Children = make([]NodeID, 0, len(src.Children))
			node.explored = make(map[A]struct{}, len(src.actions))
			for a := range src.explored {
				node.explored[a] = struct{}{}
			}
		}
		sub.nodes = append(sub.nodes, node)
		sub.maxdepth = max(sub.maxdepth, depth)

		for _, ch := range src.Children {
			queue = append(queue, entry{old: ch, parent: newID})
		}
	}

	return sub
}

// Helper function to count subtree nodes
func (t *Tree[A, G]) countNodes(id NodeID) int {
	nodes := 1
	for _, ch := range t.nodes[id].Children {
		nodes += t.countNodes(ch)
	}
	return nodes
}
