package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/IlikeChooros/go-uct/pkg/mcts"
	"github.com/muesli/termenv"
)

type TreeOptions struct {
	// Maximum depth below the root to print, negative for the whole tree
	Depth int
	// Exploration constant used for the printed UCT scores
	C float64
	// Skip the children without visits
	HideVirgin bool
}

func DefaultTreeOptions() TreeOptions {
	return TreeOptions{Depth: 2, C: mcts.ExplorationParam}
}

// Print the subtree of 'root' as an indented list, one node per line:
//
//	a3 Player1 n=12 w/l/d=5/4/3 q=+0.083 uct=1.234
//
// Counts are shown for the player who made the move into the node (the root uses
// its own player to move). The most visited child of every node is highlighted.
func Tree[A mcts.MoveLike, G mcts.GameState[A, G]](out *termenv.Output, tree *mcts.Tree[A, G], root mcts.NodeID, opts TreeOptions) error {
	node := tree.Node(root)
	header := out.String(fmt.Sprintf("root %v to move", node.ToMove)).Bold()
	if _, err := fmt.Fprintf(out, "%s %s\n", header, statsLine(node, node.ToMove)); err != nil {
		return err
	}
	return printChildren(out, tree, root, 1, opts)
}

func printChildren[A mcts.MoveLike, G mcts.GameState[A, G]](out *termenv.Output, tree *mcts.Tree[A, G], id mcts.NodeID, depth int, opts TreeOptions) error {
	if opts.Depth >= 0 && depth > opts.Depth {
		return nil
	}

	parent := tree.Node(id)
	best := mostVisited(tree, parent)
	indent := strings.Repeat("  ", depth)

	for _, ch := range parent.Children {
		child := tree.Node(ch)
		if opts.HideVirgin && child.Stats.Virgin() {
			continue
		}

		action := out.String(fmt.Sprintf("%v", child.Action))
		switch {
		case ch == best:
			action = action.Bold().Foreground(out.Color("2"))
		case child.Terminal:
			action = action.Faint()
		}

		line := fmt.Sprintf("%s%s %v %s uct=%s", indent, action, parent.ToMove,
			statsLine(child, parent.ToMove), formatScore(tree.UCT(ch, opts.C)))
		if child.Terminal {
			line += " " + out.String(child.State.Winner().String()).Italic().String()
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}

		if err := printChildren(out, tree, ch, depth+1, opts); err != nil {
			return err
		}
	}
	return nil
}

// n, w/l/d and the average value from p's perspective
func statsLine[A mcts.MoveLike, G mcts.GameState[A, G]](node *mcts.Node[A, G], p mcts.Player) string {
	tally := node.Stats.Tally()
	wins, losses := tally.Wins, tally.Losses
	if p != node.ToMove {
		wins, losses = losses, wins
	}
	return fmt.Sprintf("n=%d w/l/d=%d/%d/%d q=%+.3f", node.Stats.N(), wins, losses, tally.Draws, node.ValueFor(p))
}

func mostVisited[A mcts.MoveLike, G mcts.GameState[A, G]](tree *mcts.Tree[A, G], node *mcts.Node[A, G]) mcts.NodeID {
	best, visits := mcts.NoNode, int32(0)
	for _, ch := range node.Children {
		if n := tree.Node(ch).Stats.N(); n > visits {
			best, visits = ch, n
		}
	}
	return best
}

func formatScore(score float64) string {
	if math.IsInf(score, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.3f", score)
}
