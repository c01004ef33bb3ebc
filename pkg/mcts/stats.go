package mcts

import "fmt"

// Counts of win/loss/draw, interpreted relative to the owning node's player to move
type Tally struct {
	Wins   int32
	Losses int32
	Draws  int32
}

func (t Tally) Total() int32 {
	return t.Wins + t.Losses + t.Draws
}

func (t *Tally) add(r Result) {
	switch r {
	case Win:
		t.Wins++
	case Loss:
		t.Losses++
	default:
		t.Draws++
	}
}

// Visit count and outcome tally of a node. Only backpropagation mutates it,
// and counters never decrease.
type NodeStats struct {
	// Number of rollouts that passed through this node, 0 for a freshly expanded one
	visits int32
	tally  Tally
}

// Get number of visits to this node
func (stats *NodeStats) N() int32 {
	return stats.visits
}

func (stats *NodeStats) Tally() Tally {
	return stats.tally
}

// Whether no rollout has passed through this node yet
func (stats *NodeStats) Virgin() bool {
	return stats.visits == 0
}

// (wins - losses) / visits, from the perspective of the node's player to move.
// Zero for a virgin node.
func (stats *NodeStats) Value() float64 {
	if stats.visits == 0 {
		return 0
	}
	return float64(stats.tally.Wins-stats.tally.Losses) / float64(stats.visits)
}

// Ratio of wins (draws counted as half) to visits
func (stats *NodeStats) WinRate() float64 {
	if stats.visits == 0 {
		return 0
	}
	return (float64(stats.tally.Wins) + 0.5*float64(stats.tally.Draws)) / float64(stats.visits)
}

func (stats *NodeStats) record(r Result) {
	stats.visits++
	stats.tally.add(r)
}

func (stats *NodeStats) String() string {
	return fmt.Sprintf("{n=%d w=%d l=%d d=%d}", stats.visits, stats.tally.Wins, stats.tally.Losses, stats.tally.Draws)
}
