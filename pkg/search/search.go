// Package search implements point-to-point shortest-path finders over
// directed graphs: breadth-first search, Dijkstra and A*, each in a
// unidirectional and a bidirectional flavour, plus a bidirectional
// breadth-first search whose two frontiers run on separate goroutines.
//
// Finders see the graph only through the Graph interface, edge costs
// through a WeightFunc and estimates through a Heuristic. An empty Path
// means the target is unreachable; it is not an error.
package search

import (
	"context"
	"errors"
	"iter"
)

// ErrWorkerPanic is wrapped around a panic recovered from a search worker.
var ErrWorkerPanic = errors.New("search: worker panicked")

// Graph exposes the adjacency of a directed graph. ForwardNeighbors yields
// the heads of edges leaving n, BackwardNeighbors the tails of edges
// entering n. Implementations used with the parallel finder must be safe
// for concurrent reads.
type Graph[N comparable] interface {
	ForwardNeighbors(n N) iter.Seq[N]
	BackwardNeighbors(n N) iter.Seq[N]
}

// Weight is the set of numeric edge-cost types. Costs must be non-negative.
type Weight interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// WeightFunc returns the cost of the edge u→v.
type WeightFunc[N comparable, W Weight] func(u, v N) W

// Heuristic estimates the remaining cost from n to a fixed goal.
type Heuristic[N comparable, W Weight] func(n N) W

// HeuristicFactory builds a Heuristic aimed at target. Bidirectional A*
// calls it once per direction: with the target for the forward frontier and
// with the source for the backward one.
type HeuristicFactory[N comparable, W Weight] func(target N) Heuristic[N, W]

// Finder finds a path from source to target.
type Finder[N comparable] interface {
	Find(ctx context.Context, source, target N) (Path[N], error)
}

func zeroHeuristic[N comparable, W Weight](N) W {
	var zero W
	return zero
}

func unitWeight[N comparable](N, N) int { return 1 }
