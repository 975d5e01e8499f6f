package routing

import (
	"errors"
	"fmt"

	"github.com/azybler/pathfinder/pkg/search"
)

// ErrUnknownAlgorithm is returned for an algorithm name outside Algorithms.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm names a path-finding strategy.
type Algorithm string

const (
	BFS           Algorithm = "bfs"
	BiBFS         Algorithm = "bibfs"
	ParallelBiBFS Algorithm = "parallel-bibfs"
	Dijkstra      Algorithm = "dijkstra"
	BiDijkstra    Algorithm = "bidijkstra"
	AStar         Algorithm = "astar"
	BiAStar       Algorithm = "biastar"
)

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{BFS, BiBFS, ParallelBiBFS, Dijkstra, BiDijkstra, AStar, BiAStar}

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range Algorithms {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Weighted reports whether the algorithm minimises total weight rather than
// hop count.
func (a Algorithm) Weighted() bool {
	switch a {
	case BFS, BiBFS, ParallelBiBFS:
		return false
	}
	return true
}

// NewFinder builds the finder for alg. The heuristic factory is only used by
// the A* variants and may be nil.
func NewFinder[N comparable, W search.Weight](
	alg Algorithm,
	g search.Graph[N],
	w search.WeightFunc[N, W],
	hf search.HeuristicFactory[N, W],
	opts ...search.Option,
) (search.Finder[N], error) {
	switch alg {
	case BFS:
		return search.NewBFS[N](g, opts...), nil
	case BiBFS:
		return search.NewBidirectionalBFS[N](g, opts...), nil
	case ParallelBiBFS:
		return search.NewParallelBidirectionalBFS[N](g, opts...), nil
	case Dijkstra:
		return search.NewDijkstra[N, W](g, w, opts...), nil
	case BiDijkstra:
		return search.NewBidirectionalDijkstra[N, W](g, w, opts...), nil
	case AStar:
		return search.NewAStar[N, W](g, w, hf, opts...), nil
	case BiAStar:
		return search.NewBidirectionalAStar[N, W](g, w, hf, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
}
