package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/pq"
)

// BFS finds a path with the fewest edges.
type BFS[N comparable] struct {
	g    Graph[N]
	opts options
}

// NewBFS creates a breadth-first finder.
func NewBFS[N comparable](g Graph[N], opts ...Option) *BFS[N] {
	return &BFS[N]{g: g, opts: newOptions("bfs", opts)}
}

// Find returns a fewest-edges path from source to target, or nil if none
// exists.
func (f *BFS[N]) Find(ctx context.Context, source, target N) (Path[N], error) {
	return bestFirst[N, int](ctx, &f.opts, f.g, unitWeight[N], zeroHeuristic[N, int], source, target)
}

// Dijkstra finds a least-cost path under non-negative edge weights.
type Dijkstra[N comparable, W Weight] struct {
	g      Graph[N]
	weight WeightFunc[N, W]
	opts   options
}

// NewDijkstra creates a Dijkstra finder.
func NewDijkstra[N comparable, W Weight](g Graph[N], w WeightFunc[N, W], opts ...Option) *Dijkstra[N, W] {
	return &Dijkstra[N, W]{g: g, weight: w, opts: newOptions("dijkstra", opts)}
}

// Find returns a least-cost path from source to target, or nil if none
// exists.
func (f *Dijkstra[N, W]) Find(ctx context.Context, source, target N) (Path[N], error) {
	return bestFirst[N, W](ctx, &f.opts, f.g, f.weight, zeroHeuristic[N, W], source, target)
}

// AStar finds a least-cost path guided by a heuristic. The result is optimal
// when the heuristic never overestimates.
type AStar[N comparable, W Weight] struct {
	g         Graph[N]
	weight    WeightFunc[N, W]
	heuristic HeuristicFactory[N, W]
	opts      options
}

// NewAStar creates an A* finder. A nil factory degrades to Dijkstra.
func NewAStar[N comparable, W Weight](g Graph[N], w WeightFunc[N, W], hf HeuristicFactory[N, W], opts ...Option) *AStar[N, W] {
	return &AStar[N, W]{g: g, weight: w, heuristic: hf, opts: newOptions("astar", opts)}
}

// Find returns a least-cost path from source to target, or nil if none
// exists. The heuristic factory is called once per call with target.
func (f *AStar[N, W]) Find(ctx context.Context, source, target N) (Path[N], error) {
	h := Heuristic[N, W](zeroHeuristic[N, W])
	if f.heuristic != nil {
		h = f.heuristic(target)
	}
	return bestFirst[N, W](ctx, &f.opts, f.g, f.weight, h, source, target)
}

// bestFirst is the common loop of the unidirectional finders. Nodes are
// queued at g for BFS and Dijkstra and at g+h for A*; the target is
// accepted when it is extracted, never when it is first generated.
func bestFirst[N comparable, W Weight](
	ctx context.Context,
	o *options,
	g Graph[N],
	w WeightFunc[N, W],
	h Heuristic[N, W],
	source, target N,
) (Path[N], error) {
	open, err := pq.New[N, W](o.queue)
	if err != nil {
		return nil, err
	}
	st := NewState(open)
	st.Seed(source, h(source))

	for i := 0; !st.Open.Empty(); i++ {
		if err := o.poll(ctx.Err, i); err != nil {
			return nil, err
		}

		u, err := st.Open.ExtractMin()
		if err != nil {
			return nil, fmt.Errorf("search: extract: %w", err)
		}
		if u == target {
			o.logger.Debug("path found",
				zap.Int("settled", len(st.Closed)),
				zap.Int("seen", len(st.Cost)))
			return st.PathTo(target), nil
		}
		st.Close(u)

		gu := st.Cost[u]
		for v := range g.ForwardNeighbors(u) {
			if st.IsClosed(v) {
				continue
			}
			gv := gu + w(u, v)
			st.Relax(u, v, gv, gv+h(v))
		}
	}

	o.logger.Debug("frontier exhausted", zap.Int("settled", len(st.Closed)))
	return nil, nil
}
