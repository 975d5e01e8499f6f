package search

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/pq"
)

// BidirectionalDijkstra runs Dijkstra from the source over outgoing edges
// and from the target over incoming edges, one expansion per side in turn.
type BidirectionalDijkstra[N comparable, W Weight] struct {
	g      Graph[N]
	weight WeightFunc[N, W]
	opts   options
}

// NewBidirectionalDijkstra creates a bidirectional Dijkstra finder.
func NewBidirectionalDijkstra[N comparable, W Weight](g Graph[N], w WeightFunc[N, W], opts ...Option) *BidirectionalDijkstra[N, W] {
	return &BidirectionalDijkstra[N, W]{g: g, weight: w, opts: newOptions("bidijkstra", opts)}
}

// Find searches from source and target at once and returns a least-cost
// path, or nil if none exists.
func (f *BidirectionalDijkstra[N, W]) Find(ctx context.Context, source, target N) (Path[N], error) {
	zero := Heuristic[N, W](zeroHeuristic[N, W])
	return bidirectional[N, W](ctx, &f.opts, f.g, f.weight, zero, zero, sumBound[W], source, target)
}

// BidirectionalAStar is bidirectional search with a forward heuristic aimed
// at the target and a backward heuristic aimed at the source.
//
// Both heuristics must be consistent. Under that precondition the search
// stops only once the best meeting cost is no larger than the greater of the
// two frontiers' minimum f-values, which makes the result optimal.
type BidirectionalAStar[N comparable, W Weight] struct {
	g         Graph[N]
	weight    WeightFunc[N, W]
	heuristic HeuristicFactory[N, W]
	opts      options
}

// NewBidirectionalAStar creates a bidirectional A* finder. A nil factory
// degrades to bidirectional Dijkstra.
func NewBidirectionalAStar[N comparable, W Weight](g Graph[N], w WeightFunc[N, W], hf HeuristicFactory[N, W], opts ...Option) *BidirectionalAStar[N, W] {
	return &BidirectionalAStar[N, W]{g: g, weight: w, heuristic: hf, opts: newOptions("biastar", opts)}
}

// Find searches from both ends, the forward side aimed at target and the
// backward side at source. It returns nil if no path exists.
func (f *BidirectionalAStar[N, W]) Find(ctx context.Context, source, target N) (Path[N], error) {
	if f.heuristic == nil {
		zero := Heuristic[N, W](zeroHeuristic[N, W])
		return bidirectional[N, W](ctx, &f.opts, f.g, f.weight, zero, zero, sumBound[W], source, target)
	}
	return bidirectional[N, W](ctx, &f.opts, f.g, f.weight, f.heuristic(target), f.heuristic(source), maxBound[W], source, target)
}

// sumBound is the stopping bound for queues keyed by g alone: no unseen
// meeting can beat the sum of the two frontier minima.
func sumBound[W Weight](fwd, bwd W) W { return fwd + bwd }

// maxBound is the stopping bound for queues keyed by g+h with consistent
// heuristics: every unseen path costs at least either frontier minimum.
func maxBound[W Weight](fwd, bwd W) W { return max(fwd, bwd) }

// frontier is one direction of a bidirectional search.
type frontier[N comparable, W Weight] struct {
	st   *State[N, W]
	next func(N) iter.Seq[N]
	cost func(u, v N) W
	h    Heuristic[N, W]
}

// meeting tracks the best path found through a node labelled by both
// frontiers.
type meeting[N comparable, W Weight] struct {
	found bool
	cost  W
	touch N
}

func (m *meeting[N, W]) offer(n N, fwd, bwd *State[N, W]) {
	gf, okf := fwd.Cost[n]
	gb, okb := bwd.Cost[n]
	if !okf || !okb {
		return
	}
	if c := gf + gb; !m.found || c < m.cost {
		m.found, m.cost, m.touch = true, c, n
	}
}

func bidirectional[N comparable, W Weight](
	ctx context.Context,
	o *options,
	g Graph[N],
	w WeightFunc[N, W],
	hFwd, hBwd Heuristic[N, W],
	bound func(fwd, bwd W) W,
	source, target N,
) (Path[N], error) {
	if source == target {
		return Path[N]{source}, nil
	}

	fwdOpen, err := pq.New[N, W](o.queue)
	if err != nil {
		return nil, err
	}
	bwdOpen, err := pq.New[N, W](o.queue)
	if err != nil {
		return nil, err
	}

	fwd := &frontier[N, W]{
		st:   NewState(fwdOpen),
		next: g.ForwardNeighbors,
		cost: w,
		h:    hFwd,
	}
	bwd := &frontier[N, W]{
		st:   NewState(bwdOpen),
		next: g.BackwardNeighbors,
		cost: func(u, v N) W { return w(v, u) },
		h:    hBwd,
	}
	fwd.st.Seed(source, hFwd(source))
	bwd.st.Seed(target, hBwd(target))

	var m meeting[N, W]
	sides := [2]*frontier[N, W]{fwd, bwd}

	for i := 0; !fwd.st.Open.Empty() && !bwd.st.Open.Empty(); i++ {
		if err := o.poll(ctx.Err, i); err != nil {
			return nil, err
		}

		if m.found {
			topF, err := fwd.st.MinPriority()
			if err != nil {
				return nil, fmt.Errorf("search: forward min: %w", err)
			}
			topB, err := bwd.st.MinPriority()
			if err != nil {
				return nil, fmt.Errorf("search: backward min: %w", err)
			}
			if m.cost <= bound(topF, topB) {
				break
			}
		}

		self := sides[i%2]
		if err := expand(self, fwd.st, bwd.st, &m); err != nil {
			return nil, err
		}
	}

	o.logger.Debug("bidirectional search finished",
		zap.Bool("found", m.found),
		zap.Int("settled_fwd", len(fwd.st.Closed)),
		zap.Int("settled_bwd", len(bwd.st.Closed)))

	if !m.found {
		return nil, nil
	}
	return splice(fwd.st.Parent, bwd.st.Parent, m.touch), nil
}

// expand extracts one node from self and relaxes its edges, offering every
// improved node as a meeting candidate.
func expand[N comparable, W Weight](self *frontier[N, W], fwd, bwd *State[N, W], m *meeting[N, W]) error {
	st := self.st
	u, err := st.Open.ExtractMin()
	if err != nil {
		return fmt.Errorf("search: extract: %w", err)
	}
	st.Close(u)
	m.offer(u, fwd, bwd)

	gu := st.Cost[u]
	for v := range self.next(u) {
		if st.IsClosed(v) {
			continue
		}
		gv := gu + self.cost(u, v)
		if st.Relax(u, v, gv, gv+self.h(v)) {
			m.offer(v, fwd, bwd)
		}
	}
	return nil
}
