package search

import (
	"context"
	"iter"
	"sync"

	"go.uber.org/zap"
)

// layers is the visitation record of one breadth-first frontier: BFS tree
// parents and hop distances from the root. mu is only taken by the parallel
// finder.
type layers[N comparable] struct {
	mu     sync.Mutex
	root   N
	parent map[N]Parent[N]
	dist   map[N]int
}

func newLayers[N comparable](root N) *layers[N] {
	return &layers[N]{
		root:   root,
		parent: map[N]Parent[N]{root: {}},
		dist:   map[N]int{root: 0},
	}
}

func (l *layers[N]) visited(n N) bool {
	_, ok := l.parent[n]
	return ok
}

func (l *layers[N]) add(n, from N, d int) {
	l.parent[n] = Parent[N]{Node: from, OK: true}
	l.dist[n] = d
}

// bestTouch returns the node of level with the smallest combined distance
// among those also visited by other. Ties keep the first candidate.
func bestTouch[N comparable](level []N, fwd, bwd *layers[N]) (N, bool) {
	var (
		touch N
		best  int
		found bool
	)
	for _, n := range level {
		df, okf := fwd.dist[n]
		db, okb := bwd.dist[n]
		if !okf || !okb {
			continue
		}
		if s := df + db; !found || s < best {
			touch, best, found = n, s, true
		}
	}
	return touch, found
}

// BidirectionalBFS is a level-synchronized bidirectional breadth-first
// search. The two frontiers alternate expanding a complete level; after each
// level the new nodes are intersected with the other side's visited set, and
// the intersection node with the smallest combined distance is the meeting
// point.
type BidirectionalBFS[N comparable] struct {
	g    Graph[N]
	opts options
}

// NewBidirectionalBFS creates a bidirectional breadth-first finder.
func NewBidirectionalBFS[N comparable](g Graph[N], opts ...Option) *BidirectionalBFS[N] {
	return &BidirectionalBFS[N]{g: g, opts: newOptions("bibfs", opts)}
}

// Find returns a fewest-edges path, or nil if none exists.
func (f *BidirectionalBFS[N]) Find(ctx context.Context, source, target N) (Path[N], error) {
	if source == target {
		return Path[N]{source}, nil
	}

	fwd, bwd := newLayers(source), newLayers(target)
	type side struct {
		own   *layers[N]
		next  func(N) iter.Seq[N]
		level []N
	}
	sides := [2]*side{
		{own: fwd, next: f.g.ForwardNeighbors, level: []N{source}},
		{own: bwd, next: f.g.BackwardNeighbors, level: []N{target}},
	}

	polled := 0
	for turn := 0; len(sides[0].level) > 0 && len(sides[1].level) > 0; turn++ {
		s := sides[turn%2]

		var next []N
		for _, u := range s.level {
			if err := f.opts.poll(ctx.Err, polled); err != nil {
				return nil, err
			}
			polled++

			du := s.own.dist[u]
			for v := range s.next(u) {
				if s.own.visited(v) {
					continue
				}
				s.own.add(v, u, du+1)
				next = append(next, v)
			}
		}
		s.level = next

		if touch, ok := bestTouch(next, fwd, bwd); ok {
			f.opts.logger.Debug("frontiers met",
				zap.Int("levels", turn+1),
				zap.Int("visited_fwd", len(fwd.parent)),
				zap.Int("visited_bwd", len(bwd.parent)))
			return splice(fwd.parent, bwd.parent, touch), nil
		}
	}

	return nil, nil
}
