package search

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ParallelBidirectionalBFS runs the two frontiers of a level-synchronized
// bidirectional breadth-first search on separate goroutines.
//
// Each worker owns its layers and writes them under its own mutex. The only
// cross-worker access is the probe at the end of every level, where a worker
// locks the other side's mutex and checks its new level against the other
// side's visited set. The graph must be safe for concurrent reads.
type ParallelBidirectionalBFS[N comparable] struct {
	g    Graph[N]
	opts options
}

// NewParallelBidirectionalBFS creates a parallel bidirectional breadth-first
// finder.
func NewParallelBidirectionalBFS[N comparable](g Graph[N], opts ...Option) *ParallelBidirectionalBFS[N] {
	return &ParallelBidirectionalBFS[N]{g: g, opts: newOptions("parallel-bibfs", opts)}
}

// race is the coordination shared by the two workers of one Find call.
type race struct {
	met  atomic.Bool // some worker saw the frontiers intersect
	halt atomic.Bool // both workers should stop
}

// Find runs one worker per direction and returns a fewest-edges path, or nil
// if none exists. A worker failure, panics included, is returned as an error.
func (f *ParallelBidirectionalBFS[N]) Find(ctx context.Context, source, target N) (Path[N], error) {
	if source == target {
		return Path[N]{source}, nil
	}

	fwd, bwd := newLayers(source), newLayers(target)
	var r race

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.work(gctx, "forward", fwd, bwd, f.g.ForwardNeighbors, &r)
	})
	g.Go(func() error {
		return f.work(gctx, "backward", bwd, fwd, f.g.BackwardNeighbors, &r)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !r.met.Load() {
		return nil, nil
	}

	touch, ok := meetingPoint(fwd, bwd)
	if !ok {
		return nil, nil
	}
	f.opts.logger.Debug("frontiers met",
		zap.Int("visited_fwd", len(fwd.parent)),
		zap.Int("visited_bwd", len(bwd.parent)))
	return splice(fwd.parent, bwd.parent, touch), nil
}

// work expands own level by level until the frontiers meet, own is
// exhausted, the sibling halts the race, or ctx is done. A side that
// exhausts without meeting proves there is no path, since the other root is
// visited from the start.
func (f *ParallelBidirectionalBFS[N]) work(
	ctx context.Context,
	dir string,
	own, other *layers[N],
	next func(N) iter.Seq[N],
	r *race,
) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.halt.Store(true)
			err = errors.Wrapf(ErrWorkerPanic, "%s worker: %v", dir, rec)
		}
	}()

	level := []N{own.root}
	polled := 0
	for len(level) > 0 {
		var nextLevel []N
		for _, u := range level {
			if r.halt.Load() {
				return nil
			}
			if err := f.opts.poll(ctx.Err, polled); err != nil {
				r.halt.Store(true)
				return err
			}
			polled++

			du := own.dist[u]
			for v := range next(u) {
				if own.visited(v) {
					continue
				}
				own.mu.Lock()
				own.add(v, u, du+1)
				own.mu.Unlock()
				nextLevel = append(nextLevel, v)
			}
		}

		other.mu.Lock()
		hit := false
		for _, v := range nextLevel {
			if other.visited(v) {
				hit = true
				break
			}
		}
		other.mu.Unlock()

		if hit {
			r.met.Store(true)
			r.halt.Store(true)
			return nil
		}
		level = nextLevel
	}

	r.halt.Store(true)
	return nil
}

// meetingPoint picks the node visited by both sides with the smallest
// combined distance. It must only run after both workers have returned.
func meetingPoint[N comparable](fwd, bwd *layers[N]) (N, bool) {
	small, large := fwd, bwd
	if len(large.dist) < len(small.dist) {
		small, large = large, small
	}
	var (
		touch N
		best  int
		found bool
	)
	for n, ds := range small.dist {
		dl, ok := large.dist[n]
		if !ok {
			continue
		}
		if s := ds + dl; !found || s < best {
			touch, best, found = n, s, true
		}
	}
	return touch, found
}
