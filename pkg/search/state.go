package search

import (
	"slices"

	"github.com/azybler/pathfinder/pkg/pq"
)

// State is the bookkeeping owned by one search frontier.
//
// A node is in Closed iff it has been extracted from Open and expanded. Cost
// holds the best known distance from the frontier's root and Parent the
// predecessor on that path.
type State[N comparable, W Weight] struct {
	Open   pq.Queue[N, W]
	Closed map[N]struct{}
	Cost   map[N]W
	Parent map[N]Parent[N]
}

// NewState creates an empty State around the given open queue.
func NewState[N comparable, W Weight](open pq.Queue[N, W]) *State[N, W] {
	return &State[N, W]{
		Open:   open,
		Closed: make(map[N]struct{}),
		Cost:   make(map[N]W),
		Parent: make(map[N]Parent[N]),
	}
}

// Reset clears the state for reuse.
func (s *State[N, W]) Reset() {
	s.Open.Clear()
	clear(s.Closed)
	clear(s.Cost)
	clear(s.Parent)
}

// Seed registers root with cost zero and no parent.
func (s *State[N, W]) Seed(root N, priority W) {
	var zero W
	s.Cost[root] = zero
	s.Parent[root] = Parent[N]{}
	s.Open.Insert(root, priority)
}

// Close marks n as expanded.
func (s *State[N, W]) Close(n N) { s.Closed[n] = struct{}{} }

// IsClosed reports whether n has been expanded.
func (s *State[N, W]) IsClosed(n N) bool {
	_, ok := s.Closed[n]
	return ok
}

// Relax offers cost g for reaching v from u, queued at priority p. It
// reports whether the offer improved v. Closed nodes must be filtered by the
// caller.
func (s *State[N, W]) Relax(u, v N, g, p W) bool {
	if cur, seen := s.Cost[v]; seen {
		if g >= cur {
			return false
		}
		s.Open.DecreasePriority(v, p)
	} else {
		s.Open.Insert(v, p)
	}
	s.Cost[v] = g
	s.Parent[v] = Parent[N]{Node: u, OK: true}
	return true
}

// MinPriority returns the priority at the top of the open queue.
func (s *State[N, W]) MinPriority() (W, error) {
	n, err := s.Open.Min()
	if err != nil {
		var zero W
		return zero, err
	}
	p, _ := s.Open.Priority(n)
	return p, nil
}

// PathTo reconstructs the path from the root to n.
func (s *State[N, W]) PathTo(n N) Path[N] {
	p := trace(s.Parent, n)
	slices.Reverse(p)
	return p
}
