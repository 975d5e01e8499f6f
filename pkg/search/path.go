package search

import "slices"

// Path is a node sequence from source to target inclusive. A nil or empty
// Path means no path exists; a single node means source == target.
type Path[N comparable] []N

// Found reports whether the path is non-empty.
func (p Path[N]) Found() bool { return len(p) > 0 }

// Hops returns the number of edges on the path.
func (p Path[N]) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// PathCost sums w over consecutive node pairs of p.
func PathCost[N comparable, W Weight](p Path[N], w WeightFunc[N, W]) W {
	var total W
	for i := 1; i < len(p); i++ {
		total += w(p[i-1], p[i])
	}
	return total
}

// Parent is a predecessor link. The root of a search tree carries OK ==
// false.
type Parent[N comparable] struct {
	Node N
	OK   bool
}

// trace walks parent links from n to the root and returns [n, ..., root].
// The walk is bounded by the map size so a corrupt map cannot loop forever.
func trace[N comparable](parents map[N]Parent[N], n N) []N {
	out := []N{n}
	for range len(parents) {
		p, ok := parents[n]
		if !ok || !p.OK {
			break
		}
		n = p.Node
		out = append(out, n)
	}
	return out
}

// splice joins a forward tree rooted at the source and a backward tree
// rooted at the target through touch.
func splice[N comparable](fwd, bwd map[N]Parent[N], touch N) Path[N] {
	path := trace(fwd, touch)
	slices.Reverse(path)
	return append(path, trace(bwd, touch)[1:]...)
}
