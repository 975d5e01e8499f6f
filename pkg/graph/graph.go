package graph

import (
	"iter"
	"sort"

	"github.com/paulmach/orb"
)

// Graph represents a directed graph in CSR (Compressed Sparse Row) format.
// Heads within each node's edge range are sorted ascending.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []uint32  // len: NumEdges; distance in millimeters
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes

	// Edge geometry: intermediate shape nodes for rendering.
	// GeoFirstOut[i]..GeoFirstOut[i+1] indexes into GeoShapeLat/Lon for edge i.
	GeoFirstOut []uint32  // len: NumEdges + 1
	GeoShapeLat []float64 // flattened intermediate lat coords
	GeoShapeLon []float64 // flattened intermediate lon coords

	// Reverse CSR, derived by BuildReverse. RevFirstOut[v]..RevFirstOut[v+1]
	// are the edges entering v; RevHead holds their tails.
	RevFirstOut []uint32
	RevHead     []uint32
	RevWeight   []uint32
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// EdgesTo returns the range of reverse edge indices for edges entering v.
func (g *Graph) EdgesTo(v uint32) (start, end uint32) {
	return g.RevFirstOut[v], g.RevFirstOut[v+1]
}

// BuildReverse derives the reverse CSR from the forward one. Tails within
// each range come out sorted because u is scanned in order.
func (g *Graph) BuildReverse() {
	n := g.NumNodes
	revFirstOut := make([]uint32, n+1)
	for _, v := range g.Head {
		revFirstOut[v+1]++
	}
	for i := uint32(1); i <= n; i++ {
		revFirstOut[i] += revFirstOut[i-1]
	}

	revHead := make([]uint32, len(g.Head))
	revWeight := make([]uint32, len(g.Head))
	pos := make([]uint32, n)
	copy(pos, revFirstOut[:n])
	for u := range n {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			revHead[pos[v]] = u
			revWeight[pos[v]] = g.Weight[e]
			pos[v]++
		}
	}

	g.RevFirstOut = revFirstOut
	g.RevHead = revHead
	g.RevWeight = revWeight
}

// ForwardNeighbors yields the heads of edges leaving u. Parallel edges
// yield the same head more than once.
func (g *Graph) ForwardNeighbors(u uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if !yield(g.Head[e]) {
				return
			}
		}
	}
}

// BackwardNeighbors yields the tails of edges entering v.
func (g *Graph) BackwardNeighbors(v uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		start, end := g.EdgesTo(v)
		for e := start; e < end; e++ {
			if !yield(g.RevHead[e]) {
				return
			}
		}
	}
}

// FindEdge returns the index of the cheapest edge u→v.
func (g *Graph) FindEdge(u, v uint32) (uint32, bool) {
	start, end := g.EdgesFrom(u)
	i := start + uint32(sort.Search(int(end-start), func(i int) bool {
		return g.Head[start+uint32(i)] >= v
	}))

	best, found := uint32(0), false
	for ; i < end && g.Head[i] == v; i++ {
		if !found || g.Weight[i] < g.Weight[best] {
			best, found = i, true
		}
	}
	return best, found
}

// EdgeWeight returns the weight of the cheapest edge u→v. It is only
// meaningful for pairs produced by ForwardNeighbors.
func (g *Graph) EdgeWeight(u, v uint32) uint32 {
	e, ok := g.FindEdge(u, v)
	if !ok {
		return 0
	}
	return g.Weight[e]
}

// Point returns the coordinates of u as (lon, lat).
func (g *Graph) Point(u uint32) orb.Point {
	return orb.Point{g.NodeLon[u], g.NodeLat[u]}
}
