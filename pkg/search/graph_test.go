package search

import (
	"iter"
	"math"
	"math/rand/v2"
	"slices"
)

// adjGraph is a small map-backed directed graph for tests. Parallel edges
// keep the cheaper weight.
type adjGraph struct {
	out, in map[int][]int
	w       map[[2]int]float64
	pts     map[int][2]float64
	n       int
}

func newAdjGraph(n int) *adjGraph {
	return &adjGraph{
		out: make(map[int][]int),
		in:  make(map[int][]int),
		w:   make(map[[2]int]float64),
		pts: make(map[int][2]float64),
		n:   n,
	}
}

func (g *adjGraph) addEdge(u, v int, w float64) {
	k := [2]int{u, v}
	if cur, ok := g.w[k]; ok {
		g.w[k] = min(cur, w)
		return
	}
	g.w[k] = w
	g.out[u] = append(g.out[u], v)
	g.in[v] = append(g.in[v], u)
}

func (g *adjGraph) ForwardNeighbors(n int) iter.Seq[int] { return slices.Values(g.out[n]) }

func (g *adjGraph) BackwardNeighbors(n int) iter.Seq[int] { return slices.Values(g.in[n]) }

func (g *adjGraph) weight(u, v int) float64 { return g.w[[2]int{u, v}] }

func (g *adjGraph) hasEdge(u, v int) bool {
	_, ok := g.w[[2]int{u, v}]
	return ok
}

func (g *adjGraph) euclid(a, b int) float64 {
	pa, pb := g.pts[a], g.pts[b]
	return math.Hypot(pa[0]-pb[0], pa[1]-pb[1])
}

// straightLine is consistent for graphs built by randomGraph, whose edge
// weights never undercut the distance between endpoints.
func (g *adjGraph) straightLine(target int) Heuristic[int, float64] {
	return func(n int) float64 { return g.euclid(n, target) }
}

// randomGraph places n nodes in a 100x100 square and adds m random edges
// weighted at least their Euclidean length.
func randomGraph(r *rand.Rand, n, m int) *adjGraph {
	g := newAdjGraph(n)
	for i := range n {
		g.pts[i] = [2]float64{r.Float64() * 100, r.Float64() * 100}
	}
	for range m {
		u, v := r.IntN(n), r.IntN(n)
		if u == v {
			continue
		}
		g.addEdge(u, v, g.euclid(u, v)*(1+r.Float64()))
	}
	return g
}

// floyd returns all-pairs shortest distances, +Inf where unreachable.
func floyd(g *adjGraph, w func(u, v int) float64) [][]float64 {
	d := make([][]float64, g.n)
	for i := range d {
		d[i] = make([]float64, g.n)
		for j := range d[i] {
			if i != j {
				d[i][j] = math.Inf(1)
			}
		}
	}
	for k := range g.w {
		d[k[0]][k[1]] = min(d[k[0]][k[1]], w(k[0], k[1]))
	}
	for k := range g.n {
		for i := range g.n {
			for j := range g.n {
				if d[i][k]+d[k][j] < d[i][j] {
					d[i][j] = d[i][k] + d[k][j]
				}
			}
		}
	}
	return d
}

// cities is the six-city road map used across the package tests.
func cities() (*adjGraph, map[string]int) {
	names := []string{"V", "E", "C", "S", "R", "W"}
	id := make(map[string]int, len(names))
	for i, n := range names {
		id[n] = i
	}
	g := newAdjGraph(len(names))
	for _, e := range []struct {
		from, to string
		w        float64
	}{
		{"V", "E", 16}, {"V", "C", 13}, {"C", "E", 4}, {"E", "S", 12},
		{"S", "C", 9}, {"C", "R", 14}, {"S", "W", 20}, {"R", "S", 7},
		{"R", "W", 4},
	} {
		g.addEdge(id[e.from], id[e.to], e.w)
	}
	return g, id
}
