package graph

import (
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Digraph is an adjacency-map directed graph with float64 weights, keyed by
// any comparable node type. Parallel edges keep the cheaper weight.
type Digraph[N comparable] struct {
	nodes  []N
	seen   map[N]struct{}
	out    map[N][]N
	in     map[N][]N
	weight map[[2]N]float64
	coords map[N]orb.Point
}

// NewDigraph creates an empty Digraph.
func NewDigraph[N comparable]() *Digraph[N] {
	return &Digraph[N]{
		seen:   make(map[N]struct{}),
		out:    make(map[N][]N),
		in:     make(map[N][]N),
		weight: make(map[[2]N]float64),
		coords: make(map[N]orb.Point),
	}
}

// AddNode registers n. Adding a node twice is a no-op.
func (g *Digraph[N]) AddNode(n N) {
	if _, ok := g.seen[n]; ok {
		return
	}
	g.seen[n] = struct{}{}
	g.nodes = append(g.nodes, n)
}

// AddEdge adds u→v with weight w, registering both endpoints.
func (g *Digraph[N]) AddEdge(u, v N, w float64) {
	g.AddNode(u)
	g.AddNode(v)
	k := [2]N{u, v}
	if cur, ok := g.weight[k]; ok {
		g.weight[k] = min(cur, w)
		return
	}
	g.weight[k] = w
	g.out[u] = append(g.out[u], v)
	g.in[v] = append(g.in[v], u)
}

// SetCoord attaches a point to n.
func (g *Digraph[N]) SetCoord(n N, p orb.Point) {
	g.AddNode(n)
	g.coords[n] = p
}

// Coords returns the attached points.
func (g *Digraph[N]) Coords() map[N]orb.Point { return g.coords }

// Nodes returns the nodes in insertion order.
func (g *Digraph[N]) Nodes() []N { return slices.Clone(g.nodes) }

// Has reports whether n is a node of g.
func (g *Digraph[N]) Has(n N) bool {
	_, ok := g.seen[n]
	return ok
}

// NumEdges returns the number of distinct edges.
func (g *Digraph[N]) NumEdges() int { return len(g.weight) }

func (g *Digraph[N]) ForwardNeighbors(n N) iter.Seq[N] { return slices.Values(g.out[n]) }

func (g *Digraph[N]) BackwardNeighbors(n N) iter.Seq[N] { return slices.Values(g.in[n]) }

// Weight returns the weight of u→v, zero if absent.
func (g *Digraph[N]) Weight(u, v N) float64 { return g.weight[[2]N{u, v}] }

// yamlDigraph is the document layout read by ReadYAML.
type yamlDigraph struct {
	Nodes []string `yaml:"nodes"`
	Edges []struct {
		From   string  `yaml:"from"`
		To     string  `yaml:"to"`
		Weight float64 `yaml:"weight"`
	} `yaml:"edges"`
	Coords map[string][2]float64 `yaml:"coords"`
}

// ReadYAML loads a string-keyed digraph:
//
//	nodes: [V, W]          # optional, for isolated nodes
//	edges:
//	  - {from: V, to: C, weight: 13}
//	coords:                # optional, [x, y]
//	  V: [0, 0]
func ReadYAML(r io.Reader) (*Digraph[string], error) {
	var doc yamlDigraph
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	g := NewDigraph[string]()
	for _, n := range doc.Nodes {
		g.AddNode(n)
	}
	for i, e := range doc.Edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("edge %d: from and to are required", i)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("edge %d (%s->%s): negative weight %v", i, e.From, e.To, e.Weight)
		}
		g.AddEdge(e.From, e.To, e.Weight)
	}
	for n, c := range doc.Coords {
		g.SetCoord(n, orb.Point(c))
	}
	return g, nil
}
