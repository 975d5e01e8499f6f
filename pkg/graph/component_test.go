package graph

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	osmparser "github.com/azybler/pathfinder/pkg/osm"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)
	for i := range uint32(5) {
		assert.Equal(t, i, uf.Find(i))
	}

	assert.True(t, uf.Union(0, 1))
	assert.Equal(t, uf.Find(0), uf.Find(1))
	assert.False(t, uf.Union(1, 0), "already merged")

	uf.Union(2, 3)
	assert.Equal(t, uf.Find(2), uf.Find(3))
	assert.NotEqual(t, uf.Find(0), uf.Find(2))

	uf.Union(1, 3)
	assert.Equal(t, uf.Find(0), uf.Find(3))
}

func TestLargestComponent(t *testing.T) {
	// 10 <-> 20 <-> 30 and 40 <-> 50
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 30, ToNodeID: 20, Weight: 200},
			{FromNodeID: 40, ToNodeID: 50, Weight: 300},
			{FromNodeID: 50, ToNodeID: 40, Weight: 300},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}

	nodes := LargestComponent(Build(result))
	assert.Len(t, nodes, 3)
}

func TestFilterToComponent(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 30, ToNodeID: 10, Weight: 300},
			{FromNodeID: 40, ToNodeID: 50, Weight: 400},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 2.0, 50: 2.1},
		NodeLon: map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 104.0, 50: 104.1},
	}

	g := Build(result)
	filtered := FilterToComponent(g, LargestComponent(g))

	require.Equal(t, uint32(3), filtered.NumNodes)
	require.Equal(t, uint32(3), filtered.NumEdges)
	requireCSR(t, filtered)

	var total uint32
	for _, w := range filtered.Weight {
		total += w
	}
	assert.Equal(t, uint32(600), total, "only the triangle survives")
}

func TestFilterToComponentEmptyGraph(t *testing.T) {
	g := &Graph{}
	assert.Nil(t, LargestComponent(g))

	filtered := FilterToComponent(g, nil)
	assert.Zero(t, filtered.NumNodes)
	assert.Zero(t, filtered.NumEdges)
}
