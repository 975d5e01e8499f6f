package routing

import (
	"context"
	"math"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/pathfinder/pkg/graph"
	osmparser "github.com/azybler/pathfinder/pkg/osm"
	"github.com/azybler/pathfinder/pkg/pq"
)

// gridLat and gridLon place a 2x3 street grid around Singapore, keyed by
// OSM node id.
//
//	10 ---- 20 ---- 30
//	 |               |
//	40 ---- 50 ---- 60
//
// All edges are two-way except 50 -> 60, and weights are the real segment
// lengths in millimeters.
var (
	gridLat = map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301}
	gridLon = map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802}
)

func gridResult() *osmparser.ParseResult {
	lat, lon := gridLat, gridLon
	edge := func(from, to osm.NodeID) osmparser.RawEdge {
		return osmparser.RawEdge{
			FromNodeID: from,
			ToNodeID:   to,
			Weight:     osmparser.EdgeWeightMM(lat[from], lon[from], lat[to], lon[to]),
		}
	}
	return &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			edge(10, 20), edge(20, 10),
			edge(20, 30), edge(30, 20),
			edge(10, 40), edge(40, 10),
			edge(30, 60), edge(60, 30),
			edge(40, 50), edge(50, 40),
			edge(50, 60),
		},
		NodeLat: lat,
		NodeLon: lon,
	}
}

func buildTestEngine(t testing.TB, opts ...Option) (*graph.Graph, *Engine) {
	t.Helper()
	g := graph.Build(gridResult())
	eng, err := NewEngine(g, opts...)
	require.NoError(t, err)
	return g, eng
}

// plainDijkstra runs textbook Dijkstra on the graph as a reference.
func plainDijkstra(g *graph.Graph, source, target uint32) uint32 {
	dist := make([]uint32, g.NumNodes)
	for i := range dist {
		dist[i] = math.MaxUint32
	}
	dist[source] = 0

	type item struct {
		node uint32
		dist uint32
	}
	pq := []item{{source, 0}}
	for len(pq) > 0 {
		minIdx := 0
		for i := 1; i < len(pq); i++ {
			if pq[i].dist < pq[minIdx].dist {
				minIdx = i
			}
		}
		cur := pq[minIdx]
		pq[minIdx] = pq[len(pq)-1]
		pq = pq[:len(pq)-1]
		if cur.dist > dist[cur.node] {
			continue
		}

		start, end := g.EdgesFrom(cur.node)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if nd := cur.dist + g.Weight[e]; nd < dist[v] {
				dist[v] = nd
				pq = append(pq, item{v, nd})
			}
		}
	}
	return dist[target]
}

// gridNodes maps OSM ids to compact indices by coordinate, since Build
// numbers nodes in first-seen order.
func gridNodes(t *testing.T, g *graph.Graph, ids ...osm.NodeID) []uint32 {
	t.Helper()
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		found := false
		for n := range g.NumNodes {
			if g.NodeLat[n] == gridLat[id] && g.NodeLon[n] == gridLon[id] {
				out = append(out, n)
				found = true
				break
			}
		}
		require.True(t, found, "node %d", id)
	}
	return out
}

func latLng(g *graph.Graph, n uint32) LatLng {
	return LatLng{Lat: g.NodeLat[n], Lng: g.NodeLon[n]}
}

func TestRouteAllPairsAllAlgorithms(t *testing.T) {
	g, eng := buildTestEngine(t, WithCacheSize(0))
	ctx := context.Background()

	for _, alg := range Algorithms {
		for _, kind := range pq.Kinds {
			for s := range g.NumNodes {
				for d := range g.NumNodes {
					res, err := eng.Route(ctx, Query{
						Start:     latLng(g, s),
						End:       latLng(g, d),
						Algorithm: alg,
						Queue:     kind,
					})
					require.NoError(t, err, "%s/%s %d->%d", alg, kind, s, d)
					require.Equal(t, s, res.Nodes[0])
					require.Equal(t, d, res.Nodes[len(res.Nodes)-1])

					if alg.Weighted() {
						want := float64(plainDijkstra(g, s, d)) / 1000
						assert.InDelta(t, want, res.TotalDistanceMeters, 1e-9, "%s/%s %d->%d", alg, kind, s, d)
					}
					assert.Len(t, res.Segments[0].Geometry, len(res.Nodes))
					assert.Equal(t, alg, res.Algorithm)
					assert.Equal(t, kind, res.Queue)
				}
			}
		}
	}
}

func TestRouteOneWay(t *testing.T) {
	g, eng := buildTestEngine(t)

	// 50 -> 60 is one-way, so 60 -> 50 detours through 30, 20, 10, 40.
	detour := gridNodes(t, g, 60, 30, 20, 10, 40, 50)
	direct := gridNodes(t, g, 50, 60)

	for _, alg := range Algorithms {
		if !alg.Weighted() {
			continue
		}
		res, err := eng.Route(context.Background(), Query{
			Start: latLng(g, detour[0]), End: latLng(g, detour[5]), Algorithm: alg,
		})
		require.NoError(t, err, alg)
		assert.Equal(t, detour, res.Nodes, alg)

		res, err = eng.Route(context.Background(), Query{
			Start: latLng(g, direct[0]), End: latLng(g, direct[1]), Algorithm: alg,
		})
		require.NoError(t, err, alg)
		assert.Equal(t, direct, res.Nodes, alg)
	}
}

func TestRouteCache(t *testing.T) {
	g, eng := buildTestEngine(t, WithCacheSize(8))
	q := Query{Start: latLng(g, 0), End: latLng(g, 5)}

	first, err := eng.Route(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, BiDijkstra, first.Algorithm, "engine default")

	second, err := eng.Route(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.TotalDistanceMeters, second.TotalDistanceMeters)

	second.Nodes[0] = 99
	again, err := eng.Route(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first.Nodes, again.Nodes, "results do not alias the cached path")

	q.Algorithm = AStar
	third, err := eng.Route(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, third.Cached, "algorithm is part of the cache key")
}

func TestRouteErrors(t *testing.T) {
	g, eng := buildTestEngine(t)

	_, err := eng.Route(context.Background(), Query{Start: latLng(g, 0), End: LatLng{Lat: 1.35, Lng: 103.9}})
	assert.ErrorIs(t, err, ErrPointTooFar)

	_, err = eng.Route(context.Background(), Query{Start: latLng(g, 0), End: latLng(g, 5), Algorithm: "dfs"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = eng.Route(context.Background(), Query{Start: latLng(g, 0), End: latLng(g, 5), Queue: "pairing"})
	assert.ErrorIs(t, err, pq.ErrUnknownKind)

	_, err = NewEngine(g, WithDefaults("dfs", ""))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestRouteNoRoute(t *testing.T) {
	// Two nodes joined by a single one-way edge.
	res := &osmparser.ParseResult{
		Edges:   []osmparser.RawEdge{{FromNodeID: 1, ToNodeID: 2, Weight: osmparser.EdgeWeightMM(1.3, 103.8, 1.3, 103.801)}},
		NodeLat: map[osm.NodeID]float64{1: 1.3, 2: 1.3},
		NodeLon: map[osm.NodeID]float64{1: 103.8, 2: 103.801},
	}
	eng, err := NewEngine(graph.Build(res))
	require.NoError(t, err)

	for _, alg := range Algorithms {
		_, err := eng.Route(context.Background(), Query{
			Start:     LatLng{Lat: 1.3, Lng: 103.801},
			End:       LatLng{Lat: 1.3, Lng: 103.8},
			Algorithm: alg,
		})
		assert.ErrorIs(t, err, ErrNoRoute, alg)
	}
}

func TestRouteCancelled(t *testing.T) {
	g, eng := buildTestEngine(t, WithCacheSize(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Route(ctx, Query{Start: latLng(g, 0), End: latLng(g, 5), Algorithm: Dijkstra})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms {
		got, err := ParseAlgorithm(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAlgorithm("")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func BenchmarkRoute(b *testing.B) {
	g, eng := buildTestEngine(b, WithCacheSize(0))
	ctx := context.Background()
	q := Query{Start: latLng(g, 0), End: latLng(g, 5)}

	for _, alg := range Algorithms {
		q.Algorithm = alg
		b.Run(string(alg), func(b *testing.B) {
			for b.Loop() {
				_, _ = eng.Route(ctx, q)
			}
		})
	}
}
