package graph

import (
	"fmt"
	"sort"

	"github.com/paulmach/osm"

	osmparser "github.com/azybler/pathfinder/pkg/osm"
)

// Edge is a directed edge between compact node indices.
type Edge struct {
	From, To  uint32
	Weight    uint32
	ShapeLats []float64
	ShapeLons []float64
}

// Build creates a CSR Graph from parsed OSM edges.
func Build(result *osmparser.ParseResult) *Graph {
	if len(result.Edges) == 0 {
		return &Graph{}
	}

	// Compact OSM node IDs in first-seen order.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID
	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	edges := make([]Edge, len(result.Edges))
	for i, e := range result.Edges {
		edges[i] = Edge{
			From:      addNode(e.FromNodeID),
			To:        addNode(e.ToNodeID),
			Weight:    e.Weight,
			ShapeLats: e.ShapeLats,
			ShapeLons: e.ShapeLons,
		}
	}

	nodeLat := make([]float64, len(nodeIDs))
	nodeLon := make([]float64, len(nodeIDs))
	for idx, id := range nodeIDs {
		nodeLat[idx] = result.NodeLat[id]
		nodeLon[idx] = result.NodeLon[id]
	}

	g, _ := FromEdges(uint32(len(nodeIDs)), edges, nodeLat, nodeLon)
	return g
}

// FromEdges builds a Graph over nodes 0..n-1. lat and lon may be nil, in
// which case every node sits at (0, 0). The edge slice is reordered.
func FromEdges(n uint32, edges []Edge, lat, lon []float64) (*Graph, error) {
	if lat == nil {
		lat = make([]float64, n)
	}
	if lon == nil {
		lon = make([]float64, n)
	}
	if uint32(len(lat)) != n || uint32(len(lon)) != n {
		return nil, fmt.Errorf("coordinates for %d/%d nodes, want %d", len(lat), len(lon), n)
	}
	for i, e := range edges {
		if e.From >= n || e.To >= n {
			return nil, fmt.Errorf("edge %d (%d->%d) out of range for %d nodes", i, e.From, e.To, n)
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	numEdges := uint32(len(edges))
	firstOut := make([]uint32, n+1)
	head := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)
	geoFirstOut := make([]uint32, numEdges+1)
	var geoShapeLat, geoShapeLon []float64

	for i, e := range edges {
		firstOut[e.From+1]++
		head[i] = e.To
		weight[i] = e.Weight
		geoFirstOut[i] = uint32(len(geoShapeLat))
		geoShapeLat = append(geoShapeLat, e.ShapeLats...)
		geoShapeLon = append(geoShapeLon, e.ShapeLons...)
	}
	geoFirstOut[numEdges] = uint32(len(geoShapeLat))
	for i := uint32(1); i <= n; i++ {
		firstOut[i] += firstOut[i-1]
	}

	g := &Graph{
		NumNodes:    n,
		NumEdges:    numEdges,
		FirstOut:    firstOut,
		Head:        head,
		Weight:      weight,
		NodeLat:     lat,
		NodeLon:     lon,
		GeoFirstOut: geoFirstOut,
		GeoShapeLat: geoShapeLat,
		GeoShapeLon: geoShapeLon,
	}
	g.BuildReverse()
	return g, nil
}
