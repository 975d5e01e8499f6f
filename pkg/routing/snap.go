package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"github.com/azybler/pathfinder/pkg/geo"
	"github.com/azybler/pathfinder/pkg/graph"
)

// DefaultMaxSnapMeters is the snap radius used when none is configured.
const DefaultMaxSnapMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	Node    uint32  // segment endpoint nearest the snapped point
	EdgeIdx uint32  // index into the graph's edge arrays
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64 // distance in meters from query point to snapped point
}

// segment is the R-tree payload: one directed edge.
type segment struct {
	u, e uint32
}

// Snapper provides nearest-road snapping over an R-tree of edge bounding
// boxes in (lon, lat) space.
type Snapper struct {
	tree    rtree.RTreeG[segment]
	g       *graph.Graph
	maxDist float64
}

// NewSnapper indexes every edge of g. Points farther than maxDist meters
// from all edges do not snap.
func NewSnapper(g *graph.Graph, maxDist float64) *Snapper {
	if maxDist <= 0 {
		maxDist = DefaultMaxSnapMeters
	}
	s := &Snapper{g: g, maxDist: maxDist}
	for u := range g.NumNodes {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			minPt := [2]float64{math.Min(g.NodeLon[u], g.NodeLon[v]), math.Min(g.NodeLat[u], g.NodeLat[v])}
			maxPt := [2]float64{math.Max(g.NodeLon[u], g.NodeLon[v]), math.Max(g.NodeLat[u], g.NodeLat[v])}
			s.tree.Insert(minPt, maxPt, segment{u: u, e: e})
		}
	}
	return s
}

// Len returns the number of indexed edges.
func (s *Snapper) Len() int { return s.tree.Len() }

// Snap finds the nearest road segment to the given lat/lng. Only edges whose
// bounding box meets a window of maxDist around the point are examined.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	dLat, dLon := geo.DegreesFor(s.maxDist, lat)
	minPt := [2]float64{lng - dLon, lat - dLat}
	maxPt := [2]float64{lng + dLon, lat + dLat}

	best := SnapResult{Dist: math.Inf(1)}
	s.tree.Search(minPt, maxPt, func(_, _ [2]float64, seg segment) bool {
		u, v := seg.u, s.g.Head[seg.e]
		dist, ratio := geo.PointToSegmentDist(
			lat, lng,
			s.g.NodeLat[u], s.g.NodeLon[u],
			s.g.NodeLat[v], s.g.NodeLon[v],
		)
		if dist < best.Dist {
			best = SnapResult{EdgeIdx: seg.e, NodeU: u, NodeV: v, Ratio: ratio, Dist: dist}
		}
		return true
	})

	if best.Dist > s.maxDist {
		return SnapResult{Dist: best.Dist}, ErrPointTooFar
	}
	best.Node = best.NodeU
	if best.Ratio > 0.5 {
		best.Node = best.NodeV
	}
	return best, nil
}
