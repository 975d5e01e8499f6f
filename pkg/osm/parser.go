package osm

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/geo"
)

// RawEdge represents a directed edge parsed from OSM data.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Weight     uint32    // distance in millimeters, rounded up
	ShapeLats  []float64 // intermediate shape node latitudes (excluding from/to)
	ShapeLons  []float64 // intermediate shape node longitudes (excluding from/to)
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent, skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox   BBox        // if non-zero, filter edges to this bounding box
	Logger *zap.Logger // nil logs nothing
}

// Parse reads an OSM PBF file and returns directed edges for car routing.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ways, referenced, err := scanWays(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	logger.Info("pass 1 complete",
		zap.Int("ways", len(ways)),
		zap.Int("referenced_nodes", len(referenced)))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}
	nodeLat, nodeLon, err := scanNodes(ctx, rs, referenced)
	if err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	logger.Info("pass 2 complete", zap.Int("node_coordinates", len(nodeLat)))

	edges, stats := buildEdges(ways, nodeLat, nodeLon, opt.BBox)
	if stats.missingCoords > 0 {
		logger.Warn("skipped edges with missing node coordinates", zap.Int("edges", stats.missingCoords))
	}
	if stats.outsideBBox > 0 {
		logger.Info("filtered edges outside bounding box", zap.Int("edges", stats.outsideBBox))
	}
	logger.Info("built directed edges", zap.Int("edges", len(edges)))

	return &ParseResult{
		Edges:   edges,
		NodeLat: nodeLat,
		NodeLon: nodeLon,
	}, nil
}

// scanWays collects drivable ways and the set of node IDs they reference.
func scanWays(ctx context.Context, r io.Reader) ([]wayInfo, map[osm.NodeID]struct{}, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	referenced := make(map[osm.NodeID]struct{})
	var ways []wayInfo
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isCarAccessible(w.Tags) {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Forward: fwd, Backward: bwd})
	}
	return ways, referenced, scanner.Err()
}

// scanNodes collects coordinates for the referenced nodes only.
func scanNodes(ctx context.Context, r io.Reader, referenced map[osm.NodeID]struct{}) (lat, lon map[osm.NodeID]float64, err error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	lat = make(map[osm.NodeID]float64, len(referenced))
	lon = make(map[osm.NodeID]float64, len(referenced))
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		lat[n.ID] = n.Lat
		lon[n.ID] = n.Lon
	}
	return lat, lon, scanner.Err()
}

type edgeStats struct {
	missingCoords int
	outsideBBox   int
}

// buildEdges splits ways into directed segment edges. Segments with an
// endpoint lacking coordinates or lying outside a non-zero bbox are dropped.
func buildEdges(ways []wayInfo, lat, lon map[osm.NodeID]float64, bbox BBox) ([]RawEdge, edgeStats) {
	var (
		edges   []RawEdge
		stats   edgeStats
		useBBox = !bbox.IsZero()
	)
	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID, toID := w.NodeIDs[i], w.NodeIDs[i+1]
			fromLat, fromOk := lat[fromID]
			toLat, toOk := lat[toID]
			if !fromOk || !toOk {
				stats.missingCoords++
				continue
			}
			fromLon, toLon := lon[fromID], lon[toID]

			if useBBox && (!bbox.Contains(fromLat, fromLon) || !bbox.Contains(toLat, toLon)) {
				stats.outsideBBox++
				continue
			}

			weightMM := EdgeWeightMM(fromLat, fromLon, toLat, toLon)
			if w.Forward {
				edges = append(edges, RawEdge{FromNodeID: fromID, ToNodeID: toID, Weight: weightMM})
			}
			if w.Backward {
				edges = append(edges, RawEdge{FromNodeID: toID, ToNodeID: fromID, Weight: weightMM})
			}
		}
	}
	return edges, stats
}

// EdgeWeightMM returns the great-circle length of a segment in millimeters,
// rounded up so that straight-line estimates never exceed it. Zero-length
// segments weigh 1.
func EdgeWeightMM(fromLat, fromLon, toLat, toLon float64) uint32 {
	mm := math.Ceil(geo.Haversine(fromLat, fromLon, toLat, toLon) * 1000)
	return uint32(max(mm, 1))
}
