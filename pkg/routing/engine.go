package routing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/geo"
	"github.com/azybler/pathfinder/pkg/graph"
	"github.com/azybler/pathfinder/pkg/pq"
	"github.com/azybler/pathfinder/pkg/search"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment represents a road segment in the route result.
type Segment struct {
	DistanceMeters float64
	Geometry       []LatLng
}

// Query is a point-to-point route request. Empty Algorithm and Queue fall
// back to the engine defaults.
type Query struct {
	Start     LatLng
	End       LatLng
	Algorithm Algorithm
	Queue     pq.Kind
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
	Nodes               []uint32 // graph nodes along the route
	Algorithm           Algorithm
	Queue               pq.Kind
	Cached              bool
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, q Query) (*RouteResult, error)
}

// cacheKey identifies a solved query once both ends are snapped.
type cacheKey struct {
	from, to  uint32
	algorithm Algorithm
	queue     pq.Kind
}

// Engine implements Router over a road graph with millimeter weights.
type Engine struct {
	g         *graph.Graph
	snapper   *Snapper
	cache     *lru.TwoQueueCache
	heuristic search.HeuristicFactory[uint32, int64]
	cfg       engineConfig
}

type engineConfig struct {
	algorithm     Algorithm
	queue         pq.Kind
	cacheSize     int
	maxSnapMeters float64
	logger        *zap.Logger
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithDefaults sets the algorithm and queue used when a query names none.
func WithDefaults(alg Algorithm, queue pq.Kind) Option {
	return func(c *engineConfig) {
		if alg != "" {
			c.algorithm = alg
		}
		if queue != "" {
			c.queue = queue
		}
	}
}

// WithCacheSize sets the route cache capacity. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *engineConfig) { c.cacheSize = n }
}

// WithMaxSnapMeters sets how far a query point may be from the nearest road.
func WithMaxSnapMeters(m float64) Option {
	return func(c *engineConfig) { c.maxSnapMeters = m }
}

// WithLogger sets the engine logger. Finders log under it at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewEngine creates a routing engine over g. g must have its reverse CSR
// built, which Build, FromEdges and ReadBinary all do.
func NewEngine(g *graph.Graph, opts ...Option) (*Engine, error) {
	cfg := engineConfig{
		algorithm:     BiDijkstra,
		queue:         pq.Binary,
		cacheSize:     1024,
		maxSnapMeters: DefaultMaxSnapMeters,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := ParseAlgorithm(string(cfg.algorithm)); err != nil {
		return nil, err
	}
	if _, err := pq.ParseKind(string(cfg.queue)); err != nil {
		return nil, err
	}

	e := &Engine{
		g:       g,
		snapper: NewSnapper(g, cfg.maxSnapMeters),
		cfg:     cfg,
	}
	if cfg.cacheSize > 0 {
		cache, err := lru.New2Q(cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("route cache: %w", err)
		}
		e.cache = cache
	}

	// Haversine meters to millimeters, truncated. Edge weights are the
	// same distance rounded up, so the estimate stays consistent.
	locate := func(n uint32) (orb.Point, bool) { return g.Point(n), true }
	e.heuristic = geo.Heuristic[uint32, int64](locate, geo.HaversineMetric, 1000)

	return e, nil
}

func (e *Engine) weight(u, v uint32) int64 { return int64(e.g.EdgeWeight(u, v)) }

// Route snaps both points to the road graph and finds a path between the
// snapped nodes with the requested algorithm.
func (e *Engine) Route(ctx context.Context, q Query) (*RouteResult, error) {
	alg, queue := q.Algorithm, q.Queue
	if alg == "" {
		alg = e.cfg.algorithm
	}
	if queue == "" {
		queue = e.cfg.queue
	}
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		return nil, err
	}
	if _, err := pq.ParseKind(string(queue)); err != nil {
		return nil, err
	}

	startSnap, err := e.snapper.Snap(q.Start.Lat, q.Start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(q.End.Lat, q.End.Lng)
	if err != nil {
		return nil, err
	}

	key := cacheKey{from: startSnap.Node, to: endSnap.Node, algorithm: alg, queue: queue}
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			return e.result(v.(search.Path[uint32]), alg, queue, true), nil
		}
	}

	finder, err := NewFinder[uint32, int64](alg, e.g, e.weight, e.heuristic,
		search.WithQueue(queue),
		search.WithLogger(e.cfg.logger))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	path, err := finder.Find(ctx, startSnap.Node, endSnap.Node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", alg, err)
	}
	e.cfg.logger.Debug("route search",
		zap.String("algorithm", string(alg)),
		zap.String("queue", string(queue)),
		zap.Uint32("from", startSnap.Node),
		zap.Uint32("to", endSnap.Node),
		zap.Int("nodes", len(path)),
		zap.Duration("took", time.Since(start)))

	if !path.Found() {
		return nil, ErrNoRoute
	}
	if e.cache != nil {
		e.cache.Add(key, path)
	}
	return e.result(path, alg, queue, false), nil
}

func (e *Engine) result(path search.Path[uint32], alg Algorithm, queue pq.Kind, cached bool) *RouteResult {
	meters := float64(search.PathCost[uint32, int64](path, e.weight)) / 1000.0
	return &RouteResult{
		TotalDistanceMeters: meters,
		Segments: []Segment{{
			DistanceMeters: meters,
			Geometry:       e.buildGeometry(path),
		}},
		Nodes:     slices.Clone(path),
		Algorithm: alg,
		Queue:     queue,
		Cached:    cached,
	}
}

// buildGeometry converts a node path into lat/lng coordinates, including
// intermediate shape points from edge geometry.
func (e *Engine) buildGeometry(nodes []uint32) []LatLng {
	if len(nodes) == 0 {
		return nil
	}

	g := e.g
	geom := []LatLng{{Lat: g.NodeLat[nodes[0]], Lng: g.NodeLon[nodes[0]]}}
	for i := 0; i < len(nodes)-1; i++ {
		u, v := nodes[i], nodes[i+1]
		if edgeIdx, ok := g.FindEdge(u, v); ok && int(edgeIdx)+1 < len(g.GeoFirstOut) {
			for k := g.GeoFirstOut[edgeIdx]; k < g.GeoFirstOut[edgeIdx+1]; k++ {
				geom = append(geom, LatLng{Lat: g.GeoShapeLat[k], Lng: g.GeoShapeLon[k]})
			}
		}
		geom = append(geom, LatLng{Lat: g.NodeLat[v], Lng: g.NodeLon[v]})
	}
	return geom
}

// Stats describes the loaded graph.
type Stats struct {
	NumNodes uint32
	NumEdges uint32
}

// Stats returns the size of the routed graph.
func (e *Engine) Stats() Stats {
	return Stats{NumNodes: e.g.NumNodes, NumEdges: e.g.NumEdges}
}
