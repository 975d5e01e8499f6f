package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"github.com/azybler/pathfinder/pkg/search"
)

// Metric measures the distance between two points.
type Metric func(a, b orb.Point) float64

// Planar metrics treat orb.Point as (x, y). HaversineMetric treats it as
// (lon, lat) and returns meters.
var (
	Euclidean Metric = planar.Distance
	Manhattan Metric = func(a, b orb.Point) float64 {
		return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1])
	}
	Chebyshev Metric = func(a, b orb.Point) float64 {
		return max(math.Abs(a[0]-b[0]), math.Abs(a[1]-b[1]))
	}
	HaversineMetric Metric = geo.DistanceHaversine
)

var metrics = map[string]Metric{
	"euclidean": Euclidean,
	"manhattan": Manhattan,
	"chebyshev": Chebyshev,
	"haversine": HaversineMetric,
}

// ParseMetric looks a metric up by name.
func ParseMetric(name string) (Metric, error) {
	m, ok := metrics[name]
	if !ok {
		return nil, fmt.Errorf("geo: unknown metric %q", name)
	}
	return m, nil
}

// Locator returns the position of a node, if it has one.
type Locator[N comparable] func(n N) (orb.Point, bool)

// CoordinateMap assigns a point to each node.
type CoordinateMap[N comparable] map[N]orb.Point

// Locate implements Locator.
func (c CoordinateMap[N]) Locate(n N) (orb.Point, bool) {
	p, ok := c[n]
	return p, ok
}

// Heuristic returns a factory of straight-line estimates under m, multiplied
// by scale. Nodes without a position estimate zero.
//
// The estimate is consistent when every edge u→v weighs at least
// scale*m(u, v). For integer weights the scaled value is truncated, which
// keeps that property when the weights themselves were rounded up.
func Heuristic[N comparable, W search.Weight](locate Locator[N], m Metric, scale float64) search.HeuristicFactory[N, W] {
	return func(target N) search.Heuristic[N, W] {
		goal, ok := locate(target)
		if !ok {
			return func(N) W { return 0 }
		}
		return func(n N) W {
			p, ok := locate(n)
			if !ok {
				return 0
			}
			return W(m(p, goal) * scale)
		}
	}
}
