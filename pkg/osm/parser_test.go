package osm

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"github.com/azybler/pathfinder/pkg/geo"
)

func TestIsCarAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "residential road",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: true,
		},
		{
			name: "motorway",
			tags: osm.Tags{{Key: "highway", Value: "motorway"}},
			want: true,
		},
		{
			name: "footway (not car accessible)",
			tags: osm.Tags{{Key: "highway", Value: "footway"}},
			want: false,
		},
		{
			name: "cycleway",
			tags: osm.Tags{{Key: "highway", Value: "cycleway"}},
			want: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			want: false,
		},
		{
			name: "no access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "no"},
			},
			want: false,
		},
		{
			name: "motor_vehicle=no",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "motor_vehicle", Value: "no"},
			},
			want: false,
		},
		{
			name: "area=yes (pedestrian plaza)",
			tags: osm.Tags{
				{Key: "highway", Value: "service"},
				{Key: "area", Value: "yes"},
			},
			want: false,
		},
		{
			name: "service road",
			tags: osm.Tags{{Key: "highway", Value: "service"}},
			want: true,
		},
		{
			name: "living_street",
			tags: osm.Tags{{Key: "highway", Value: "living_street"}},
			want: true,
		},
		{
			name: "no highway tag",
			tags: osm.Tags{{Key: "name", Value: "Some Street"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCarAccessible(tt.tags))
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name         string
		tags         osm.Tags
		wantForward  bool
		wantBackward bool
	}{
		{
			name:         "default bidirectional",
			tags:         osm.Tags{{Key: "highway", Value: "residential"}},
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "motorway implied oneway",
			tags:         osm.Tags{{Key: "highway", Value: "motorway"}},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name:         "motorway_link implied oneway",
			tags:         osm.Tags{{Key: "highway", Value: "motorway_link"}},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "roundabout implied oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "explicit oneway=yes",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "explicit oneway=true",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "true"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "explicit oneway=1",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "1"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "explicit oneway=-1 (reverse)",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantForward:  false,
			wantBackward: true,
		},
		{
			name: "explicit oneway=reverse",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reverse"},
			},
			wantForward:  false,
			wantBackward: true,
		},
		{
			name: "explicit oneway=no overrides implied",
			tags: osm.Tags{
				{Key: "highway", Value: "motorway"},
				{Key: "oneway", Value: "no"},
			},
			wantForward:  true,
			wantBackward: true,
		},
		{
			name: "oneway=reversible skips entirely",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "reversible"},
			},
			wantForward:  false,
			wantBackward: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := directionFlags(tt.tags)
			assert.Equal(t, tt.wantForward, fwd, "forward")
			assert.Equal(t, tt.wantBackward, bwd, "backward")
		})
	}
}

func TestEdgeWeightMM(t *testing.T) {
	lat1, lon1, lat2, lon2 := 1.3521, 103.8198, 1.3530, 103.8198
	mm := geo.Haversine(lat1, lon1, lat2, lon2) * 1000

	w := EdgeWeightMM(lat1, lon1, lat2, lon2)
	assert.GreaterOrEqual(t, float64(w), mm, "weights round up")
	assert.Less(t, float64(w)-mm, 1.0)

	assert.Equal(t, uint32(1), EdgeWeightMM(lat1, lon1, lat1, lon1), "zero-length segments weigh 1")
}

func TestBBox(t *testing.T) {
	assert.True(t, BBox{}.IsZero())

	b := BBox{MinLat: 1.2, MaxLat: 1.5, MinLng: 103.6, MaxLng: 104.1}
	assert.False(t, b.IsZero())
	assert.True(t, b.Contains(1.35, 103.8))
	assert.False(t, b.Contains(3.1, 101.7))
}

func TestBuildEdges(t *testing.T) {
	ways := []wayInfo{
		{NodeIDs: []osm.NodeID{1, 2, 3}, Forward: true, Backward: true},
		{NodeIDs: []osm.NodeID{3, 4}, Forward: false, Backward: true},
		{NodeIDs: []osm.NodeID{4, 99}, Forward: true, Backward: true}, // 99 has no coordinates
		{NodeIDs: []osm.NodeID{4, 5}, Forward: true},                  // 5 is outside the bbox
	}
	lat := map[osm.NodeID]float64{1: 1.30, 2: 1.31, 3: 1.32, 4: 1.33, 5: 3.10}
	lon := map[osm.NodeID]float64{1: 103.8, 2: 103.8, 3: 103.8, 4: 103.8, 5: 101.7}
	bbox := BBox{MinLat: 1.2, MaxLat: 1.5, MinLng: 103.6, MaxLng: 104.1}

	edges, stats := buildEdges(ways, lat, lon, bbox)

	assert.Equal(t, 1, stats.missingCoords)
	assert.Equal(t, 1, stats.outsideBBox)
	assert.Len(t, edges, 5, "two two-way segments plus one reversed one-way segment")

	last := edges[len(edges)-1]
	assert.Equal(t, osm.NodeID(4), last.FromNodeID)
	assert.Equal(t, osm.NodeID(3), last.ToNodeID)
	assert.Equal(t, EdgeWeightMM(1.32, 103.8, 1.33, 103.8), last.Weight)

	all, stats := buildEdges(ways, lat, lon, BBox{})
	assert.Zero(t, stats.outsideBBox)
	assert.Len(t, all, 6)
}
