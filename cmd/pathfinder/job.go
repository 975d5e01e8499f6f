package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/azybler/pathfinder/pkg/geo"
	"github.com/azybler/pathfinder/pkg/graph"
	"github.com/azybler/pathfinder/pkg/pq"
	"github.com/azybler/pathfinder/pkg/routing"
	"github.com/azybler/pathfinder/pkg/search"
)

// Graph file formats accepted by find and compare.
const (
	formatBinary = "binary"
	formatFMI    = "fmi"
	formatYAML   = "yaml"
)

// queryFlags are shared by find and compare.
type queryFlags struct {
	graph, format string
	from, to      string
	metric        string
	scale         float64
}

func (f *queryFlags) register(c interface {
	StringVar(p *string, name, value, usage string)
	Float64Var(p *float64, name string, value float64, usage string)
}) {
	c.StringVar(&f.graph, "graph", "", "graph file (binary, .fmi or .yaml)")
	c.StringVar(&f.format, "format", "", "graph format: binary, fmi or yaml (default: by extension)")
	c.StringVar(&f.from, "from", "", "source: node index, node name (yaml) or lat,lng")
	c.StringVar(&f.to, "to", "", "target: node index, node name (yaml) or lat,lng")
	c.StringVar(&f.metric, "metric", "", "A* metric: euclidean, manhattan, chebyshev, haversine or none")
	c.Float64Var(&f.scale, "scale", 0, "multiplier from metric units to weight units")
}

// outcome is one finder run, with nodes rendered as strings.
type outcome struct {
	Nodes []string
	Cost  float64
	Hops  int
	Found bool
	Took  time.Duration
	Line  orb.LineString // empty when nodes have no coordinates
}

// job is a loaded graph plus a resolved source and target.
type job interface {
	run(ctx context.Context, alg routing.Algorithm, kind pq.Kind) (outcome, error)
}

type target[N comparable, W search.Weight] struct {
	g        search.Graph[N]
	w        search.WeightFunc[N, W]
	hf       search.HeuristicFactory[N, W]
	locate   geo.Locator[N]
	from, to N
	name     func(N) string
}

func (t target[N, W]) run(ctx context.Context, alg routing.Algorithm, kind pq.Kind) (outcome, error) {
	f, err := routing.NewFinder[N, W](alg, t.g, t.w, t.hf,
		search.WithQueue(kind),
		search.WithLogger(log))
	if err != nil {
		return outcome{}, err
	}

	start := time.Now()
	p, err := f.Find(ctx, t.from, t.to)
	took := time.Since(start)
	if err != nil {
		return outcome{}, errors.Wrapf(err, "%s/%s", alg, kind)
	}

	o := outcome{
		Cost:  float64(search.PathCost[N, W](p, t.w)),
		Hops:  p.Hops(),
		Found: p.Found(),
		Took:  took,
	}
	for _, n := range p {
		o.Nodes = append(o.Nodes, t.name(n))
		if pt, ok := t.locate(n); ok {
			o.Line = append(o.Line, pt)
		}
	}
	if len(o.Line) != len(p) {
		o.Line = nil
	}
	return o, nil
}

func detectFormat(path, format string) (string, error) {
	if format != "" {
		switch format {
		case formatBinary, formatFMI, formatYAML:
			return format, nil
		}
		return "", errors.Errorf("unknown graph format %q", format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".fmi", ".txt":
		return formatFMI, nil
	}
	return formatBinary, nil
}

// loadJob reads the graph named by f and resolves both endpoints.
func loadJob(f queryFlags) (job, error) {
	if f.graph == "" || f.from == "" || f.to == "" {
		return nil, errors.New("--graph, --from and --to are required")
	}
	format, err := detectFormat(f.graph, f.format)
	if err != nil {
		return nil, err
	}

	if format == formatYAML {
		return loadYAMLJob(f)
	}

	var g *graph.Graph
	if format == formatFMI {
		in, err := os.Open(f.graph)
		if err != nil {
			return nil, errors.Wrap(err, "open graph")
		}
		defer in.Close()
		g, err = graph.ReadFMI(in)
		if err != nil {
			return nil, errors.Wrap(err, "read fmi")
		}
	} else {
		if g, err = graph.ReadBinary(f.graph); err != nil {
			return nil, errors.Wrap(err, "read binary")
		}
	}
	return roadJob(g, format, f)
}

func loadYAMLJob(f queryFlags) (job, error) {
	in, err := os.Open(f.graph)
	if err != nil {
		return nil, errors.Wrap(err, "open graph")
	}
	defer in.Close()
	d, err := graph.ReadYAML(in)
	if err != nil {
		return nil, errors.Wrap(err, "read yaml")
	}
	for _, n := range []string{f.from, f.to} {
		if !d.Has(n) {
			return nil, errors.Errorf("unknown node %q", n)
		}
	}

	coords := geo.CoordinateMap[string](d.Coords())
	hf, err := heuristicFor[string, float64](coords.Locate, f.metric, "euclidean", f.scale, 1)
	if err != nil {
		return nil, err
	}
	return target[string, float64]{
		g:      d,
		w:      d.Weight,
		hf:     hf,
		locate: coords.Locate,
		from:   f.from,
		to:     f.to,
		name:   func(n string) string { return n },
	}, nil
}

// roadJob targets a CSR graph. Binary graphs carry millimetre weights, so
// the haversine estimate in meters is scaled by 1000 by default; FMI weights
// have no fixed unit and get no heuristic unless one is asked for.
func roadJob(g *graph.Graph, format string, f queryFlags) (job, error) {
	var snapper *routing.Snapper
	endpoint := func(s string) (uint32, error) {
		if lat, lng, ok := strings.Cut(s, ","); ok {
			la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
			ln, err2 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
			if err1 != nil || err2 != nil {
				return 0, errors.Errorf("bad coordinate %q", s)
			}
			if snapper == nil {
				snapper = routing.NewSnapper(g, conf.Search.MaxSnapMeters)
			}
			r, err := snapper.Snap(la, ln)
			if err != nil {
				return 0, errors.Wrapf(err, "snap %q", s)
			}
			return r.Node, nil
		}
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil || uint32(n) >= g.NumNodes {
			return 0, errors.Errorf("node %q out of range [0, %d)", s, g.NumNodes)
		}
		return uint32(n), nil
	}

	from, err := endpoint(f.from)
	if err != nil {
		return nil, err
	}
	to, err := endpoint(f.to)
	if err != nil {
		return nil, err
	}

	metric, scale := "haversine", 1000.0
	if format == formatFMI {
		metric, scale = "none", 1
	}
	locate := func(n uint32) (orb.Point, bool) { return g.Point(n), true }
	hf, err := heuristicFor[uint32, int64](locate, f.metric, metric, f.scale, scale)
	if err != nil {
		return nil, err
	}
	return target[uint32, int64]{
		g:      g,
		w:      func(u, v uint32) int64 { return int64(g.EdgeWeight(u, v)) },
		hf:     hf,
		locate: locate,
		from:   from,
		to:     to,
		name:   func(n uint32) string { return strconv.FormatUint(uint64(n), 10) },
	}, nil
}

// heuristicFor resolves the --metric and --scale flags against per-format
// defaults. The "none" metric yields a nil factory.
func heuristicFor[N comparable, W search.Weight](
	locate geo.Locator[N],
	metric, defMetric string,
	scale, defScale float64,
) (search.HeuristicFactory[N, W], error) {
	if metric == "" {
		metric = defMetric
	}
	if scale <= 0 {
		scale = defScale
	}
	if metric == "none" {
		return nil, nil
	}
	m, err := geo.ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	return geo.Heuristic[N, W](locate, m, scale), nil
}

func algorithmOrDefault(s string) (routing.Algorithm, error) {
	if s == "" {
		s = conf.Search.Algorithm
	}
	return routing.ParseAlgorithm(s)
}

func queueOrDefault(s string) (pq.Kind, error) {
	if s == "" {
		s = conf.Search.Queue
	}
	return pq.ParseKind(s)
}

func formatPath(nodes []string) string {
	if len(nodes) == 0 {
		return "(no path)"
	}
	return strings.Join(nodes, " -> ")
}
