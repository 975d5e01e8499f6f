package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/graph"
	osmparser "github.com/azybler/pathfinder/pkg/osm"
)

var (
	singaporeBBox = osmparser.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
	klBBox        = osmparser.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}
)

type preprocessFlags struct {
	input, output, bbox string
	singapore, kl       bool
}

func preprocessCmd() *cobra.Command {
	var f preprocessFlags
	c := &cobra.Command{
		Use:   "preprocess",
		Short: "Build a binary road graph from an OSM PBF extract",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmdPreprocess(c, f)
		},
	}
	c.Flags().StringVar(&f.input, "input", "", "path to .osm.pbf file")
	c.Flags().StringVar(&f.output, "output", "graph.bin", "output binary graph file")
	c.Flags().StringVar(&f.bbox, "bbox", "", "bounding box filter: minLat,minLng,maxLat,maxLng")
	c.Flags().BoolVar(&f.singapore, "singapore", false, "shortcut for the Singapore bounding box")
	c.Flags().BoolVar(&f.kl, "kl", false, "shortcut for the Selangor + Kuala Lumpur bounding box")
	c.MarkFlagsMutuallyExclusive("bbox", "singapore", "kl")
	_ = c.MarkFlagRequired("input")
	return c
}

func parseBBox(s string) (osmparser.BBox, error) {
	var minLat, minLng, maxLat, maxLng float64
	if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
		return osmparser.BBox{}, errors.Wrap(err, "bbox must be minLat,minLng,maxLat,maxLng")
	}
	if minLat >= maxLat || minLng >= maxLng {
		return osmparser.BBox{}, errors.Errorf("bbox %q: min must be below max", s)
	}
	return osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}, nil
}

func cmdPreprocess(c *cobra.Command, f preprocessFlags) error {
	opts := osmparser.ParseOptions{Logger: log}
	switch {
	case f.kl:
		opts.BBox = klBBox
	case f.singapore:
		opts.BBox = singaporeBBox
	case f.bbox != "":
		b, err := parseBBox(f.bbox)
		if err != nil {
			return err
		}
		opts.BBox = b
	}
	if !opts.BBox.IsZero() {
		log.Info("bounding box filter",
			zap.Float64s("lat", []float64{opts.BBox.MinLat, opts.BBox.MaxLat}),
			zap.Float64s("lng", []float64{opts.BBox.MinLng, opts.BBox.MaxLng}))
	}

	start := time.Now()

	in, err := os.Open(f.input)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer in.Close()

	parsed, err := osmparser.Parse(c.Context(), in, opts)
	if err != nil {
		return errors.Wrap(err, "parse osm")
	}
	log.Info("parsed",
		zap.Int("edges", len(parsed.Edges)),
		zap.Int("nodes", len(parsed.NodeLat)))

	g := graph.Build(parsed)
	log.Info("built graph", zap.Uint32("nodes", g.NumNodes), zap.Uint32("edges", g.NumEdges))

	component := graph.LargestComponent(g)
	if g.NumNodes > 0 {
		log.Info("largest component",
			zap.Int("nodes", len(component)),
			zap.Float64("percent", float64(len(component))/float64(g.NumNodes)*100))
	}
	g = graph.FilterToComponent(g, component)
	log.Info("filtered graph", zap.Uint32("nodes", g.NumNodes), zap.Uint32("edges", g.NumEdges))

	if err := graph.WriteBinary(f.output, g); err != nil {
		return errors.Wrap(err, "write binary")
	}

	var size int64
	if info, err := os.Stat(f.output); err == nil {
		size = info.Size()
	}
	log.Info("done",
		zap.String("output", f.output),
		zap.Float64("size_mb", float64(size)/(1024*1024)),
		zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	return nil
}
