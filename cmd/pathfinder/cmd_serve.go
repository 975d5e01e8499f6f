package main

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/api"
	"github.com/azybler/pathfinder/pkg/graph"
	"github.com/azybler/pathfinder/pkg/pq"
	"github.com/azybler/pathfinder/pkg/routing"
)

func serveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"serv"},
		Short:   "Run the routing HTTP API",
		RunE:    cmdServe,
	}
	c.Flags().String("graph", "", "preprocessed graph file (overrides graph.path)")
	c.Flags().String("addr", "", "listen address (overrides server.addr)")
	return c
}

func cmdServe(c *cobra.Command, _ []string) error {
	if v, _ := c.Flags().GetString("graph"); v != "" {
		conf.Graph.Path = v
	}
	if v, _ := c.Flags().GetString("addr"); v != "" {
		conf.Server.Addr = v
	}

	engine, g, err := loadEngine(conf.Graph.Path)
	if err != nil {
		return err
	}

	stats := api.StatsResponse{
		NumNodes: g.NumNodes,
		NumEdges: g.NumEdges,
	}
	for _, a := range routing.Algorithms {
		stats.Algorithms = append(stats.Algorithms, string(a))
	}
	for _, k := range pq.Kinds {
		stats.Queues = append(stats.Queues, string(k))
	}

	handlers := api.NewHandlers(engine, stats, log)
	srv, err := api.NewServer(conf.Server, handlers, log)
	if err != nil {
		return errors.Wrap(err, "create server")
	}
	return api.ListenAndServe(c.Context(), srv, log)
}

// loadEngine reads a binary graph and builds a routing engine over it with
// the configured search defaults.
func loadEngine(path string) (*routing.Engine, *graph.Graph, error) {
	start := time.Now()
	log.Info("loading graph", zap.String("path", path))
	g, err := graph.ReadBinary(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load graph")
	}

	engine, err := routing.NewEngine(g,
		routing.WithDefaults(routing.Algorithm(conf.Search.Algorithm), pq.Kind(conf.Search.Queue)),
		routing.WithCacheSize(conf.Search.CacheSize),
		routing.WithMaxSnapMeters(conf.Search.MaxSnapMeters),
		routing.WithLogger(log))
	if err != nil {
		return nil, nil, errors.Wrap(err, "create engine")
	}
	log.Info("ready",
		zap.Uint32("nodes", g.NumNodes),
		zap.Uint32("edges", g.NumEdges),
		zap.Duration("took", time.Since(start).Round(time.Millisecond)))
	return engine, g, nil
}
