package main

import (
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func findCmd() *cobra.Command {
	var (
		q                 queryFlags
		alg, queue, gjson string
	)
	c := &cobra.Command{
		Use:   "find",
		Short: "Find one path in a graph file",
		Example: `  pathfinder find --graph testdata/cities.yaml --from V --to W --algorithm biastar
  pathfinder find --graph sg.bin --from 1.3521,103.8198 --to 1.2903,103.8520 --geojson route.json`,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := algorithmOrDefault(alg)
			if err != nil {
				return err
			}
			k, err := queueOrDefault(queue)
			if err != nil {
				return err
			}
			j, err := loadJob(q)
			if err != nil {
				return err
			}
			o, err := j.run(c.Context(), a, k)
			if err != nil {
				return err
			}

			if gjson != "" {
				return writeGeoJSON(c.OutOrStdout(), gjson, o, string(a), string(k))
			}
			out := c.OutOrStdout()
			fmt.Fprintf(out, "path: %s\n", formatPath(o.Nodes))
			if o.Found {
				fmt.Fprintf(out, "cost: %g\nhops: %d\n", o.Cost, o.Hops)
			}
			fmt.Fprintf(out, "took: %s\n", o.Took)
			return nil
		},
	}
	q.register(c.Flags())
	c.Flags().StringVar(&alg, "algorithm", "", "algorithm (default: search.algorithm)")
	c.Flags().StringVar(&queue, "queue", "", "priority queue backend (default: search.queue)")
	c.Flags().StringVar(&gjson, "geojson", "", "write the path as GeoJSON to this file, - for stdout")
	return c
}

// writeGeoJSON writes the path as a LineString feature. Paths whose nodes
// lack coordinates cannot be drawn.
func writeGeoJSON(stdout io.Writer, dest string, o outcome, alg, queue string) error {
	if !o.Found {
		return errors.New("no path to write")
	}
	if len(o.Line) == 0 {
		return errors.New("graph has no coordinates for the path nodes")
	}

	f := geojson.NewFeature(o.Line)
	f.Properties["algorithm"] = alg
	f.Properties["queue"] = queue
	f.Properties["cost"] = o.Cost
	f.Properties["hops"] = o.Hops
	f.Properties["nodes"] = o.Nodes

	fc := geojson.NewFeatureCollection().Append(f)
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "encode geojson")
	}

	if dest == "-" {
		_, err = stdout.Write(append(b, '\n'))
		return err
	}
	return errors.Wrap(os.WriteFile(dest, b, 0o644), "write geojson")
}
