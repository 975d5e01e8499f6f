package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/pq"
	"github.com/azybler/pathfinder/pkg/routing"
)

func compareCmd() *cobra.Command {
	var q queryFlags
	c := &cobra.Command{
		Use:   "compare",
		Short: "Run every algorithm and queue on one query",
		Long: `Runs each algorithm with each priority queue backend on the same query and
prints cost, hop count and latency. Weighted algorithms must agree on cost,
hop-count algorithms on hops; a disagreement is reported as an error.`,
		RunE: func(c *cobra.Command, _ []string) error {
			j, err := loadJob(q)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.OutOrStdout(), 2, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ALGORITHM\tQUEUE\tFOUND\tCOST\tHOPS\tTOOK")

			var weighted, hops []outcome
			for _, alg := range routing.Algorithms {
				for _, kind := range pq.Kinds {
					o, err := j.run(c.Context(), alg, kind)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%t\t%g\t%d\t%s\n", alg, kind, o.Found, o.Cost, o.Hops, o.Took)
					if alg.Weighted() {
						weighted = append(weighted, o)
					} else {
						hops = append(hops, o)
					}
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return agree(weighted, hops)
		},
	}
	q.register(c.Flags())
	return c
}

// agree checks that weighted runs share one cost and hop-count runs share
// one hop count.
func agree(weighted, hops []outcome) error {
	for _, o := range weighted[1:] {
		if o.Found != weighted[0].Found || !sameCost(o.Cost, weighted[0].Cost) {
			log.Warn("weighted algorithms disagree",
				zap.Float64("want", weighted[0].Cost),
				zap.Float64("got", o.Cost))
			return errors.New("weighted algorithms disagree on cost")
		}
	}
	for _, o := range hops[1:] {
		if o.Found != hops[0].Found || o.Hops != hops[0].Hops {
			return errors.New("breadth-first algorithms disagree on hop count")
		}
	}
	return nil
}

func sameCost(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*max(1, math.Abs(a), math.Abs(b))
}
