// Command pathfinder preprocesses road graphs, serves the routing API and
// runs one-off path queries.
/*
Usage:
  pathfinder [command]

Available Commands:
  preprocess  Build a binary road graph from an OSM PBF extract
  serve       Run the routing HTTP API
  find        Find one path in a graph file
  compare     Run every algorithm and queue on one query

Flags:
      --config string      config file (default: ./pathfinder.yaml if present)
      --log-level string   override log.level
*/
package main

func main() {
	Cmd()
}
