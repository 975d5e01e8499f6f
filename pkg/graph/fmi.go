package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// fmi parse states
const (
	parseNodeCount = iota
	parseEdgeCount
	parseNodes
	parseEdges
)

// ReadFMI parses the FMI text format:
//
//	# comment
//	<node count>
//	<edge count>
//	<id> <lat> <lon>      one line per node
//	<from> <to> <weight>  one line per edge, by node id
//
// Node ids are compacted to 0..n-1 in file order.
func ReadFMI(r io.Reader) (*Graph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		numNodes, numEdges int
		lat, lon           []float64
		edges              []Edge
		state              = parseNodeCount
		lineNo             int
	)
	id2index := make(map[int64]uint32)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch state {
		case parseNodeCount, parseEdgeCount:
			v, err := strconv.Atoi(fields[0])
			if err != nil || v < 0 {
				return nil, fmt.Errorf("fmi line %d: invalid count %q", lineNo, line)
			}
			if state == parseNodeCount {
				numNodes = v
				lat = make([]float64, 0, v)
				lon = make([]float64, 0, v)
				state = parseEdgeCount
				continue
			}
			numEdges = v
			edges = make([]Edge, 0, v)
			state = parseNodes
			if numNodes == 0 {
				state = parseEdges
			}

		case parseNodes:
			if len(fields) < 3 {
				return nil, fmt.Errorf("fmi line %d: want \"id lat lon\", got %q", lineNo, line)
			}
			id, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("fmi line %d: node id: %w", lineNo, err)
			}
			la, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("fmi line %d: lat: %w", lineNo, err)
			}
			lo, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("fmi line %d: lon: %w", lineNo, err)
			}
			if _, dup := id2index[id]; dup {
				return nil, fmt.Errorf("fmi line %d: duplicate node id %d", lineNo, id)
			}
			id2index[id] = uint32(len(lat))
			lat = append(lat, la)
			lon = append(lon, lo)
			if len(lat) == numNodes {
				state = parseEdges
			}

		case parseEdges:
			if len(fields) < 3 {
				return nil, fmt.Errorf("fmi line %d: want \"from to weight\", got %q", lineNo, line)
			}
			from, err1 := strconv.ParseInt(fields[0], 10, 64)
			to, err2 := strconv.ParseInt(fields[1], 10, 64)
			w, err3 := strconv.ParseUint(fields[2], 10, 32)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("fmi line %d: invalid edge %q", lineNo, line)
			}
			u, okU := id2index[from]
			v, okV := id2index[to]
			if !okU || !okV {
				return nil, fmt.Errorf("fmi line %d: edge references unknown node", lineNo)
			}
			edges = append(edges, Edge{From: u, To: v, Weight: uint32(w)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fmi: %w", err)
	}

	if state != parseEdges {
		return nil, fmt.Errorf("fmi: truncated header or node list (%d of %d nodes)", len(lat), numNodes)
	}
	if len(edges) != numEdges {
		return nil, fmt.Errorf("fmi: got %d edges, header says %d", len(edges), numEdges)
	}

	return FromEdges(uint32(numNodes), edges, lat, lon)
}
