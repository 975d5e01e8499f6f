package api

// RouteRequest is the JSON body for POST /api/v1/route. Algorithm and Queue
// fall back to the server defaults when empty.
type RouteRequest struct {
	Start     LatLngJSON `json:"start"`
	End       LatLngJSON `json:"end"`
	Algorithm string     `json:"algorithm,omitempty" validate:"omitempty,oneof=bfs bibfs parallel-bibfs dijkstra bidijkstra astar biastar"`
	Queue     string     `json:"queue,omitempty" validate:"omitempty,oneof=binary fibonacci"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	TotalDistanceMeters float64       `json:"total_distance_meters"`
	NumNodes            int           `json:"num_nodes"`
	Algorithm           string        `json:"algorithm"`
	Queue               string        `json:"queue"`
	Cached              bool          `json:"cached"`
	Segments            []SegmentJSON `json:"segments"`
}

// SegmentJSON represents a road segment in the response.
type SegmentJSON struct {
	DistanceMeters float64      `json:"distance_meters"`
	Geometry       []LatLngJSON `json:"geometry"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes   uint32   `json:"num_nodes"`
	NumEdges   uint32   `json:"num_edges"`
	Algorithms []string `json:"algorithms"`
	Queues     []string `json:"queues"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
