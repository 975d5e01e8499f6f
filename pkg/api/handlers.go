package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/azybler/pathfinder/pkg/pq"
	"github.com/azybler/pathfinder/pkg/routing"
)

const maxBodyBytes = 1024

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
	va     *validator.Validate
	log    *zap.Logger
}

// NewHandlers creates handlers over router. A nil logger logs nothing.
func NewHandlers(router routing.Router, stats StatsResponse, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	va := validator.New()
	va.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handlers{router: router, stats: stats, va: va, log: log}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}
	if err := h.va.Struct(req); err != nil {
		code, field := invalidField(err)
		writeError(w, http.StatusBadRequest, code, field)
		return
	}

	result, err := h.router.Route(r.Context(), routing.Query{
		Start:     routing.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		End:       routing.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
		Algorithm: routing.Algorithm(req.Algorithm),
		Queue:     pq.Kind(req.Queue),
	})
	if err != nil {
		h.writeRouteError(w, err)
		return
	}

	resp := RouteResponse{
		TotalDistanceMeters: result.TotalDistanceMeters,
		NumNodes:            len(result.Nodes),
		Algorithm:           string(result.Algorithm),
		Queue:               string(result.Queue),
		Cached:              result.Cached,
	}
	for _, seg := range result.Segments {
		geom := make([]LatLngJSON, len(seg.Geometry))
		for i, ll := range seg.Geometry {
			geom[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
		}
		resp.Segments = append(resp.Segments, SegmentJSON{
			DistanceMeters: seg.DistanceMeters,
			Geometry:       geom,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
	case errors.Is(err, routing.ErrNoRoute):
		writeError(w, http.StatusNotFound, "no_route_found", "")
	case errors.Is(err, routing.ErrUnknownAlgorithm):
		writeError(w, http.StatusBadRequest, "invalid_algorithm", "algorithm")
	case errors.Is(err, pq.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "invalid_queue", "queue")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		h.log.Error("route failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// invalidField maps a validation failure to an error code and the top-level
// request field it concerns.
func invalidField(err error) (code, field string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid_request", ""
	}
	// Namespace is "RouteRequest.start.lat"; report "start".
	parts := strings.Split(verrs[0].Namespace(), ".")
	if len(parts) > 1 {
		field = parts[1]
	}
	switch field {
	case "start", "end":
		return "invalid_coordinates", field
	case "algorithm":
		return "invalid_algorithm", field
	case "queue":
		return "invalid_queue", field
	}
	return "invalid_request", field
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
