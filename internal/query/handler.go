package query

import (
	"GraphSpectra/internal/heuristics"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const defaultHistoryLimit = 100

// Handler serves planner statistics over HTTP.
type Handler struct {
	source  Source
	history HistoryQuerier
}

// NewHandler creates a handler reading from source. history may be nil, in
// which case the history endpoint answers 501.
func NewHandler(source Source, history HistoryQuerier) *Handler {
	return &Handler{source: source, history: history}
}

// Register adds the API routes to r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/labels/{id}/frequency", h.labelFrequencyHandler).Methods(http.MethodGet)
	api.HandleFunc("/reltypes/{id}/frequency", h.relTypeFrequencyHandler).Methods(http.MethodGet)
	api.HandleFunc("/degree", h.degreeHandler).Methods(http.MethodGet)
	api.HandleFunc("/liveness", h.livenessHandler).Methods(http.MethodGet)
	api.HandleFunc("/summary", h.summaryHandler).Methods(http.MethodGet)
	api.HandleFunc("/history/degree", h.degreeHistoryHandler).Methods(http.MethodGet)
}

// Router returns a new router with the API routes registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	return r
}

// FrequencyResponse answers a label or relationship type frequency query.
type FrequencyResponse struct {
	ID        int     `json:"id"`
	Frequency float64 `json:"frequency"`
}

// DegreeResponse answers a degree query. Label is -1 for the label-agnostic bucket.
type DegreeResponse struct {
	Label     int     `json:"label"`
	RelType   int     `json:"rel_type"`
	Direction string  `json:"direction"`
	Degree    float64 `json:"degree"`
	Samples   int64   `json:"samples"`
}

// LivenessResponse answers a liveness query.
type LivenessResponse struct {
	LiveFraction        float64 `json:"live_fraction"`
	MaxAddressableNodes int64   `json:"max_addressable_nodes"`
	EstimatedLiveNodes  float64 `json:"estimated_live_nodes"`
	LiveNodes           int64   `json:"live_nodes"`
	SkippedNodes        int64   `json:"skipped_nodes"`
}

// SummaryResponse describes the published statistics as a whole.
type SummaryResponse struct {
	LivenessResponse
	Labels            []int  `json:"labels"`
	RelationshipTypes []int  `json:"relationship_types"`
	Fingerprint       string `json:"fingerprint"`
}

func (h *Handler) labelFrequencyHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid label id: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, FrequencyResponse{ID: id, Frequency: c.LabelFrequency(id)})
}

func (h *Handler) relTypeFrequencyHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid relationship type id: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, FrequencyResponse{ID: id, Frequency: c.RelationshipTypeFrequency(id)})
}

func (h *Handler) degreeHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	label, relType, dir, err := parseDegreeQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, DegreeResponse{
		Label:     label,
		RelType:   relType,
		Direction: dir.String(),
		Degree:    c.Degree(label, relType, dir),
		Samples:   c.DegreeSamples(label, relType, dir),
	})
}

func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, liveness(c))
}

func (h *Handler) summaryHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := h.current(w)
	if !ok {
		return
	}
	writeJSON(w, SummaryResponse{
		LivenessResponse:  liveness(c),
		Labels:            nonNil(c.Labels()),
		RelationshipTypes: nonNil(c.RelationshipTypes()),
		Fingerprint:       strconv.FormatUint(c.Fingerprint(), 16),
	})
}

func (h *Handler) degreeHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "degree history is not configured", http.StatusNotImplemented)
		return
	}
	label, relType, dir, err := parseDegreeQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := defaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", s), http.StatusBadRequest)
			return
		}
	}

	points, err := h.history.DegreeHistory(r.Context(), label, relType, dir, limit)
	if err != nil {
		log.Printf("Error querying degree history: %v", err)
		http.Error(w, fmt.Sprintf("failed to query degree history: %v", err), http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []DegreePoint{}
	}
	writeJSON(w, points)
}

// current returns the published collector or answers 503.
func (h *Handler) current(w http.ResponseWriter) (*heuristics.Collector, bool) {
	c := h.source.Current()
	if c == nil {
		http.Error(w, "no statistics published yet", http.StatusServiceUnavailable)
		return nil, false
	}
	return c, true
}

func liveness(c *heuristics.Collector) LivenessResponse {
	live, dead := c.SampledNodes()
	return LivenessResponse{
		LiveFraction:        c.LiveFraction(),
		MaxAddressableNodes: c.MaxAddressableNodes(),
		EstimatedLiveNodes:  c.EstimatedLiveNodes(),
		LiveNodes:           live,
		SkippedNodes:        dead,
	}
}

// parseDegreeQuery reads label, type and direction. An omitted label selects
// the label-agnostic bucket.
func parseDegreeQuery(r *http.Request) (label, relType int, dir heuristics.Direction, err error) {
	q := r.URL.Query()
	label = heuristics.AnyLabel
	if s := q.Get("label"); s != "" {
		if label, err = parseID(s); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid label: %w", err)
		}
	}
	if relType, err = parseID(q.Get("type")); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid type: %w", err)
	}
	if dir, err = heuristics.ParseDirection(q.Get("direction")); err != nil {
		return 0, 0, 0, err
	}
	return label, relType, dir, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if id < 0 {
		return 0, fmt.Errorf("%d is negative", id)
	}
	return id, nil
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
