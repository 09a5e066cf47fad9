package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 500
)

// History returns persisted snapshots, newest first.
type History interface {
	ListSnapshots(ctx context.Context, limit int) ([]AggregatedStats, error)
}

// Handler serves the live aggregate and, when a History is attached, the
// persisted snapshots.
type Handler struct {
	aggregator *Aggregator
	history    History
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// WithHistory attaches a snapshot store for the Snapshots endpoint.
func (h *Handler) WithHistory(history History) *Handler {
	h.history = history
	return h
}

// Register mounts GET /api/v1/analytics and GET /api/v1/analytics/snapshots.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", h.Snapshots)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.write(w, http.StatusOK, h.aggregator.Stats())
}

// Snapshots serves ?limit=N persisted snapshots (default 10, max 500).
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.write(w, http.StatusServiceUnavailable, map[string]string{"error": "snapshot history is disabled"})
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.write(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	snapshots, err := h.history.ListSnapshots(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing snapshots failed", "error", err)
		h.write(w, http.StatusInternalServerError, map[string]string{"error": "could not load snapshots"})
		return
	}
	if snapshots == nil {
		snapshots = []AggregatedStats{}
	}
	h.write(w, http.StatusOK, map[string]any{"count": len(snapshots), "snapshots": snapshots})
}

func (h *Handler) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
