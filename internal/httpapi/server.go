package httpapi

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"autoassign/internal/storage/sqlite"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// NewServer builds the operational router: health, Prometheus metrics and
// the stored run history. Runs are started only by the schedule.
func NewServer(db *sql.DB, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	h := runsHandler{db: db}
	r.Get("/runs", h.list)
	r.Get("/runs/{runId}/assignments", h.assignments)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	return r
}

type runsHandler struct {
	db *sql.DB
}

// list handles GET /runs?limit=N
func (h runsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := sqlite.RecentRuns(h.db, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to load runs: %v", err), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []sqlite.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": runs})
}

// assignments handles GET /runs/{runId}/assignments
func (h runsHandler) assignments(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runId")
	items, err := sqlite.AssignmentsForRun(h.db, runID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to load assignments: %v", err), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []sqlite.AssignmentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "items": items})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
