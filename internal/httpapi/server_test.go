package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autoassign/internal/domain"
	"autoassign/internal/metrics"
	"autoassign/internal/storage/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := sqlite.InitDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		report := domain.RunReport{
			RunID:      id,
			StartedAt:  base.Add(time.Duration(i) * 10 * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*10*time.Minute + time.Minute),
			Resources: []domain.ResourceReport{{Region: "Kenya", Assignments: []domain.Assignment{
				{ComplaintID: "c-" + id, InspectorID: "i1", InspectorLogin: "jane@example.org", AssignedAt: base},
			}}},
		}
		require.NoError(t, sqlite.SaveRun(db, report, nil))
	}

	reg := prometheus.NewRegistry()
	metrics.NewPrometheus(reg, "").IncAssignment("Kenya", false, true)
	return NewServer(db, reg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestHandler(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListRuns(t *testing.T) {
	h := newTestHandler(t)

	rec := get(t, h, "/runs?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []sqlite.RunRecord `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	require.Equal(t, "run-c", body.Items[0].RunID)
	require.Equal(t, 1, body.Items[0].Assigned)

	require.Equal(t, http.StatusBadRequest, get(t, h, "/runs?limit=zero").Code)
}

func TestRunAssignments(t *testing.T) {
	h := newTestHandler(t)

	rec := get(t, h, "/runs/run-b/assignments")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"complaint_id":"c-run-b"`)

	rec = get(t, h, "/runs/missing/assignments")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestMetricsAndNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "autoassign_assignments_total"))

	require.Equal(t, http.StatusNotFound, get(t, h, "/trigger").Code)
}
