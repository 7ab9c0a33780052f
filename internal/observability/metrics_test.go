package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

func TestCollector_RunFinished(t *testing.T) {
	c := NewCollector("seating")

	c.RunFinished(&models.Result{
		Success: true,
		Score:   0.8,
		Conflicts: []models.Conflict{
			models.NewConflict(models.ConflictGroupSplit, "split"),
			models.NewConflict(models.ConflictInsufficientCapacity, "full"),
		},
	}, 10*time.Millisecond)
	c.RunFinished(&models.Result{Success: false}, time.Millisecond)
	c.RunRejected()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues(OutcomeComplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Runs.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Conflicts.WithLabelValues("group_split", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Conflicts.WithLabelValues("insufficient_capacity", "error")))
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RunFinished(&models.Result{Success: true}, time.Second)
		c.RunRejected()
		c.GuestMove(true)
		c.RPC("/x", "ok", time.Second)
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("seating")
	c.GuestMove(true)
	c.GuestMove(false)
	c.RPC("/seating.v1.SeatingService/Arrange", "ok", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `seating_guest_moves_total{status="applied"} 1`), body)
	assert.True(t, strings.Contains(body, `seating_guest_moves_total{status="failed"} 1`), body)
	assert.Contains(t, body, `seating_rpc_requests_total{code="ok",procedure="/seating.v1.SeatingService/Arrange"} 1`)
}
