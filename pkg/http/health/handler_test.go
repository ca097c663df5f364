package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreHealth "github.com/Sokol111/mqtt-event-ingestor/pkg/core/health"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReadinessChecker is a test double for ReadinessChecker.
type mockReadinessChecker struct {
	isReady bool
	status  coreHealth.ReadinessStatus
}

func (m *mockReadinessChecker) IsReady() bool {
	return m.isReady
}

func (m *mockReadinessChecker) Status() coreHealth.ReadinessStatus {
	return m.status
}

func TestHealthHandler_IsReady(t *testing.T) {
	t.Run("returns 200 OK when ready (simple format)", func(t *testing.T) {
		handler := newHealthHandler(&mockReadinessChecker{isReady: true})

		w := httptest.NewRecorder()
		handler.IsReady(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", w.Body.String())
	})

	t.Run("returns 503 Service Unavailable when not ready (simple format)", func(t *testing.T) {
		handler := newHealthHandler(&mockReadinessChecker{isReady: false})

		w := httptest.NewRecorder()
		handler.IsReady(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not ready", w.Body.String())
	})

	t.Run("returns JSON when format=json query param", func(t *testing.T) {
		now := time.Now()
		handler := newHealthHandler(&mockReadinessChecker{
			isReady: true,
			status: coreHealth.ReadinessStatus{
				Ready: true,
				Components: []coreHealth.ComponentStatus{
					{Name: "database", Ready: true, StartedAt: now, ReadyAt: now},
					{Name: "tracing", Ready: true, StartedAt: now, ReadyAt: now},
				},
			},
		})

		w := httptest.NewRecorder()
		handler.IsReady(w, httptest.NewRequest("GET", "/health/ready?format=json", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var status statusView
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &status))
		assert.True(t, status.Ready)
		assert.Len(t, status.Components, 2)
	})

	t.Run("returns 503 with JSON when not ready and Accept is application/json", func(t *testing.T) {
		now := time.Now()
		handler := newHealthHandler(&mockReadinessChecker{
			status: coreHealth.ReadinessStatus{
				Ready: false,
				Components: []coreHealth.ComponentStatus{
					{Name: "database", Ready: true, StartedAt: now, ReadyAt: now},
					{Name: "metrics", Ready: false, StartedAt: now},
				},
			},
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/health/ready", nil)
		r.Header.Set("Accept", "application/json")
		handler.IsReady(w, r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var status statusView
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &status))
		assert.False(t, status.Ready)
		require.Len(t, status.Components, 2)
		assert.NotNil(t, status.Components[0].ReadyAt)
		assert.Nil(t, status.Components[1].ReadyAt)
	})
}

func TestHealthHandler_IsLive(t *testing.T) {
	// liveness does not depend on readiness
	handler := newHealthHandler(&mockReadinessChecker{isReady: false})

	w := httptest.NewRecorder()
	handler.IsLive(w, httptest.NewRequest("GET", "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", w.Body.String())
}

func TestRegisterHealthRoutes(t *testing.T) {
	mux := http.NewServeMux()
	registerHealthRoutes(mux, newHealthHandler(&mockReadinessChecker{isReady: true}))

	t.Run("registers /health/ready endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", w.Body.String())
	})

	t.Run("registers /health/live endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", "/health/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alive", w.Body.String())
	})

	t.Run("rejects other methods", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("POST", "/health/live", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
